package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"promptforge/internal/config"
	"promptforge/internal/domain/file"
)

var errInvalidKey = errors.New("storage key escapes the upload directory")

// LocalStorage keeps uploaded files under a single directory on disk.
type LocalStorage struct {
	basePath string
	log      zerolog.Logger
}

func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.UploadDir)
	if basePath == "" {
		return nil, errors.New("UPLOAD_DIR must not be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	logger.Info().Str("path", basePath).Msg("local storage initialized")
	return &LocalStorage{basePath: basePath, log: logger}, nil
}

func (l *LocalStorage) resolve(key string) (string, error) {
	rel := filepath.FromSlash(key)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %q", errInvalidKey, key)
	}
	return filepath.Join(l.basePath, rel), nil
}

// Save writes r to key, replacing any previous content, and returns the byte count.
func (l *LocalStorage) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	written, err := io.Copy(tmp, r)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return 0, fmt.Errorf("failed to move file into place: %w", err)
	}

	l.log.Debug().Str("key", key).Int64("bytes", written).Msg("file saved")
	return written, nil
}

func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s", key)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// Delete removes key. A missing file is not an error.
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	fullPath, err := l.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Health checks that the upload directory is writable.
func (l *LocalStorage) Health(ctx context.Context) error {
	probe := filepath.Join(l.basePath, ".health_check")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return fmt.Errorf("upload directory not writable: %w", err)
	}
	_ = os.Remove(probe)
	return nil
}

var _ file.Storage = (*LocalStorage)(nil)
