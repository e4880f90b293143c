package file

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"promptforge/internal/domain/generation"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/utils/idgen"
	"promptforge/internal/utils/platformerrors"
)

const publicIDPrefix = "file"

// FileService stores, syncs and reads prompt attachments.
type FileService struct {
	repo    FileRepository
	storage Storage
	policy  Policy
}

func NewFileService(repo FileRepository, storage Storage, policy Policy) *FileService {
	return &FileService{repo: repo, storage: storage, policy: policy}
}

// ValidateUpload checks extension and size limits.
func (s *FileService) ValidateUpload(ctx context.Context, upload Upload) error {
	ext := extensionOf(upload.Name)
	if s.policy.Allowed != nil && !s.policy.Allowed(ext) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file %q has an unsupported type", upload.Name), nil, "c2e8a4f6-1d3b-4a97-b5e0-7f9c1d3e5a28")
	}
	if s.policy.MaxBytes > 0 && upload.Size > s.policy.MaxBytes {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file %q exceeds the maximum size of %d KB", upload.Name, s.policy.MaxBytes/1024), nil, "5d1f7b3a-9e2c-4c68-a0f4-b8d6e2a4c197")
	}
	return nil
}

// ValidateSize checks only the size limit. Stateful generation accepts any
// file type the provider can read.
func (s *FileService) ValidateSize(ctx context.Context, upload Upload) error {
	if s.policy.MaxBytes > 0 && upload.Size > s.policy.MaxBytes {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("file %q exceeds the maximum size of %d KB", upload.Name, s.policy.MaxBytes/1024), nil, "e4a6c8b2-3f1d-4e59-97a0-d2b4f6c8e013")
	}
	return nil
}

// Store validates every upload first, then writes bytes and rows. Bytes that
// were written before a failure are removed again.
func (s *FileService) Store(ctx context.Context, promptID uint, uploads []Upload) ([]*File, error) {
	for _, upload := range uploads {
		if err := s.ValidateUpload(ctx, upload); err != nil {
			return nil, err
		}
	}

	stored := make([]*File, 0, len(uploads))
	for _, upload := range uploads {
		f, err := s.storeOne(ctx, promptID, upload)
		if err != nil {
			s.removeBytes(ctx, stored)
			return nil, err
		}
		stored = append(stored, f)
	}
	return stored, nil
}

func (s *FileService) storeOne(ctx context.Context, promptID uint, upload Upload) (*File, error) {
	publicID, err := idgen.GenerateSecureID(publicIDPrefix, 24)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate file id", err, "")
	}
	key := path.Join(fmt.Sprint(promptID), publicID+filepath.Ext(strings.ToLower(upload.Name)))

	rc, err := upload.Open()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("failed to read file %q", upload.Name), err, "9b3d5f7a-1c2e-4d86-a4f0-e6c8a2b4d795")
	}
	defer rc.Close()

	size, err := s.storage.Save(ctx, key, rc)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store file")
	}

	f := &File{
		PublicID: publicID,
		PromptID: promptID,
		Name:     filepath.Base(upload.Name),
		Path:     key,
		MimeType: upload.MimeType,
		Size:     size,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		s.removeBytes(ctx, []*File{f})
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to save file record")
	}
	return f, nil
}

// Sync keeps the files listed in keep, deletes the prompt's other files and
// stores the new uploads. It returns the resulting file list.
func (s *FileService) Sync(ctx context.Context, promptID uint, keep []string, uploads []Upload) ([]*File, error) {
	for _, upload := range uploads {
		if err := s.ValidateUpload(ctx, upload); err != nil {
			return nil, err
		}
	}

	existing, err := s.List(ctx, promptID)
	if err != nil {
		return nil, err
	}
	removed := lo.Filter(existing, func(f *File, _ int) bool {
		return !lo.Contains(keep, f.PublicID)
	})
	if len(removed) > 0 {
		ids := lo.Map(removed, func(f *File, _ int) uint { return f.ID })
		if err := s.repo.DeleteByIDs(ctx, ids); err != nil {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete files")
		}
		s.removeBytes(ctx, removed)
	}

	if _, err := s.Store(ctx, promptID, uploads); err != nil {
		return nil, err
	}
	return s.List(ctx, promptID)
}

func (s *FileService) List(ctx context.Context, promptID uint) ([]*File, error) {
	files, err := s.repo.ListByPromptID(ctx, promptID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list files")
	}
	return files, nil
}

// FindForPrompt resolves public ids of the prompt's stored files. Unknown ids
// are a validation error.
func (s *FileService) FindForPrompt(ctx context.Context, promptID uint, publicIDs []string) ([]*File, error) {
	publicIDs = lo.Uniq(publicIDs)
	if len(publicIDs) == 0 {
		return nil, nil
	}
	files, err := s.repo.FindByPublicIDs(ctx, promptID, publicIDs)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load files")
	}
	found := lo.Map(files, func(f *File, _ int) string { return f.PublicID })
	if missing, _ := lo.Difference(publicIDs, found); len(missing) > 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unknown file ids: %s", strings.Join(missing, ", ")), nil, "1f5a7c9e-3b2d-4e84-a6f0-c8e2b4d6f317")
	}
	return files, nil
}

// Attachments opens stored files lazily through the storage.
func (s *FileService) Attachments(ctx context.Context, files []*File) []generation.Attachment {
	return lo.Map(files, func(f *File, _ int) generation.Attachment {
		key := f.Path
		return generation.Attachment{
			Name:     f.Name,
			MimeType: f.MimeType,
			Open:     func() (io.ReadCloser, error) { return s.storage.Open(ctx, key) },
		}
	})
}

// UploadAttachments exposes request uploads to the assembler without storing them.
func UploadAttachments(uploads []Upload) []generation.Attachment {
	return lo.Map(uploads, func(u Upload, _ int) generation.Attachment {
		return generation.Attachment{Name: u.Name, MimeType: u.MimeType, Open: u.Open}
	})
}

// removeBytes deletes stored bytes best effort; failures are only logged.
func (s *FileService) removeBytes(ctx context.Context, files []*File) {
	var result *multierror.Error
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.Path); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", f.Path, err))
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		log := logger.GetLogger()
		log.Warn().Err(err).Int("count", len(result.Errors)).Msg("failed to remove stored files")
	}
}

func extensionOf(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}
