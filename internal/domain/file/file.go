package file

import (
	"context"
	"io"
	"time"
)

// File is an attachment stored for a prompt. Path is the storage key.
type File struct {
	ID        uint      `json:"-"`
	PublicID  string    `json:"id"`
	PromptID  uint      `json:"-"`
	Name      string    `json:"name"`
	Path      string    `json:"-"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type FileRepository interface {
	Create(ctx context.Context, file *File) error
	ListByPromptID(ctx context.Context, promptID uint) ([]*File, error)
	FindByPublicIDs(ctx context.Context, promptID uint, publicIDs []string) ([]*File, error)
	DeleteByIDs(ctx context.Context, ids []uint) error
}

// Storage keeps file bytes. Keys are relative, slash separated paths.
type Storage interface {
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Upload is a file received with a request, not yet stored.
type Upload struct {
	Name     string
	MimeType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Policy bounds what may be uploaded.
type Policy struct {
	MaxBytes int64
	Allowed  func(ext string) bool
}
