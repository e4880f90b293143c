package dbschema

import (
	"promptforge/internal/domain/file"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(File{})
}

type File struct {
	BaseModel
	PublicID string `gorm:"type:varchar(64);uniqueIndex;not null"`
	PromptID uint   `gorm:"not null;index"`
	Prompt   Prompt `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE"`
	Name     string `gorm:"type:varchar(255);not null"`
	Path     string `gorm:"type:varchar(512);not null"`
	MimeType string `gorm:"type:varchar(255);not null"`
	Size     int64  `gorm:"not null"`
}

func NewSchemaFile(f *file.File) *File {
	return &File{
		BaseModel: BaseModel{ID: f.ID, CreatedAt: f.CreatedAt, UpdatedAt: f.UpdatedAt},
		PublicID:  f.PublicID,
		PromptID:  f.PromptID,
		Name:      f.Name,
		Path:      f.Path,
		MimeType:  f.MimeType,
		Size:      f.Size,
	}
}

func (f *File) EtoD() *file.File {
	return &file.File{
		ID:        f.ID,
		PublicID:  f.PublicID,
		PromptID:  f.PromptID,
		Name:      f.Name,
		Path:      f.Path,
		MimeType:  f.MimeType,
		Size:      f.Size,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}
