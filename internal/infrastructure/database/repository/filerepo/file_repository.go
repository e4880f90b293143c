package filerepo

import (
	"context"

	"promptforge/internal/domain/file"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

type FileGormRepository struct {
	db *transaction.Database
}

var _ file.FileRepository = (*FileGormRepository)(nil)

func NewFileGormRepository(db *transaction.Database) file.FileRepository {
	return &FileGormRepository{db: db}
}

func (r *FileGormRepository) Create(ctx context.Context, f *file.File) error {
	model := dbschema.NewSchemaFile(f)
	if err := r.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create file", err, "9f1b3d5e-7a6c-4c48-8a0e-b2d4f6a8c0e1")
	}
	f.ID = model.ID
	f.CreatedAt = model.CreatedAt
	f.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *FileGormRepository) ListByPromptID(ctx context.Context, promptID uint) ([]*file.File, error) {
	var models []dbschema.File
	if err := r.db.GetTx(ctx).Where("prompt_id = ?", promptID).Order("id ASC").Find(&models).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list files", err, "3a5c7e9f-1b0d-4e62-a4c6-d8f0b2e4a6c2")
	}
	return toDomain(models), nil
}

// FindByPublicIDs returns the prompt's files among publicIDs. Ids that belong
// to other prompts are simply absent from the result.
func (r *FileGormRepository) FindByPublicIDs(ctx context.Context, promptID uint, publicIDs []string) ([]*file.File, error) {
	if len(publicIDs) == 0 {
		return nil, nil
	}
	var models []dbschema.File
	if err := r.db.GetTx(ctx).
		Where("prompt_id = ? AND public_id IN ?", promptID, publicIDs).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find files", err, "7c9e1a3b-5d4f-4a86-b8c0-e2a4c6e8b0d3")
	}
	return toDomain(models), nil
}

func (r *FileGormRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.GetTx(ctx).Where("id IN ?", ids).Delete(&dbschema.File{}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete files", err, "b3d5f7a9-1c0e-4b24-96e8-f4a6c8e0b2d4")
	}
	return nil
}

func toDomain(models []dbschema.File) []*file.File {
	files := make([]*file.File, 0, len(models))
	for i := range models {
		files = append(files, models[i].EtoD())
	}
	return files
}
