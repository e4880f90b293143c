package promptrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/query"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

const defaultPageSize = 20

// PromptGormRepository implements prompt.PromptRepository using GORM
type PromptGormRepository struct {
	db *transaction.Database
}

var _ prompt.PromptRepository = (*PromptGormRepository)(nil)

func NewPromptGormRepository(db *transaction.Database) prompt.PromptRepository {
	return &PromptGormRepository{db: db}
}

func (r *PromptGormRepository) Create(ctx context.Context, p *prompt.Prompt) error {
	model := dbschema.NewSchemaPrompt(p)
	if err := r.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create prompt", err, "3e9a1c52-7b4d-4f08-a6e1-c2d5f8b7a904")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *PromptGormRepository) GetByID(ctx context.Context, id uint) (*prompt.Prompt, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *PromptGormRepository) GetByPublicID(ctx context.Context, publicID string) (*prompt.Prompt, error) {
	return r.first(ctx, "public_id = ?", publicID)
}

func (r *PromptGormRepository) GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*prompt.Prompt, error) {
	return r.first(ctx, "public_id = ? AND user_id = ?", publicID, userID)
}

func (r *PromptGormRepository) first(ctx context.Context, where string, args ...any) (*prompt.Prompt, error) {
	var model dbschema.Prompt
	if err := r.db.GetTx(ctx).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "prompt not found", err, "8b2f4d6a-1c3e-4a57-9d80-e5f7a2c4b6d1")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find prompt", err, "c4a6e8f0-2b1d-4c39-8e7f-a1b3d5c7e9f2")
	}
	return model.EtoD(), nil
}

// ListByUserID pages through a user's prompts ordered by id.
func (r *PromptGormRepository) ListByUserID(ctx context.Context, userID uint, pagination *query.Pagination) ([]*prompt.Prompt, int64, error) {
	base := r.db.GetTx(ctx).Model(&dbschema.Prompt{}).Where("user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to count prompts", err, "5d7f9b1c-3e2a-4d68-b0c4-f6a8e1d3b5c7")
	}

	q := base.Session(&gorm.Session{})
	if pagination != nil {
		if pagination.After != nil {
			if pagination.IsDesc() {
				q = q.Where("id < ?", *pagination.After)
			} else {
				q = q.Where("id > ?", *pagination.After)
			}
		}
		if pagination.Offset != nil {
			q = q.Offset(*pagination.Offset)
		}
	}
	if pagination.IsDesc() {
		q = q.Order("id DESC")
	} else {
		q = q.Order("id ASC")
	}

	var models []dbschema.Prompt
	if err := q.Limit(pagination.LimitOr(defaultPageSize)).Find(&models).Error; err != nil {
		return nil, 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list prompts", err, "9e1b3d5f-7a2c-4e84-a6c8-b0d2f4e6a8c1")
	}

	prompts := make([]*prompt.Prompt, 0, len(models))
	for i := range models {
		prompts = append(prompts, models[i].EtoD())
	}
	return prompts, total, nil
}

func (r *PromptGormRepository) Update(ctx context.Context, p *prompt.Prompt) error {
	model := dbschema.NewSchemaPrompt(p)
	result := r.db.GetTx(ctx).Model(&dbschema.Prompt{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":        model.Name,
			"description": model.Description,
			"json_schema": model.JSONSchema,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update prompt", result.Error, "2a4c6e8b-0d1f-4b73-95a7-c9e1b3d5f7a0")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "prompt not found", nil, "6f8a0c2e-4b3d-4195-a7c9-d1e3f5b7a9c2")
	}
	return nil
}

// Delete removes the prompt; chats, files and jobs go with it via ON DELETE CASCADE.
func (r *PromptGormRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.GetTx(ctx).Delete(&dbschema.Prompt{}, "id = ?", id)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete prompt", result.Error, "b1d3f5a7-9c2e-4d60-8b4f-e6a8c0d2f4b6")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "prompt not found", nil, "e7f9b1d3-5a4c-4e82-b6d8-f0a2c4e6b8d3")
	}
	return nil
}

// IncrementUsage is a single atomic UPDATE so concurrent generations never lose a count.
func (r *PromptGormRepository) IncrementUsage(ctx context.Context, id uint) error {
	result := r.db.GetTx(ctx).Model(&dbschema.Prompt{}).
		Where("id = ?", id).
		UpdateColumn("count_usage", gorm.Expr("count_usage + ?", 1))
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to increment prompt usage", result.Error, "4c6e8a0b-2d1f-4f93-a5c7-b9d1e3f5a7c4")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "prompt not found", nil, "a3c5e7f9-1b2d-4a64-8c6e-d0f2b4a6c8e5")
	}
	return nil
}
