package jobrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"promptforge/internal/domain/job"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

type JobGormRepository struct {
	db *transaction.Database
}

var _ job.Repository = (*JobGormRepository)(nil)

func NewJobGormRepository(db *transaction.Database) job.Repository {
	return &JobGormRepository{db: db}
}

func (r *JobGormRepository) Create(ctx context.Context, j *job.Job) error {
	model := dbschema.NewSchemaGenerationJob(j)
	if err := r.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create job", err, "d5f7a9b1-3e2c-4d46-a8c0-b6e8f0a2c4d5")
	}
	j.ID = model.ID
	j.CreatedAt = model.CreatedAt
	j.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *JobGormRepository) GetByPublicID(ctx context.Context, publicID string) (*job.Job, error) {
	return r.first(ctx, "public_id = ?", publicID)
}

func (r *JobGormRepository) GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*job.Job, error) {
	return r.first(ctx, "public_id = ? AND user_id = ?", publicID, userID)
}

func (r *JobGormRepository) first(ctx context.Context, where string, args ...any) (*job.Job, error) {
	var model dbschema.GenerationJob
	if err := r.db.GetTx(ctx).Where(where, args...).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "job not found", err, "f7a9b1c3-5d4e-4f68-b0e2-c8f0a2b4d6e7")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to find job", err, "1b3d5f7a-9c8e-4a80-92b4-d0e2f4a6c8e9")
	}
	return model.EtoD(), nil
}

// MarkRunning is a conditional UPDATE: only one worker can move a job out of queued.
func (r *JobGormRepository) MarkRunning(ctx context.Context, id uint, at time.Time) (bool, error) {
	result := r.db.GetTx(ctx).Model(&dbschema.GenerationJob{}).
		Where("id = ? AND status = ?", id, string(job.StatusQueued)).
		Updates(map[string]any{
			"status":     string(job.StatusRunning),
			"started_at": at,
			"attempts":   gorm.Expr("attempts + 1"),
			"updated_at": at,
		})
	if result.Error != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to claim job", result.Error, "5f7a9b1d-3c2e-4e04-a6c8-e2f4a6b8d0f1")
	}
	return result.RowsAffected == 1, nil
}

func (r *JobGormRepository) Update(ctx context.Context, j *job.Job) error {
	model := dbschema.NewSchemaGenerationJob(j)
	if err := r.db.GetTx(ctx).Model(&dbschema.GenerationJob{}).
		Where("id = ?", j.ID).
		Updates(map[string]any{
			"status":        model.Status,
			"result":        model.Result,
			"raw_text":      model.RawText,
			"error_kind":    model.ErrorKind,
			"error_message": model.ErrorMessage,
			"attempts":      model.Attempts,
			"started_at":    model.StartedAt,
			"finished_at":   model.FinishedAt,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to update job", err, "9b1d3f5a-7e6c-4a28-b0e2-f6a8c0d2e4b3")
	}
	return nil
}

func (r *JobGormRepository) ListIDsByStatus(ctx context.Context, status job.Status, limit int) ([]string, error) {
	var ids []string
	if err := r.db.GetTx(ctx).Model(&dbschema.GenerationJob{}).
		Where("status = ?", string(status)).
		Order("created_at ASC").
		Limit(limit).
		Pluck("public_id", &ids).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list jobs", err, "3d5f7a9c-1e0b-4c4a-a2d4-a8c0e2f4b6d5")
	}
	return ids, nil
}

func (r *JobGormRepository) ReleaseStale(ctx context.Context, startedBefore time.Time) (int64, error) {
	result := r.db.GetTx(ctx).Model(&dbschema.GenerationJob{}).
		Where("status = ? AND started_at < ?", string(job.StatusRunning), startedBefore).
		Updates(map[string]any{
			"status":     string(job.StatusQueued),
			"started_at": nil,
			"updated_at": gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to release stale jobs", result.Error, "c4e6a8b0-2d1f-4a3e-9b5c-7d9f1b3e5a60")
	}
	return result.RowsAffected, nil
}

func (r *JobGormRepository) DeleteFinishedBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.GetTx(ctx).
		Where("status IN ? AND finished_at < ?", []string{string(job.StatusSucceeded), string(job.StatusFailed)}, before).
		Delete(&dbschema.GenerationJob{})
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to sweep jobs", result.Error, "7f9b1d3e-5a4c-4e6c-b4f6-c2e4a6b8d0f7")
	}
	return result.RowsAffected, nil
}
