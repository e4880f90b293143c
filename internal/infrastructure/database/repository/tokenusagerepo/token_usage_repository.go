package tokenusagerepo

import (
	"context"
	"time"

	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

// TokenUsageRepository implements tokenusage.Repository using GORM
type TokenUsageRepository struct {
	db *transaction.Database
}

var _ tokenusage.Repository = (*TokenUsageRepository)(nil)

func NewTokenUsageRepository(db *transaction.Database) tokenusage.Repository {
	return &TokenUsageRepository{db: db}
}

// Create stores a usage record in the caller's transaction, if any.
func (r *TokenUsageRepository) Create(ctx context.Context, usage *tokenusage.TokenUsage) error {
	model := dbschema.NewSchemaTokenUsage(usage)
	if err := r.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to record token usage", err, "1d3f5a7b-9e8c-4c0e-a4c6-e0f2b4d6a8c1")
	}
	usage.ID = model.ID
	usage.CreatedAt = model.CreatedAt
	return nil
}

// GetUserUsage aggregates a user's usage by model and provider within a date range
func (r *TokenUsageRepository) GetUserUsage(ctx context.Context, userID uint, startDate, endDate time.Time) ([]tokenusage.UsageSummary, error) {
	var summaries []tokenusage.UsageSummary
	err := r.db.GetTx(ctx).
		Model(&dbschema.TokenUsage{}).
		Select(`
			model,
			provider,
			SUM(prompt_tokens) as total_prompt_tokens,
			SUM(completion_tokens) as total_completion_tokens,
			SUM(total_tokens) as total_tokens,
			SUM(estimated_cost_usd) as estimated_cost_usd,
			COUNT(*) as request_count
		`).
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, startDate, endDate).
		Group("model, provider").
		Order("model, provider").
		Scan(&summaries).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to aggregate token usage", err, "5f7b9d1e-3a2c-4e4a-b8d0-f2a4c6e8b0d2")
	}
	return summaries, nil
}

// GetDailyAggregates groups usage by UTC calendar day, newest first.
func (r *TokenUsageRepository) GetDailyAggregates(ctx context.Context, filter tokenusage.UsageFilter) ([]tokenusage.DailyAggregate, error) {
	query := r.db.GetTx(ctx).Model(&dbschema.TokenUsage{}).Where("user_id = ?", filter.UserID)
	if filter.PromptID != nil {
		query = query.Where("prompt_id = ?", *filter.PromptID)
	}
	if filter.Model != "" {
		query = query.Where("model = ?", filter.Model)
	}
	if !filter.StartDate.IsZero() {
		query = query.Where("created_at >= ?", filter.StartDate)
	}
	if !filter.EndDate.IsZero() {
		query = query.Where("created_at <= ?", filter.EndDate)
	}

	var aggregates []tokenusage.DailyAggregate
	err := query.
		Select(`
			date_trunc('day', created_at AT TIME ZONE 'UTC') as date,
			SUM(prompt_tokens) as total_prompt_tokens,
			SUM(completion_tokens) as total_completion_tokens,
			SUM(total_tokens) as total_tokens,
			SUM(estimated_cost_usd) as estimated_cost_usd,
			COUNT(*) as request_count
		`).
		Group("1").
		Order("1 DESC").
		Scan(&aggregates).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to aggregate daily usage", err, "9b1d3f5a-7c6e-4a8c-a0e2-b4d6f8a0c2e4")
	}
	return aggregates, nil
}
