package tokenusage

import (
	"context"
	"time"
)

// Repository defines the interface for token usage data access
type Repository interface {
	// Create stores a new token usage record
	Create(ctx context.Context, usage *TokenUsage) error

	// GetUserUsage retrieves usage for a user grouped by model and provider
	GetUserUsage(ctx context.Context, userID uint, startDate, endDate time.Time) ([]UsageSummary, error)

	// GetDailyAggregates retrieves daily aggregated usage based on filters
	GetDailyAggregates(ctx context.Context, filter UsageFilter) ([]DailyAggregate, error)
}
