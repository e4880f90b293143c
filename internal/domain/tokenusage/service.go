package tokenusage

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"promptforge/internal/utils/platformerrors"
)

// Service provides token usage business logic
type Service struct {
	repo    Repository
	pricing Pricing
}

// NewService creates a new token usage service
func NewService(repo Repository, pricing Pricing) *Service {
	return &Service{repo: repo, pricing: pricing}
}

// RecordUsage records a new token usage event
func (s *Service) RecordUsage(ctx context.Context, usage *TokenUsage) error {
	// Ensure total tokens is calculated
	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
	}

	// Calculate cost if not provided
	if usage.EstimatedCostUSD.IsZero() {
		usage.EstimatedCostUSD = s.pricing.CalculateCost(usage.Model, usage.PromptTokens, usage.CompletionTokens)
	}

	if err := s.repo.Create(ctx, usage); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record token usage")
	}
	return nil
}

// GetMyUsage retrieves usage summary for a user within a date range
func (s *Service) GetMyUsage(ctx context.Context, userID uint, startDate, endDate time.Time) (*UsageResponse, error) {
	if endDate.Before(startDate) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "end date must not be before start date", nil, "")
	}

	summaries, err := s.repo.GetUserUsage(ctx, userID, startDate, endDate)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load usage")
	}

	return s.buildUsageResponse(summaries, startDate, endDate), nil
}

// GetMyDailyUsage retrieves daily aggregated usage for a user
func (s *Service) GetMyDailyUsage(ctx context.Context, userID uint, startDate, endDate time.Time) ([]DailyAggregate, error) {
	filter := UsageFilter{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}
	daily, err := s.repo.GetDailyAggregates(ctx, filter)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load daily usage")
	}
	return daily, nil
}

// buildUsageResponse folds per model/provider rows into totals. Groups are
// sorted by key so responses are stable.
func (s *Service) buildUsageResponse(summaries []UsageSummary, startDate, endDate time.Time) *UsageResponse {
	response := &UsageResponse{
		Period:     Period{StartDate: startDate, EndDate: endDate},
		TotalUsage: UsageSummary{EstimatedCostUSD: decimal.Zero},
	}

	byModel := map[string]*UsageSummary{}
	byProvider := map[string]*UsageSummary{}
	for _, summary := range summaries {
		accumulate(&response.TotalUsage, summary)
		group(byModel, summary.Model, UsageSummary{Model: summary.Model}, summary)
		group(byProvider, summary.Provider, UsageSummary{Provider: summary.Provider}, summary)
	}

	response.ByModel = sortedGroups(byModel)
	response.ByProvider = sortedGroups(byProvider)
	return response
}

func group(groups map[string]*UsageSummary, key string, seed UsageSummary, summary UsageSummary) {
	existing, ok := groups[key]
	if !ok {
		seed.EstimatedCostUSD = decimal.Zero
		existing = &seed
		groups[key] = existing
	}
	accumulate(existing, summary)
}

func accumulate(dst *UsageSummary, src UsageSummary) {
	dst.TotalPromptTokens += src.TotalPromptTokens
	dst.TotalCompletionTokens += src.TotalCompletionTokens
	dst.TotalTokens += src.TotalTokens
	dst.RequestCount += src.RequestCount
	dst.EstimatedCostUSD = dst.EstimatedCostUSD.Add(src.EstimatedCostUSD)
}

func sortedGroups(groups map[string]*UsageSummary) []UsageSummary {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]UsageSummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, *groups[k])
	}
	return out
}

// UsageResponse represents the API response for usage queries
type UsageResponse struct {
	Period     Period         `json:"period"`
	TotalUsage UsageSummary   `json:"total_usage"`
	ByModel    []UsageSummary `json:"by_model"`
	ByProvider []UsageSummary `json:"by_provider"`
}

// Period represents a date range for usage queries
type Period struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
