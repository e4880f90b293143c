package tokenusage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/utils/platformerrors"
)

type memoryRepo struct {
	records   []*TokenUsage
	summaries []UsageSummary
}

func (r *memoryRepo) Create(_ context.Context, usage *TokenUsage) error {
	r.records = append(r.records, usage)
	return nil
}

func (r *memoryRepo) GetUserUsage(context.Context, uint, time.Time, time.Time) ([]UsageSummary, error) {
	return r.summaries, nil
}

func (r *memoryRepo) GetDailyAggregates(context.Context, UsageFilter) ([]DailyAggregate, error) {
	return nil, nil
}

func TestCalculateCost(t *testing.T) {
	pricing := DefaultPricing()
	cost := pricing.CalculateCost("gemini-2.5-flash", 1_000_000, 1_000_000)
	assert.True(t, decimal.RequireFromString("2.80").Equal(cost), cost.String())

	pricing.Models["tiny"] = Price{PromptPerMillion: decimal.NewFromInt(1), CompletionPerMillion: decimal.NewFromInt(2)}
	cost = pricing.CalculateCost("tiny", 500, 250)
	assert.True(t, decimal.RequireFromString("0.001").Equal(cost), cost.String())

	cost = pricing.CalculateCost("unknown", 1_000_000, 0)
	assert.True(t, decimal.RequireFromString("0.30").Equal(cost), cost.String())
}

func TestRecordUsageFillsTotalsAndCost(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, DefaultPricing())

	usage := &TokenUsage{UserID: 1, Model: "gemini-2.5-flash", Provider: "gemini", PromptTokens: 10, CompletionTokens: 5}
	require.NoError(t, svc.RecordUsage(context.Background(), usage))
	require.Len(t, repo.records, 1)
	assert.Equal(t, 15, usage.TotalTokens)
	assert.True(t, usage.EstimatedCostUSD.GreaterThan(decimal.Zero))
}

func TestGetMyUsageAggregates(t *testing.T) {
	repo := &memoryRepo{summaries: []UsageSummary{
		{Model: "gemini-2.5-flash", Provider: "gemini", TotalPromptTokens: 10, TotalTokens: 12, RequestCount: 2, EstimatedCostUSD: decimal.NewFromFloat(0.5)},
		{Model: "gemini-2.5-pro", Provider: "gemini", TotalPromptTokens: 5, TotalTokens: 6, RequestCount: 1, EstimatedCostUSD: decimal.NewFromFloat(0.25)},
	}}
	svc := NewService(repo, DefaultPricing())
	start := time.Now().Add(-24 * time.Hour)

	resp, err := svc.GetMyUsage(context.Background(), 1, start, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.TotalUsage.RequestCount)
	assert.EqualValues(t, 18, resp.TotalUsage.TotalTokens)
	assert.True(t, decimal.NewFromFloat(0.75).Equal(resp.TotalUsage.EstimatedCostUSD))
	require.Len(t, resp.ByModel, 2)
	assert.Equal(t, "gemini-2.5-flash", resp.ByModel[0].Model)
	require.Len(t, resp.ByProvider, 1)
	assert.EqualValues(t, 3, resp.ByProvider[0].RequestCount)

	_, err = svc.GetMyUsage(context.Background(), 1, time.Now(), start)
	assert.True(t, platformerrors.IsValidationError(err))
}
