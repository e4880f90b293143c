package tokenusage

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenUsage represents a single token usage record
type TokenUsage struct {
	ID               int64
	UserID           uint
	PromptID         *uint
	Model            string
	Provider         string
	Mode             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCostUSD decimal.Decimal
	RequestID        *string
	CreatedAt        time.Time
}

// UsageSummary represents aggregated usage statistics
type UsageSummary struct {
	Model                 string          `json:"model"`
	Provider              string          `json:"provider"`
	TotalPromptTokens     int64           `json:"total_prompt_tokens"`
	TotalCompletionTokens int64           `json:"total_completion_tokens"`
	TotalTokens           int64           `json:"total_tokens"`
	RequestCount          int64           `json:"request_count"`
	EstimatedCostUSD      decimal.Decimal `json:"estimated_cost_usd"`
}

// DailyAggregate represents daily aggregated usage
type DailyAggregate struct {
	Date                  time.Time       `json:"date"`
	TotalPromptTokens     int64           `json:"total_prompt_tokens"`
	TotalCompletionTokens int64           `json:"total_completion_tokens"`
	TotalTokens           int64           `json:"total_tokens"`
	RequestCount          int64           `json:"request_count"`
	EstimatedCostUSD      decimal.Decimal `json:"estimated_cost_usd"`
}

// UsageFilter represents filter options for querying usage
type UsageFilter struct {
	UserID    uint
	PromptID  *uint
	Model     string
	StartDate time.Time
	EndDate   time.Time
}

// Price is the USD cost per one million tokens.
type Price struct {
	PromptPerMillion     decimal.Decimal
	CompletionPerMillion decimal.Decimal
}

// Pricing maps model names to prices. Unknown models use Default.
type Pricing struct {
	Models  map[string]Price
	Default Price
}

var million = decimal.NewFromInt(1_000_000)

// DefaultPricing carries the published Gemini 2.5 Flash prices.
func DefaultPricing() Pricing {
	flash := Price{
		PromptPerMillion:     decimal.RequireFromString("0.30"),
		CompletionPerMillion: decimal.RequireFromString("2.50"),
	}
	return Pricing{
		Models:  map[string]Price{"gemini-2.5-flash": flash},
		Default: flash,
	}
}

// CalculateCost calculates estimated cost for token usage
func (p Pricing) CalculateCost(model string, promptTokens, completionTokens int) decimal.Decimal {
	price, ok := p.Models[model]
	if !ok {
		price = p.Default
	}
	promptCost := price.PromptPerMillion.Mul(decimal.NewFromInt(int64(promptTokens))).Div(million)
	completionCost := price.CompletionPerMillion.Mul(decimal.NewFromInt(int64(completionTokens))).Div(million)
	return promptCost.Add(completionCost)
}
