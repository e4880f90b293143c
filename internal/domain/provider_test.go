package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/config"
)

func TestProvidePricingOverlaysFileConfig(t *testing.T) {
	cfg := &config.Config{
		GeminiModel: "gemini-2.5-pro",
		Generation: &config.GenerationFileConfig{Pricing: map[string]config.ModelPrice{
			"gemini-2.5-pro": {PromptPerMillion: "1.25", CompletionPerMillion: "10"},
		}},
	}
	pricing, err := ProvidePricing(cfg)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.25").Equal(pricing.Default.PromptPerMillion))
	assert.Contains(t, pricing.Models, "gemini-2.5-flash")

	cfg.Generation.Pricing["broken"] = config.ModelPrice{PromptPerMillion: "cheap", CompletionPerMillion: "1"}
	_, err = ProvidePricing(cfg)
	assert.Error(t, err)
}

func TestProvideFilePolicy(t *testing.T) {
	cfg := &config.Config{MaxUploadSizeKB: 2, Generation: &config.GenerationFileConfig{}}
	policy := ProvideFilePolicy(cfg)
	assert.EqualValues(t, 2048, policy.MaxBytes)
	assert.True(t, policy.Allowed("docx"))
	assert.False(t, policy.Allowed("exe"))
}
