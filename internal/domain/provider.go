package domain

import (
	"fmt"

	"github.com/google/wire"
	"github.com/shopspring/decimal"

	"promptforge/internal/config"
	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/domain/user"
)

// ServiceProvider provides all domain services
var ServiceProvider = wire.NewSet(
	prompt.NewPromptService,
	chat.NewChatService,

	// Files
	ProvideFilePolicy,
	file.NewFileService,

	// Token usage
	ProvidePricing,
	tokenusage.NewService,

	user.NewService,
)

// ProvideFilePolicy applies the configured size limit and extension list.
func ProvideFilePolicy(cfg *config.Config) file.Policy {
	return file.Policy{
		MaxBytes: cfg.MaxUploadBytes(),
		Allowed:  cfg.Generation.AllowedExtension,
	}
}

// ProvidePricing overlays the YAML prices on the built-in defaults.
func ProvidePricing(cfg *config.Config) (tokenusage.Pricing, error) {
	pricing := tokenusage.DefaultPricing()
	if cfg.Generation == nil {
		return pricing, nil
	}
	for model, price := range cfg.Generation.Pricing {
		promptPrice, err := decimal.NewFromString(price.PromptPerMillion)
		if err != nil {
			return pricing, fmt.Errorf("pricing %s: prompt_per_million: %w", model, err)
		}
		completionPrice, err := decimal.NewFromString(price.CompletionPerMillion)
		if err != nil {
			return pricing, fmt.Errorf("pricing %s: completion_per_million: %w", model, err)
		}
		pricing.Models[model] = tokenusage.Price{PromptPerMillion: promptPrice, CompletionPerMillion: completionPrice}
	}
	if price, ok := pricing.Models[cfg.GeminiModel]; ok {
		pricing.Default = price
	}
	return pricing, nil
}
