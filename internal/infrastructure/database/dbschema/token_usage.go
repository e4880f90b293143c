package dbschema

import (
	"time"

	"github.com/shopspring/decimal"

	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(TokenUsage{})
}

// TokenUsage is one metered provider call. Rows survive prompt deletion.
type TokenUsage struct {
	ID               int64           `gorm:"primaryKey"`
	UserID           uint            `gorm:"not null;index:idx_token_usage_user_created"`
	PromptID         *uint           `gorm:"index"`
	Model            string          `gorm:"type:varchar(128);not null"`
	Provider         string          `gorm:"type:varchar(64);not null"`
	Mode             string          `gorm:"type:varchar(16);not null"`
	PromptTokens     int             `gorm:"not null;default:0"`
	CompletionTokens int             `gorm:"not null;default:0"`
	TotalTokens      int             `gorm:"not null;default:0"`
	EstimatedCostUSD decimal.Decimal `gorm:"column:estimated_cost_usd;type:numeric(18,8);not null;default:0"`
	RequestID        *string         `gorm:"type:varchar(64)"`
	CreatedAt        time.Time       `gorm:"not null;default:now();index:idx_token_usage_user_created"`
}

func (TokenUsage) TableName() string {
	return database.TablePrefix + "token_usage"
}

func NewSchemaTokenUsage(u *tokenusage.TokenUsage) *TokenUsage {
	return &TokenUsage{
		ID:               u.ID,
		UserID:           u.UserID,
		PromptID:         u.PromptID,
		Model:            u.Model,
		Provider:         u.Provider,
		Mode:             u.Mode,
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
		EstimatedCostUSD: u.EstimatedCostUSD,
		RequestID:        u.RequestID,
		CreatedAt:        u.CreatedAt,
	}
}
