package prompt

import (
	"context"
	"encoding/json"
	"time"

	"promptforge/internal/domain/query"
)

// ===============================================
// Prompt Types
// ===============================================

// Prompt is a user-owned generation template. Description doubles as the
// system instruction and JSONSchema, when set, requests structured output.
type Prompt struct {
	ID          uint            `json:"-"`
	PublicID    string          `json:"id"`
	UserID      uint            `json:"-"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSONSchema  json.RawMessage `json:"json_schema,omitempty"`
	CountUsage  int64           `json:"count_usage"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasSchema reports whether the prompt asks for structured output.
func (p *Prompt) HasSchema() bool {
	if p == nil {
		return false
	}
	trimmed := string(p.JSONSchema)
	return trimmed != "" && trimmed != "null"
}

// ===============================================
// Prompt Repository
// ===============================================

type PromptFilter struct {
	PublicID *string
	UserID   *uint
	Search   *string
}

type PromptRepository interface {
	Create(ctx context.Context, prompt *Prompt) error
	GetByID(ctx context.Context, id uint) (*Prompt, error)
	GetByPublicID(ctx context.Context, publicID string) (*Prompt, error)
	GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*Prompt, error)
	ListByUserID(ctx context.Context, userID uint, pagination *query.Pagination) ([]*Prompt, int64, error)
	Update(ctx context.Context, prompt *Prompt) error
	Delete(ctx context.Context, id uint) error
	// IncrementUsage runs count_usage = count_usage + 1 in the caller's transaction.
	IncrementUsage(ctx context.Context, id uint) error
}

// ===============================================
// Prompt Inputs
// ===============================================

// CreatePromptInput carries the user supplied fields of a new prompt.
type CreatePromptInput struct {
	Name        string          `validate:"required,max=255"`
	Description string          `validate:"required,max=1000"`
	JSONSchema  json.RawMessage
}

// UpdatePromptInput patches a prompt. Nil fields are left as is; a
// ClearSchema request drops the structured output schema.
type UpdatePromptInput struct {
	Name        *string         `validate:"omitempty,max=255"`
	Description *string         `validate:"omitempty,max=1000"`
	JSONSchema  json.RawMessage
	ClearSchema bool
}
