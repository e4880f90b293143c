package prompt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/invopop/jsonschema"

	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/query"
	"promptforge/internal/utils/platformerrors"
)

// ErrPromptNotFound is the message returned for unknown or foreign prompts.
const ErrPromptNotFound = "Prompt not found"

// PromptService handles business logic for prompts
type PromptService struct {
	repo      PromptRepository
	validator *PromptValidator
}

// NewPromptService creates a new prompt service
func NewPromptService(repo PromptRepository) *PromptService {
	return &PromptService{
		repo:      repo,
		validator: NewPromptValidator(),
	}
}

// ===============================================
// Core CRUD Operations
// ===============================================

// CreatePrompt validates the input, normalizes the schema and stores the prompt.
func (s *PromptService) CreatePrompt(ctx context.Context, userID uint, input CreatePromptInput) (*Prompt, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validator.ValidateCreate(&input); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "b6a0f3d2-4e1c-4f7a-9d85-1c3e7a2b9f60")
	}

	schema, err := canonicalSchema(ctx, input.JSONSchema)
	if err != nil {
		return nil, err
	}

	p := &Prompt{
		PublicID:    uuid.NewString(),
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		JSONSchema:  schema,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create prompt")
	}
	return p, nil
}

// GetPromptByPublicIDAndUserID returns the prompt when userID owns it. Unknown,
// malformed and foreign ids all yield the same not found error.
func (s *PromptService) GetPromptByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*Prompt, error) {
	if err := s.validator.ValidatePromptID(publicID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, ErrPromptNotFound, err, "0e7d5b3a-9c2f-4a16-b8e4-5f1a3c7d9e20")
	}

	p, err := s.repo.GetByPublicIDAndUserID(ctx, publicID, userID)
	if err != nil {
		if platformerrors.IsNotFoundError(err) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, ErrPromptNotFound, err, "4c9a1e7f-2b6d-4d83-a0f5-e8b2c6d4a193")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load prompt")
	}
	return p, nil
}

// GetPromptByID loads a prompt by internal id, for background work that
// already checked ownership.
func (s *PromptService) GetPromptByID(ctx context.Context, id uint) (*Prompt, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, ErrPromptNotFound)
	}
	return p, nil
}

// UpdatePrompt applies a patch to an owned prompt.
func (s *PromptService) UpdatePrompt(ctx context.Context, publicID string, userID uint, input UpdatePromptInput) (*Prompt, error) {
	if err := s.validator.ValidateUpdate(&input); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "7f2b8d4e-1a9c-4e65-b3d0-c5e7a9f1b284")
	}

	p, err := s.GetPromptByPublicIDAndUserID(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		p.Description = strings.TrimSpace(*input.Description)
	}
	switch {
	case input.ClearSchema:
		p.JSONSchema = nil
	case len(input.JSONSchema) > 0:
		schema, err := canonicalSchema(ctx, input.JSONSchema)
		if err != nil {
			return nil, err
		}
		p.JSONSchema = schema
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update prompt")
	}
	return p, nil
}

// DeletePrompt removes an owned prompt. Chats and files go with it.
func (s *PromptService) DeletePrompt(ctx context.Context, publicID string, userID uint) (*Prompt, error) {
	p, err := s.GetPromptByPublicIDAndUserID(ctx, publicID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete prompt")
	}
	return p, nil
}

// ListPromptsByUserID lists a user's prompts with pagination.
func (s *PromptService) ListPromptsByUserID(ctx context.Context, userID uint, pagination *query.Pagination) ([]*Prompt, int64, error) {
	prompts, total, err := s.repo.ListByUserID(ctx, userID, pagination)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list prompts")
	}
	return prompts, total, nil
}

// IncrementUsage bumps the usage counter. Call it inside the transaction that
// records the generation.
func (s *PromptService) IncrementUsage(ctx context.Context, p *Prompt) error {
	if err := s.repo.IncrementUsage(ctx, p.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to increment prompt usage")
	}
	return nil
}

// ===============================================
// Schema helpers
// ===============================================

// ResponseSchema returns the provider schema for p, or nil for free text prompts.
func (s *PromptService) ResponseSchema(ctx context.Context, p *Prompt) (*generation.ResponseSchema, error) {
	if !p.HasSchema() {
		return nil, nil
	}
	return generation.NormalizeSchema(ctx, p.JSONSchema)
}

// JSONSchema exports the structured output of p as JSON Schema.
func (s *PromptService) JSONSchema(ctx context.Context, p *Prompt) (*jsonschema.Schema, error) {
	if !p.HasSchema() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "prompt has no json schema", nil, "a3d7f9b1-6e2c-4a58-9f04-b1c8e2d6a7f5")
	}
	props, err := generation.ParseProperties(ctx, p.JSONSchema)
	if err != nil {
		return nil, err
	}
	return ExportJSONSchema(p.Name, props), nil
}

// canonicalSchema validates raw and returns it as a compact JSON object with
// the original key order. Empty input means no schema.
func canonicalSchema(ctx context.Context, raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	props, err := generation.ParseProperties(ctx, raw)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "json_schema must be a non-empty JSON object", err, "e9c3a5f7-8b1d-4c26-a4e0-d7f2b9c1e385")
	}
	body, err := props.MarshalJSON()
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to encode json_schema", err, "2b8e4c6a-f1d3-4e97-8a50-c3f7d1b9e246")
	}
	return body, nil
}
