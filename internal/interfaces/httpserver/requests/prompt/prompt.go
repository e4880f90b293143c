package prompt

import (
	"encoding/json"

	"promptforge/internal/domain/prompt"
)

// CreatePromptRequest is the body of POST /v1/prompts.
type CreatePromptRequest struct {
	Name        string          `json:"name" binding:"required,max=255"`
	Description string          `json:"description" binding:"required,max=1000"`
	JSONSchema  json.RawMessage `json:"json_schema,omitempty" swaggertype:"object"`
}

func (r CreatePromptRequest) ToInput() prompt.CreatePromptInput {
	return prompt.CreatePromptInput{
		Name:        r.Name,
		Description: r.Description,
		JSONSchema:  nullToEmpty(r.JSONSchema),
	}
}

// UpdatePromptRequest patches a prompt. Sending "json_schema": null removes
// the schema; omitting it keeps the current one.
type UpdatePromptRequest struct {
	Name        *string         `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=1000"`
	JSONSchema  json.RawMessage `json:"json_schema,omitempty" swaggertype:"object"`
}

func (r UpdatePromptRequest) ToInput() prompt.UpdatePromptInput {
	return prompt.UpdatePromptInput{
		Name:        r.Name,
		Description: r.Description,
		JSONSchema:  nullToEmpty(r.JSONSchema),
		ClearSchema: string(r.JSONSchema) == "null",
	}
}

func nullToEmpty(raw json.RawMessage) json.RawMessage {
	if string(raw) == "null" {
		return nil
	}
	return raw
}
