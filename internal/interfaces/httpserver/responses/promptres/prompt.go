package promptres

import (
	"encoding/json"

	"promptforge/internal/domain/prompt"
	"promptforge/internal/interfaces/httpserver/responses"
)

type PromptResponse struct {
	ID          string          `json:"id"`
	Object      string          `json:"object"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSONSchema  json.RawMessage `json:"json_schema,omitempty" swaggertype:"object"`
	CountUsage  int64           `json:"count_usage"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

type PromptDeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

func NewPromptResponse(p *prompt.Prompt) PromptResponse {
	return PromptResponse{
		ID:          p.PublicID,
		Object:      "prompt",
		Name:        p.Name,
		Description: p.Description,
		JSONSchema:  p.JSONSchema,
		CountUsage:  p.CountUsage,
		CreatedAt:   p.CreatedAt.Unix(),
		UpdatedAt:   p.UpdatedAt.Unix(),
	}
}

// NewPromptListResponse builds a cursor page. hasMore is computed by the
// caller from the page size it requested.
func NewPromptListResponse(prompts []*prompt.Prompt, total int64, hasMore bool) responses.ListResponse[PromptResponse] {
	data := make([]PromptResponse, 0, len(prompts))
	for _, p := range prompts {
		data = append(data, NewPromptResponse(p))
	}
	resp := responses.ListResponse[PromptResponse]{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
		Total:   total,
	}
	if len(data) > 0 {
		resp.FirstID = data[0].ID
		resp.LastID = data[len(data)-1].ID
	}
	return resp
}
