package generator

import (
	"encoding/json"

	"promptforge/internal/domain/generation"
)

// DebugEcho is returned instead of calling the provider when a request sets
// the debug flag. Request is the exact payload that would have been sent.
type DebugEcho struct {
	Debug   bool                               `json:"debug"`
	Mode    generation.Mode                    `json:"mode"`
	Prompt  DebugPrompt                        `json:"prompt"`
	Inputs  DebugInputs                        `json:"inputs"`
	Request *generation.GenerateContentRequest `json:"request"`
}

type DebugPrompt struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	JSONSchema  json.RawMessage `json:"json_schema,omitempty"`
}

type DebugInputs struct {
	Content string      `json:"content"`
	Turns   int         `json:"turns"`
	Files   []DebugFile `json:"files"`
}

type DebugFile struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

func newDebugEcho(req Request, turns int, payload *generation.GenerateContentRequest) *DebugEcho {
	files := make([]DebugFile, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		files = append(files, DebugFile{Name: a.Name, MimeType: a.MimeType})
	}
	return &DebugEcho{
		Debug: true,
		Mode:  req.Mode,
		Prompt: DebugPrompt{
			ID:          req.Prompt.PublicID,
			Name:        req.Prompt.Name,
			Description: req.Prompt.Description,
			JSONSchema:  req.Prompt.JSONSchema,
		},
		Inputs:  DebugInputs{Content: req.Content, Turns: turns, Files: files},
		Request: payload,
	}
}
