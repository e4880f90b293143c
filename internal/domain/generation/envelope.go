package generation

import (
	"encoding/json"
	"errors"
)

const (
	RoleUser  = "user"
	RoleModel = "model"

	ResponseMimeTypeJSON = "application/json"
)

// GenerateContentRequest is the outbound generateContent body.
type GenerateContentRequest struct {
	SystemInstruction *Content          `json:"system_instruction,omitempty"`
	Contents          []Content         `json:"contents"`
	GenerationConfig  *GenerationConfig `json:"generation_config,omitempty"`
}

// Content is one conversation turn. Role is omitted in stateless mode.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is either a text segment or an inline file payload, never both.
type Part struct {
	Text       string
	InlineData *InlineData
}

type InlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func (p Part) IsInlineData() bool {
	return p.InlineData != nil
}

func (p Part) MarshalJSON() ([]byte, error) {
	if p.InlineData != nil {
		return json.Marshal(struct {
			InlineData *InlineData `json:"inline_data"`
		}{p.InlineData})
	}
	return json.Marshal(struct {
		Text string `json:"text"`
	}{p.Text})
}

func (p *Part) UnmarshalJSON(data []byte) error {
	var wire struct {
		Text       *string     `json:"text"`
		InlineData *InlineData `json:"inline_data"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	switch {
	case wire.InlineData != nil:
		*p = Part{InlineData: wire.InlineData}
	case wire.Text != nil:
		*p = Part{Text: *wire.Text}
	default:
		return errors.New("part has neither text nor inline_data")
	}
	return nil
}

type GenerationConfig struct {
	ResponseMimeType string          `json:"response_mime_type"`
	ResponseSchema   *ResponseSchema `json:"response_schema"`
}

// GenerateContentResponse is the provider reply. Every level that may be
// absent is a pointer or a slice so absence can be told apart from empty text.
type GenerateContentResponse struct {
	Candidates     []Candidate     `json:"candidates"`
	UsageMetadata  *UsageMetadata  `json:"usageMetadata,omitempty"`
	ModelVersion   string          `json:"modelVersion,omitempty"`
	PromptFeedback *PromptFeedback `json:"promptFeedback,omitempty"`
}

type Candidate struct {
	Content      *CandidateContent `json:"content"`
	FinishReason string            `json:"finishReason,omitempty"`
}

type CandidateContent struct {
	Role  string          `json:"role,omitempty"`
	Parts []CandidatePart `json:"parts"`
}

type CandidatePart struct {
	Text *string `json:"text"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type PromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

// ErrorEnvelope is the body the provider sends with non-2xx statuses.
type ErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
