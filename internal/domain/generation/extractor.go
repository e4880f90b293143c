package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
)

// Extraction is the generated text plus the metadata that came with it.
type Extraction struct {
	Text         string
	FinishReason string
	Usage        *UsageMetadata
	ModelVersion string
}

// Extract walks candidates[0].content.parts[0].text. Every segment is required.
func Extract(ctx context.Context, resp *GenerateContentResponse) (*Extraction, error) {
	if resp == nil {
		return nil, fail(ctx, KindInvalidUpstreamResponse, "provider returned an empty body", nil, "b3f7e1a9-2c4d-4e8b-9a06-c5d1f8e2b7a4")
	}
	if len(resp.Candidates) == 0 {
		message := "provider returned no candidates"
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			message += " (blocked: " + resp.PromptFeedback.BlockReason + ")"
		}
		return nil, fail(ctx, KindInvalidUpstreamResponse, message, nil, "9e1c5a3f-7d2b-4f68-b4e0-a8c3d6f1e2b9")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return nil, fail(ctx, KindInvalidUpstreamResponse, "first candidate has no content", nil, "2d8f4b6e-1a3c-4e97-85b0-f7c2e9a1d3b6")
	}
	if len(candidate.Content.Parts) == 0 {
		return nil, fail(ctx, KindInvalidUpstreamResponse, "first candidate has no parts", nil, "f6a2c8e4-5b1d-4a3f-9e07-d1b8c4f2a6e9")
	}
	text := candidate.Content.Parts[0].Text
	if text == nil {
		return nil, fail(ctx, KindInvalidUpstreamResponse, "first part has no text", nil, "1b7e3d9f-8c2a-4b65-a0f4-e3d9c7b1a5f2")
	}

	return &Extraction{
		Text:         *text,
		FinishReason: candidate.FinishReason,
		Usage:        resp.UsageMetadata,
		ModelVersion: resp.ModelVersion,
	}, nil
}

// Output is the parsed reply: a JSON document when the prompt declares a
// schema, the verbatim text otherwise.
type Output struct {
	Structured bool
	JSON       json.RawMessage
	Text       string
}

// MarshalJSON writes the document itself for structured output and a JSON
// string for free text.
func (o Output) MarshalJSON() ([]byte, error) {
	if o.Structured {
		return o.JSON, nil
	}
	return json.Marshal(o.Text)
}

// Value decodes the output into generic Go values.
func (o Output) Value() (any, error) {
	if !o.Structured {
		return o.Text, nil
	}
	var v any
	if err := json.Unmarshal(o.JSON, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseOutput interprets text according to whether a schema was requested.
func ParseOutput(ctx context.Context, text string, structured bool) (Output, error) {
	if !structured {
		return Output{Text: text}, nil
	}

	body := []byte(StripCodeFence(text))
	if !json.Valid(body) {
		return Output{}, fail(ctx, KindMalformedModelOutput, "model output is not valid JSON", nil, "c8e2a6f4-3d9b-4e17-b5a0-7f1d4c9e2b8a")
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return Output{}, fail(ctx, KindMalformedModelOutput, "model output could not be compacted", err, "5f3b9d1e-6a4c-4b82-8e7f-2c9a1d5e3f06")
	}
	return Output{Structured: true, JSON: compact.Bytes()}, nil
}

// StripCodeFence removes a surrounding ``` or ```json fence.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 6 || !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}
	inner := trimmed[3 : len(trimmed)-3]
	if len(inner) >= 4 && strings.EqualFold(inner[:4], "json") {
		inner = inner[4:]
	}
	return strings.TrimSpace(inner)
}
