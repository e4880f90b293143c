package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/application/generator"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
)

func TestWriteSchemaProviderFormat(t *testing.T) {
	var out bytes.Buffer
	err := writeSchema(context.Background(), &out, []byte(`{"title":"string","score":"number"}`), "provider", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "ARRAY",
		"items": {
			"type": "OBJECT",
			"properties": {"title": "string", "score": "number"},
			"propertyOrdering": ["title", "score"]
		}
	}`, out.String())
}

func TestWriteSchemaJSONSchemaFormat(t *testing.T) {
	var out bytes.Buffer
	err := writeSchema(context.Background(), &out, []byte(`"{\"title\":\"string\"}"`), "jsonschema", "Review")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, "Review", doc["title"])
	assert.Equal(t, "array", doc["type"])
	items := doc["items"].(map[string]any)
	assert.Equal(t, []any{"title"}, items["required"])
}

func TestWriteSchemaRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	err := writeSchema(context.Background(), &out, []byte(`[1,2]`), "provider", "")
	kind, ok := generation.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, generation.KindMalformedSchema, kind)

	err = writeSchema(context.Background(), &out, []byte(`{"a":"string"}`), "yaml", "")
	assert.EqualError(t, err, `unknown format "yaml"`)
}

func TestReadArgFromStdin(t *testing.T) {
	raw, err := readArg(strings.NewReader(`{"a":"string"}`), "-")
	require.NoError(t, err)
	assert.Equal(t, `{"a":"string"}`, string(raw))

	raw, err = readArg(nil, `{"b":"number"}`)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"number"}`, string(raw))
}

type cannedTransport struct {
	text string
	got  *generation.GenerateContentRequest
}

func (c *cannedTransport) GenerateContent(_ context.Context, req *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error) {
	c.got = req
	text := c.text
	return &generation.GenerateContentResponse{
		Candidates: []generation.Candidate{{
			Content:      &generation.CandidateContent{Parts: []generation.CandidatePart{{Text: &text}}},
			FinishReason: "STOP",
		}},
		UsageMetadata: &generation.UsageMetadata{PromptTokenCount: 3, CandidatesTokenCount: 5, TotalTokenCount: 8},
	}, nil
}

func (c *cannedTransport) Model() string { return "gemini-test" }

func TestRunGenerateStructured(t *testing.T) {
	transport := &cannedTransport{text: "```json\n[{\"title\":\"a\"}]\n```"}
	var usage bytes.Buffer
	service := generator.NewService(schemaOnlyPrompts{}, nil, usagePrinter{out: &usage}, transport, nil)

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, service, generator.Request{
		Prompt:  &prompt.Prompt{PublicID: "cli", Description: "List titles", JSONSchema: []byte(`{"title":"string"}`)},
		Mode:    generation.ModeStateless,
		Content: "one title please",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"a"}]`, out.String())
	assert.Contains(t, usage.String(), "total_tokens=8")
	require.NotNil(t, transport.got)
	assert.NotNil(t, transport.got.GenerationConfig)
}

func TestRunGenerateDebugSkipsTransport(t *testing.T) {
	transport := &cannedTransport{text: "unused"}
	service := generator.NewService(schemaOnlyPrompts{}, nil, usagePrinter{out: &bytes.Buffer{}}, transport, nil)

	var out bytes.Buffer
	err := runGenerate(context.Background(), &out, service, generator.Request{
		Prompt:  &prompt.Prompt{PublicID: "cli", Description: "Echo"},
		Mode:    generation.ModeStateless,
		Content: "hi",
		Debug:   true,
	})
	require.NoError(t, err)
	assert.Nil(t, transport.got)
	assert.Contains(t, out.String(), "Echo")
}
