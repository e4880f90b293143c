package generation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResponse(t *testing.T, raw string) *GenerateContentResponse {
	t.Helper()
	var resp GenerateContentResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestExtractText(t *testing.T) {
	resp := decodeResponse(t, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "hello"}, {"text": "ignored"}]}, "finishReason": "STOP"}],
		"usageMetadata": {"promptTokenCount": 5, "candidatesTokenCount": 2, "totalTokenCount": 7},
		"modelVersion": "gemini-2.5-flash"
	}`)

	out, err := Extract(context.Background(), resp)
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Text)
	assert.Equal(t, "STOP", out.FinishReason)
	require.NotNil(t, out.Usage)
	assert.Equal(t, 7, out.Usage.TotalTokenCount)
}

func TestExtractEmptyTextIsPresent(t *testing.T) {
	out, err := Extract(context.Background(), decodeResponse(t, `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "", out.Text)
}

func TestExtractMissingSegments(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "no candidates key", raw: `{}`},
		{name: "empty candidates", raw: `{"candidates": []}`},
		{name: "blocked prompt", raw: `{"promptFeedback": {"blockReason": "SAFETY"}}`},
		{name: "no content", raw: `{"candidates": [{"finishReason": "SAFETY"}]}`},
		{name: "no parts", raw: `{"candidates": [{"content": {"role": "model"}}]}`},
		{name: "empty parts", raw: `{"candidates": [{"content": {"parts": []}}]}`},
		{name: "no text", raw: `{"candidates": [{"content": {"parts": [{"inlineData": {}}]}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(context.Background(), decodeResponse(t, tt.raw))
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, KindInvalidUpstreamResponse, kind)
		})
	}

	_, err := Extract(context.Background(), nil)
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidUpstreamResponse, kind)
}

func TestParseOutputStripsFence(t *testing.T) {
	plain := `[{"name":"Alice","age":"30"}]`
	variants := []string{
		plain,
		"```json\n" + plain + "\n```",
		"```JSON\n" + plain + "\n```",
		"```\n" + plain + "\n```",
		"  ```json" + plain + "```  ",
		"[ {\"name\": \"Alice\", \"age\": \"30\"} ]",
	}

	want, err := ParseOutput(context.Background(), plain, true)
	require.NoError(t, err)
	for _, variant := range variants {
		got, err := ParseOutput(context.Background(), variant, true)
		require.NoError(t, err, variant)
		assert.Equal(t, string(want.JSON), string(got.JSON), variant)
	}

	value, err := want.Value()
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "Alice", "age": "30"}}, value)
}

func TestParseOutputWithoutSchemaIsVerbatim(t *testing.T) {
	texts := []string{
		"  leading and trailing  \n",
		"```json\n{\"a\":1}\n```",
		"",
		"line one\n\tline two",
	}
	for _, text := range texts {
		out, err := ParseOutput(context.Background(), text, false)
		require.NoError(t, err)
		assert.False(t, out.Structured)
		assert.Equal(t, text, out.Text)

		body, err := json.Marshal(out)
		require.NoError(t, err)
		var decoded string
		require.NoError(t, json.Unmarshal(body, &decoded))
		assert.Equal(t, text, decoded)
	}
}

func TestParseOutputMalformed(t *testing.T) {
	for _, text := range []string{"not json", "```json\n{\"a\":\n```", "", "```json```"} {
		_, err := ParseOutput(context.Background(), text, true)
		kind, ok := KindOf(err)
		require.True(t, ok, text)
		assert.Equal(t, KindMalformedModelOutput, kind)
	}
}

func TestOutputMarshalStructured(t *testing.T) {
	out, err := ParseOutput(context.Background(), "```json\n{\"b\": 1, \"a\": 2}\n```", true)
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{"result": out})
	require.NoError(t, err)
	assert.Equal(t, `{"result":{"b":1,"a":2}}`, string(body))
}
