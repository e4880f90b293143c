package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/utils/platformerrors"
)

func peoplePrompt() *prompt.Prompt {
	return &prompt.Prompt{
		ID:          1,
		PublicID:    "2f1c7a0e-7d4b-4c1e-9a53-0d6f2b8e4c11",
		UserID:      9,
		Name:        "people",
		Description: "Extract people.",
		JSONSchema:  json.RawMessage(`{"name":"string","age":"string"}`),
	}
}

func attachment(name string, data []byte) generation.Attachment {
	return generation.Attachment{
		Name:     name,
		MimeType: "text/plain",
		Open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

func TestGenerateStatefulWithSchema(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	h.st.turns[p.ID] = []*chat.Chat{{PromptID: p.ID, Role: chat.RoleUser, Text: "Hello"}}
	h.transport.resp = textResponse(`[{"name":"Alice","age":"30"}]`)

	result, err := h.svc.Generate(context.Background(), Request{Prompt: p, UserID: 9, Mode: generation.ModeStateful, RequestID: "req-1"})
	require.NoError(t, err)

	value, err := result.Output.Value()
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "Alice", "age": "30"}}, value)
	assert.Equal(t, generation.StatePersisted, result.State)

	turns := h.st.turns[p.ID]
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleModel, turns[1].Role)
	assert.Equal(t, `[{"name":"Alice","age":"30"}]`, turns[1].Text)
	assert.EqualValues(t, 1, h.st.counts[p.ID])
	assert.Equal(t, 1, h.tx.commits)

	require.Len(t, h.st.records, 1)
	assert.Equal(t, 20, h.st.records[0].TotalTokens)
	assert.Equal(t, "stateful", h.st.records[0].Mode)
	assert.Equal(t, "req-1", *h.st.records[0].RequestID)
	assert.Equal(t, []string{"req-1"}, h.transport.requestIDs)

	require.Len(t, h.transport.requests, 1)
	sent := h.transport.requests[0]
	require.NotNil(t, sent.GenerationConfig)
	assert.Equal(t, []string{"name", "age"}, sent.GenerationConfig.ResponseSchema.Items.PropertyOrdering)
	require.Len(t, sent.Contents, 1)
	assert.Equal(t, generation.RoleUser, sent.Contents[0].Role)
	assert.Equal(t, "Extract people.", sent.SystemInstruction.Parts[0].Text)
}

func TestGenerateUpstreamErrorWritesNothing(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	h.st.turns[p.ID] = []*chat.Chat{{PromptID: p.ID, Role: chat.RoleUser, Text: "Hello"}}
	h.transport.err = generation.NewFailure(context.Background(), &generation.Failure{
		Kind:       generation.KindUpstreamError,
		Message:    "provider returned 500",
		StatusCode: http.StatusInternalServerError,
	}, "")

	_, err := h.svc.Generate(context.Background(), Request{Prompt: p, Mode: generation.ModeStateful})
	kind, ok := generation.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, generation.KindUpstreamError, kind)

	assert.Len(t, h.st.turns[p.ID], 1)
	assert.Zero(t, h.st.counts[p.ID])
	assert.Empty(t, h.st.records)
	assert.Zero(t, h.tx.commits)
}

func TestGenerateStatelessCountsUsageWithoutTurns(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	p.JSONSchema = nil
	h.st.turns[p.ID] = []*chat.Chat{{PromptID: p.ID, Role: chat.RoleUser, Text: "ignored"}}
	h.transport.resp = textResponse("  free text\n")

	result, err := h.svc.Generate(context.Background(), Request{
		Prompt:      p,
		Mode:        generation.ModeStateless,
		Content:     "Tell me something",
		Attachments: []generation.Attachment{attachment("a.txt", []byte("x"))},
	})
	require.NoError(t, err)
	assert.Equal(t, "  free text\n", result.Output.Text)
	assert.False(t, result.Output.Structured)

	sent := h.transport.requests[0]
	require.Len(t, sent.Contents, 1)
	assert.Empty(t, sent.Contents[0].Role)
	assert.Equal(t, []generation.Part{generation.TextPart("Tell me something")}, sent.Contents[0].Parts)
	assert.Nil(t, sent.GenerationConfig)

	assert.Len(t, h.st.turns[p.ID], 1)
	assert.EqualValues(t, 1, h.st.counts[p.ID])
	assert.EqualValues(t, 1, p.CountUsage)
}

func TestGenerateStatefulStoresOnlyModelTurn(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	p.JSONSchema = nil
	h.st.turns[p.ID] = []*chat.Chat{{PromptID: p.ID, Role: chat.RoleUser, Text: "Hello"}}
	h.transport.resp = textResponse("answer")

	_, err := h.svc.Generate(context.Background(), Request{
		Prompt:      p,
		Mode:        generation.ModeStateful,
		Content:     "Hello",
		Attachments: []generation.Attachment{attachment("a.txt", []byte("file body"))},
	})
	require.NoError(t, err)

	turns := h.st.turns[p.ID]
	require.Len(t, turns, 2)
	assert.Equal(t, chat.RoleUser, turns[0].Role)
	assert.Equal(t, chat.RoleModel, turns[1].Role)
	assert.Equal(t, "answer", turns[1].Text)

	sent := h.transport.requests[0]
	require.Len(t, sent.Contents, 1)
	require.Len(t, sent.Contents[0].Parts, 2)
	assert.Equal(t, "Hello", sent.Contents[0].Parts[0].Text)
	assert.True(t, sent.Contents[0].Parts[1].IsInlineData())
}

func TestGenerateDebugSkipsProviderAndWrites(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	h.st.turns[p.ID] = []*chat.Chat{{PromptID: p.ID, Role: chat.RoleUser, Text: "Hello"}}

	result, err := h.svc.Generate(context.Background(), Request{
		Prompt:      p,
		Mode:        generation.ModeStateful,
		Debug:       true,
		Attachments: []generation.Attachment{attachment("a.txt", []byte("x"))},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Debug)
	assert.True(t, result.Debug.Debug)
	assert.Equal(t, 1, result.Debug.Inputs.Turns)
	assert.Equal(t, "a.txt", result.Debug.Inputs.Files[0].Name)
	require.NotNil(t, result.Debug.Request)
	assert.Len(t, result.Debug.Request.Contents[0].Parts, 2)
	assert.Equal(t, generation.StateBuilt, result.State)

	assert.Zero(t, h.transport.calls)
	assert.Zero(t, h.st.counts[p.ID])
	assert.Len(t, h.st.turns[p.ID], 1)
}

func TestGenerateFailsBeforeNetwork(t *testing.T) {
	broken := generation.Attachment{
		Name:     "gone.pdf",
		MimeType: "application/pdf",
		Open:     func() (io.ReadCloser, error) { return nil, errors.New("missing") },
	}
	tests := []struct {
		name    string
		turns   []*chat.Chat
		content string
		files   []generation.Attachment
		want    generation.Kind
	}{
		{name: "empty history with file", files: []generation.Attachment{attachment("a.txt", []byte("x"))}, want: generation.KindEmptyConversation},
		{name: "empty history", want: generation.KindEmptyConversation},
		{name: "empty history with content and file", content: "describe", files: []generation.Attachment{attachment("a.txt", []byte("x"))}, want: generation.KindEmptyConversation},
		{name: "unreadable file", turns: []*chat.Chat{{Role: chat.RoleUser, Text: "hi"}}, files: []generation.Attachment{broken}, want: generation.KindFileReadError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			p := peoplePrompt()
			h.st.turns[p.ID] = tt.turns

			_, err := h.svc.Generate(context.Background(), Request{Prompt: p, Mode: generation.ModeStateful, Content: tt.content, Attachments: tt.files})
			kind, ok := generation.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, kind)
			assert.Zero(t, h.transport.calls)
		})
	}
}

func TestGenerateMalformedModelOutput(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	h.transport.resp = textResponse("Sure! Here are the people: Alice, 30")

	_, err := h.svc.Generate(context.Background(), Request{Prompt: p, Mode: generation.ModeStateless, Content: "x"})
	kind, _ := generation.KindOf(err)
	assert.Equal(t, generation.KindMalformedModelOutput, kind)
	assert.Zero(t, h.st.counts[p.ID])
}

func TestGenerateInvalidUpstreamResponse(t *testing.T) {
	h := newHarness()
	h.transport.resp = &generation.GenerateContentResponse{}

	_, err := h.svc.Generate(context.Background(), Request{Prompt: peoplePrompt(), Mode: generation.ModeStateless, Content: "x"})
	kind, _ := generation.KindOf(err)
	assert.Equal(t, generation.KindInvalidUpstreamResponse, kind)
}

func TestGenerateRollsBackOnPersistenceFailure(t *testing.T) {
	h := newHarness()
	p := peoplePrompt()
	p.JSONSchema = nil
	h.st.turns[p.ID] = []*chat.Chat{{Role: chat.RoleUser, Text: "hi"}}
	h.transport.resp = textResponse("reply")
	h.usage.fail = true

	_, err := h.svc.Generate(context.Background(), Request{Prompt: p, Mode: generation.ModeStateful})
	require.Error(t, err)
	assert.Len(t, h.st.turns[p.ID], 1)
	assert.Zero(t, h.st.counts[p.ID])
	assert.Zero(t, p.CountUsage)
}

func TestGenerateValidatesRequest(t *testing.T) {
	long := string(bytes.Repeat([]byte("a"), MaxStatelessContent+1))
	tests := []struct {
		name string
		req  Request
	}{
		{name: "no prompt", req: Request{Mode: generation.ModeStateless, Content: "x"}},
		{name: "unknown mode", req: Request{Prompt: peoplePrompt(), Mode: "batch", Content: "x"}},
		{name: "stateless without content", req: Request{Prompt: peoplePrompt(), Mode: generation.ModeStateless}},
		{name: "stateless too long", req: Request{Prompt: peoplePrompt(), Mode: generation.ModeStateless, Content: long}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			_, err := h.svc.Generate(context.Background(), tt.req)
			assert.True(t, platformerrors.IsValidationError(err))
			assert.Zero(t, h.transport.calls)
		})
	}
}
