package generationhandler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/application/generator"
	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/tokenusage"
	"promptforge/internal/domain/user"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
)

type fakePrompts struct{ increments int }

func (f *fakePrompts) ResponseSchema(ctx context.Context, p *prompt.Prompt) (*generation.ResponseSchema, error) {
	if !p.HasSchema() {
		return nil, nil
	}
	return generation.NormalizeSchema(ctx, p.JSONSchema)
}

func (f *fakePrompts) IncrementUsage(context.Context, *prompt.Prompt) error {
	f.increments++
	return nil
}

type fakeHistory struct{ turns []generation.Turn }

func (f *fakeHistory) Turns(context.Context, uint) ([]generation.Turn, error) {
	return f.turns, nil
}

func (f *fakeHistory) Append(_ context.Context, promptID uint, role chat.Role, text string) (*chat.Chat, error) {
	f.turns = append(f.turns, generation.Turn{Role: string(role), Text: text})
	return &chat.Chat{PromptID: promptID, Role: role, Text: text}, nil
}

type fakeUsage struct{ records []*tokenusage.TokenUsage }

func (f *fakeUsage) RecordUsage(_ context.Context, u *tokenusage.TokenUsage) error {
	f.records = append(f.records, u)
	return nil
}

type fakeTransport struct {
	text  string
	err   error
	calls int
}

func (f *fakeTransport) GenerateContent(context.Context, *generation.GenerateContentRequest) (*generation.GenerateContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	text := f.text
	return &generation.GenerateContentResponse{
		Candidates: []generation.Candidate{{
			Content:      &generation.CandidateContent{Parts: []generation.CandidatePart{{Text: &text}}},
			FinishReason: "STOP",
		}},
		UsageMetadata: &generation.UsageMetadata{PromptTokenCount: 1, CandidatesTokenCount: 2, TotalTokenCount: 3},
	}, nil
}

func (f *fakeTransport) Model() string { return "gemini-test" }

type fixture struct {
	router    *gin.Engine
	prompts   *fakePrompts
	history   *fakeHistory
	usage     *fakeUsage
	transport *fakeTransport
}

func newFixture(p *prompt.Prompt, transport *fakeTransport) *fixture {
	f := &fixture{
		prompts:   &fakePrompts{},
		history:   &fakeHistory{},
		usage:     &fakeUsage{},
		transport: transport,
	}
	service := generator.NewService(f.prompts, f.history, f.usage, transport, nil)
	files := file.NewFileService(nil, nil, file.Policy{MaxBytes: 8, Allowed: func(string) bool { return true }})
	h := NewGenerationHandler(service, files)

	gin.SetMode(gin.TestMode)
	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		authhandler.SetUserInContext(c, &user.User{ID: 7})
		c.Set("prompt", p)
		c.Next()
	})
	f.router.POST("/stateless", h.GenerateStateless)
	f.router.POST("/stateful", h.GenerateStateful)
	return f
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGenerateStatelessReturnsParsedOutput(t *testing.T) {
	p := &prompt.Prompt{ID: 1, PublicID: "p", Description: "List", JSONSchema: []byte(`{"title":"string"}`)}
	f := newFixture(p, &fakeTransport{text: "```json\n[{\"title\": \"a\"}]\n```"})

	w := postJSON(f.router, "/stateless", `{"content":"go"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"title":"a"}]`, w.Body.String())
	assert.Equal(t, "STOP", w.Header().Get("X-Finish-Reason"))
	assert.Equal(t, 1, f.prompts.increments)
	require.Len(t, f.usage.records, 1)
	assert.Equal(t, 3, f.usage.records[0].TotalTokens)
	assert.Empty(t, f.history.turns)
}

func TestGenerateStatelessRequiresContent(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "d"}, &fakeTransport{text: "x"})

	w := postJSON(f.router, "/stateless", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, f.transport.calls)
}

func TestGenerateStatefulStoresModelTurnOnSuccess(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "Chat"}, &fakeTransport{text: "hello back"})
	f.history.turns = []generation.Turn{{Role: "user", Text: "hello"}}

	w := postJSON(f.router, "/stateful", `{"content":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"hello back"`, w.Body.String())
	assert.Equal(t, []generation.Turn{
		{Role: "user", Text: "hello"},
		{Role: "model", Text: "hello back"},
	}, f.history.turns)
}

func TestGenerateStatefulEmptyConversation(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "Chat"}, &fakeTransport{text: "x"})

	w := postJSON(f.router, "/stateful", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"empty_conversation"`)
	assert.Zero(t, f.transport.calls)
}

func TestGenerateStatefulEmptyConversationWithContentAndFile(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "Chat"}, &fakeTransport{text: "x"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("content", "describe"))
	fw, err := mw.CreateFormFile("files[]", "a.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("tiny"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/stateful", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"code":"empty_conversation"`)
	assert.Zero(t, f.transport.calls)
	assert.Empty(t, f.history.turns)
}

func TestGenerateStatefulRejectsOversizedFile(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "Chat"}, &fakeTransport{text: "x"})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("content", "look"))
	fw, err := mw.CreateFormFile("files[]", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("more than eight bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/stateful", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "notes.txt")
	assert.Zero(t, f.transport.calls)
}

func TestGenerateUpstreamFailuresMapToGatewayStatuses(t *testing.T) {
	tests := []struct {
		name    string
		failure *generation.Failure
		status  int
	}{
		{"timeout", &generation.Failure{Kind: generation.KindUpstreamUnavailable, Message: "deadline exceeded", Timeout: true}, http.StatusGatewayTimeout},
		{"unreachable", &generation.Failure{Kind: generation.KindUpstreamUnavailable, Message: "connection refused"}, http.StatusBadGateway},
		{"provider error", &generation.Failure{Kind: generation.KindUpstreamError, Message: "quota", StatusCode: 429}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &fakeTransport{err: generation.NewFailure(context.Background(), tt.failure, "")}
			f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Description: "d"}, transport)

			w := postJSON(f.router, "/stateless", `{"content":"go"}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+string(tt.failure.Kind)+`"`)
			assert.Zero(t, f.prompts.increments)
			assert.Empty(t, f.usage.records)
		})
	}
}

func TestGenerateDebugEchoesRequest(t *testing.T) {
	f := newFixture(&prompt.Prompt{ID: 1, PublicID: "p", Name: "n", Description: "Be brief"}, &fakeTransport{text: "x"})

	w := postJSON(f.router, "/stateless", `{"content":"go","debug":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"debug":true`)
	assert.Contains(t, w.Body.String(), "Be brief")
	assert.Zero(t, f.transport.calls)
	assert.Zero(t, f.prompts.increments)
}
