package prompthandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain/prompt"
	"promptforge/internal/domain/query"
	"promptforge/internal/domain/user"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/utils/platformerrors"
)

type fakePromptRepo struct {
	nextID  uint
	prompts map[uint]*prompt.Prompt
}

func newFakePromptRepo() *fakePromptRepo {
	return &fakePromptRepo{prompts: map[uint]*prompt.Prompt{}}
}

func notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "record not found", nil, "")
}

func (r *fakePromptRepo) Create(_ context.Context, p *prompt.Prompt) error {
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.prompts[p.ID] = &clone
	return nil
}

func (r *fakePromptRepo) GetByID(ctx context.Context, id uint) (*prompt.Prompt, error) {
	if p, ok := r.prompts[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, notFound(ctx)
}

func (r *fakePromptRepo) GetByPublicID(ctx context.Context, publicID string) (*prompt.Prompt, error) {
	for _, p := range r.prompts {
		if p.PublicID == publicID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, notFound(ctx)
}

func (r *fakePromptRepo) GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*prompt.Prompt, error) {
	p, err := r.GetByPublicID(ctx, publicID)
	if err != nil || p.UserID != userID {
		return nil, notFound(ctx)
	}
	return p, nil
}

func (r *fakePromptRepo) ListByUserID(_ context.Context, userID uint, _ *query.Pagination) ([]*prompt.Prompt, int64, error) {
	var out []*prompt.Prompt
	for id := uint(1); id <= r.nextID; id++ {
		if p, ok := r.prompts[id]; ok && p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePromptRepo) Update(_ context.Context, p *prompt.Prompt) error {
	clone := *p
	r.prompts[p.ID] = &clone
	return nil
}

func (r *fakePromptRepo) Delete(_ context.Context, id uint) error {
	delete(r.prompts, id)
	return nil
}

func (r *fakePromptRepo) IncrementUsage(_ context.Context, id uint) error {
	r.prompts[id].CountUsage++
	return nil
}

func newRouter(h *PromptHandler, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		authhandler.SetUserInContext(c, &user.User{ID: userID, Issuer: "test", Subject: "sub"})
		c.Next()
	})
	r.GET("/v1/prompts", h.ListPrompts)
	r.POST("/v1/prompts", h.CreatePrompt)
	r.PATCH("/v1/prompts/:prompt_id", h.UpdatePrompt)
	r.DELETE("/v1/prompts/:prompt_id", h.DeletePrompt)
	owned := r.Group("/v1/prompts/:prompt_id", h.PromptMiddleware())
	owned.GET("", h.GetPrompt)
	owned.GET("/schema", h.GetPromptSchema)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndGetPromptKeepsSchemaOrder(t *testing.T) {
	h := NewPromptHandler(prompt.NewPromptService(newFakePromptRepo()))
	r := newRouter(h, 1)

	w := do(r, http.MethodPost, "/v1/prompts", `{"name":"Reviews","description":"Score reviews","json_schema":{"score":"number", "title":"string"}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "prompt", created["object"])
	assert.Contains(t, w.Body.String(), `"json_schema":{"score":"number","title":"string"}`)

	id := created["id"].(string)
	w = do(r, http.MethodGet, "/v1/prompts/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Reviews"`)

	w = do(r, http.MethodGet, "/v1/prompts/"+id+"/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"required":["score","title"]`)
}

func TestCreatePromptValidation(t *testing.T) {
	h := NewPromptHandler(prompt.NewPromptService(newFakePromptRepo()))
	r := newRouter(h, 1)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"missing description", `{"name":"x"}`, http.StatusBadRequest, "validation"},
		{"schema is an array", `{"name":"x","description":"y","json_schema":["a"]}`, http.StatusBadRequest, "malformed_schema"},
		{"schema has no properties", `{"name":"x","description":"y","json_schema":{}}`, http.StatusBadRequest, "malformed_schema"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/v1/prompts", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
		})
	}
}

func TestForeignPromptIsNotFound(t *testing.T) {
	repo := newFakePromptRepo()
	service := prompt.NewPromptService(repo)
	owned, err := service.CreatePrompt(context.Background(), 1, prompt.CreatePromptInput{Name: "mine", Description: "d"})
	require.NoError(t, err)

	r := newRouter(NewPromptHandler(service), 2)
	for _, path := range []string{"/v1/prompts/" + owned.PublicID, "/v1/prompts/" + uuid.NewString(), "/v1/prompts/not-a-uuid"} {
		w := do(r, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), prompt.ErrPromptNotFound)
	}

	w := do(r, http.MethodDelete, "/v1/prompts/"+owned.PublicID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Len(t, repo.prompts, 1)
}

func TestUpdateClearsSchemaAndDelete(t *testing.T) {
	repo := newFakePromptRepo()
	service := prompt.NewPromptService(repo)
	p, err := service.CreatePrompt(context.Background(), 1, prompt.CreatePromptInput{
		Name: "n", Description: "d", JSONSchema: json.RawMessage(`{"a":"string"}`),
	})
	require.NoError(t, err)
	r := newRouter(NewPromptHandler(service), 1)

	w := do(r, http.MethodPatch, "/v1/prompts/"+p.PublicID, `{"json_schema":null,"name":"renamed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "json_schema")
	assert.Contains(t, w.Body.String(), `"name":"renamed"`)

	w = do(r, http.MethodGet, "/v1/prompts/"+p.PublicID+"/schema", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/v1/prompts/"+p.PublicID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+p.PublicID+`","object":"prompt.deleted","deleted":true}`, w.Body.String())
	assert.Empty(t, repo.prompts)
}

func TestListPrompts(t *testing.T) {
	repo := newFakePromptRepo()
	service := prompt.NewPromptService(repo)
	for _, name := range []string{"a", "b"} {
		_, err := service.CreatePrompt(context.Background(), 1, prompt.CreatePromptInput{Name: name, Description: "d"})
		require.NoError(t, err)
	}
	_, err := service.CreatePrompt(context.Background(), 2, prompt.CreatePromptInput{Name: "other", Description: "d"})
	require.NoError(t, err)

	r := newRouter(NewPromptHandler(service), 1)
	w := do(r, http.MethodGet, "/v1/prompts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		Object  string           `json:"object"`
		Data    []map[string]any `json:"data"`
		HasMore bool             `json:"has_more"`
		Total   int64            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, "list", page.Object)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Total)
	assert.False(t, page.HasMore)

	w = do(r, http.MethodGet, "/v1/prompts?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
