package prompthandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/domain/prompt"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/requests"
	promptreq "promptforge/internal/interfaces/httpserver/requests/prompt"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/interfaces/httpserver/responses/promptres"
	"promptforge/internal/utils/platformerrors"
)

const (
	PromptIDParam    = "prompt_id"
	promptContextKey = "prompt"
	defaultPageSize  = 20
)

// PromptHandler serves prompt CRUD and loads owned prompts for nested routes.
type PromptHandler struct {
	promptService *prompt.PromptService
}

func NewPromptHandler(promptService *prompt.PromptService) *PromptHandler {
	return &PromptHandler{promptService: promptService}
}

// PromptMiddleware loads the prompt named by the :prompt_id path parameter.
// Prompts owned by someone else are reported as not found.
func (h *PromptHandler) PromptMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr, ok := authhandler.GetUserFromContext(c)
		if !ok {
			responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "d9c1e5a3-2f7b-4d48-b6e0-a3f5c7e9b142")
			return
		}
		p, err := h.promptService.GetPromptByPublicIDAndUserID(c.Request.Context(), c.Param(PromptIDParam), usr.ID)
		if err != nil {
			responses.HandleError(c, err, "failed to load prompt")
			return
		}
		c.Set(promptContextKey, p)
		c.Next()
	}
}

// GetPromptFromContext returns the prompt loaded by PromptMiddleware.
func GetPromptFromContext(c *gin.Context) (*prompt.Prompt, bool) {
	val, ok := c.Get(promptContextKey)
	if !ok {
		return nil, false
	}
	p, ok := val.(*prompt.Prompt)
	return p, ok && p != nil
}

// ListPrompts godoc
// @Summary List prompts
// @Description Lists the caller's prompts, newest first by default.
// @Tags Prompts API
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(20)
// @Param after query string false "Return prompts after this prompt id"
// @Param order query string false "asc or desc" default(desc)
// @Success 200 {object} responses.ListResponse[promptres.PromptResponse]
// @Failure 400 {object} responses.ErrorResponse
// @Router /v1/prompts [get]
func (h *PromptHandler) ListPrompts(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	ctx := c.Request.Context()

	pagination, err := requests.GetCursorPaginationFromQuery(c, func(publicID string) (*uint, error) {
		p, err := h.promptService.GetPromptByPublicIDAndUserID(ctx, publicID, usr.ID)
		if err != nil {
			return nil, err
		}
		return &p.ID, nil
	})
	if err != nil {
		responses.HandleError(c, err, "invalid pagination")
		return
	}

	prompts, total, err := h.promptService.ListPromptsByUserID(ctx, usr.ID, pagination)
	if err != nil {
		responses.HandleError(c, err, "failed to list prompts")
		return
	}
	limit := pagination.LimitOr(defaultPageSize)
	hasMore := len(prompts) == limit && int64(len(prompts)) < total
	c.JSON(http.StatusOK, promptres.NewPromptListResponse(prompts, total, hasMore))
}

// CreatePrompt godoc
// @Summary Create a prompt
// @Description Creates a prompt. json_schema is a flat object mapping property names to primitive types; key order is kept.
// @Tags Prompts API
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body promptreq.CreatePromptRequest true "Prompt"
// @Success 201 {object} promptres.PromptResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Router /v1/prompts [post]
func (h *PromptHandler) CreatePrompt(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}

	var req promptreq.CreatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "6a2e8c4f-1b7d-4f93-a5e0-c8b2d6f4a371")
		return
	}

	p, err := h.promptService.CreatePrompt(c.Request.Context(), usr.ID, req.ToInput())
	if err != nil {
		responses.HandleError(c, err, "failed to create prompt")
		return
	}
	c.JSON(http.StatusCreated, promptres.NewPromptResponse(p))
}

// GetPrompt godoc
// @Summary Get a prompt
// @Tags Prompts API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {object} promptres.PromptResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id} [get]
func (h *PromptHandler) GetPrompt(c *gin.Context) {
	p, ok := GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}
	c.JSON(http.StatusOK, promptres.NewPromptResponse(p))
}

// UpdatePrompt godoc
// @Summary Update a prompt
// @Description Patches name, description or json_schema. "json_schema": null removes the schema.
// @Tags Prompts API
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Param request body promptreq.UpdatePromptRequest true "Patch"
// @Success 200 {object} promptres.PromptResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id} [patch]
func (h *PromptHandler) UpdatePrompt(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}

	var req promptreq.UpdatePromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "f1d7b3a9-5e2c-4a86-9c04-b6e8a2d4f153")
		return
	}

	p, err := h.promptService.UpdatePrompt(c.Request.Context(), c.Param(PromptIDParam), usr.ID, req.ToInput())
	if err != nil {
		responses.HandleError(c, err, "failed to update prompt")
		return
	}
	c.JSON(http.StatusOK, promptres.NewPromptResponse(p))
}

// DeletePrompt godoc
// @Summary Delete a prompt
// @Description Deletes the prompt together with its chats and files.
// @Tags Prompts API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {object} promptres.PromptDeletedResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id} [delete]
func (h *PromptHandler) DeletePrompt(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}

	p, err := h.promptService.DeletePrompt(c.Request.Context(), c.Param(PromptIDParam), usr.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to delete prompt")
		return
	}
	c.JSON(http.StatusOK, promptres.PromptDeletedResponse{ID: p.PublicID, Object: "prompt.deleted", Deleted: true})
}

// GetPromptSchema godoc
// @Summary Get the JSON Schema of a prompt's output
// @Description Exports the structured output of the prompt as a draft 2020-12 JSON Schema.
// @Tags Prompts API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id}/schema [get]
func (h *PromptHandler) GetPromptSchema(c *gin.Context) {
	p, ok := GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}
	schema, err := h.promptService.JSONSchema(c.Request.Context(), p)
	if err != nil {
		responses.HandleError(c, err, "failed to export schema")
		return
	}
	c.JSON(http.StatusOK, schema)
}
