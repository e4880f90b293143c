package generationhandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/application/generator"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
	middleware "promptforge/internal/interfaces/httpserver/middlewares"
	"promptforge/internal/interfaces/httpserver/requests"
	genreq "promptforge/internal/interfaces/httpserver/requests/generation"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/utils/platformerrors"
)

// GenerationHandler runs synchronous generations against an owned prompt.
type GenerationHandler struct {
	generator   *generator.Service
	fileService *file.FileService
}

func NewGenerationHandler(generatorService *generator.Service, fileService *file.FileService) *GenerationHandler {
	return &GenerationHandler{generator: generatorService, fileService: fileService}
}

// GenerateStateless godoc
// @Summary Generate without history
// @Description Sends content with the prompt's system instruction only. The reply is the parsed JSON when the prompt has a schema, the raw text otherwise. Files are accepted but not sent. debug=true returns the request that would be sent instead.
// @Tags Generation API
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Param content formData string true "Request text, at most 1000 characters"
// @Param debug formData bool false "Echo the provider request instead of sending it"
// @Success 200 {object} interface{}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Failure 504 {object} responses.ErrorResponse
// @Router /v1/generate-with-ai/{prompt_id} [post]
func (h *GenerationHandler) GenerateStateless(c *gin.Context) {
	h.generate(c, generation.ModeStateless)
}

// GenerateStateful godoc
// @Summary Generate with the prompt's history
// @Description Replays the stored chats and attaches files inline to the last stored turn. Store the user turn through POST /v1/chats first; content is validated but not sent. On success only the model turn is stored. An empty history fails with empty_conversation.
// @Tags Generation API
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Param content formData string false "Request text, at most 10000 characters; echoed in debug output only"
// @Param files[] formData file false "Files to inline, each at most 10240 KB"
// @Param debug formData bool false "Echo the provider request instead of sending it"
// @Success 200 {object} interface{}
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Failure 502 {object} responses.ErrorResponse
// @Failure 504 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id}/generate [post]
func (h *GenerationHandler) GenerateStateful(c *gin.Context) {
	h.generate(c, generation.ModeStateful)
}

func (h *GenerationHandler) generate(c *gin.Context, mode generation.Mode) {
	ctx := c.Request.Context()
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	p, ok := prompthandler.GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}

	var req genreq.GenerateRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "9e3a7c1f-4b6d-4f28-8a05-d2c4e6b8f917")
		return
	}
	uploads, err := requests.UploadsFromForm(c, "files[]", "files")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid multipart form", "1a5c9e3b-7d2f-4b64-a8e0-f3b5d7c9a126")
		return
	}
	if mode == generation.ModeStateful {
		for _, upload := range uploads {
			if err := h.fileService.ValidateSize(ctx, upload); err != nil {
				responses.HandleError(c, err, "invalid file")
				return
			}
		}
	}

	result, err := h.generator.Generate(ctx, generator.Request{
		Prompt:      p,
		UserID:      usr.ID,
		Mode:        mode,
		Content:     req.Content,
		Attachments: file.UploadAttachments(uploads),
		Debug:       req.Debug,
		RequestID:   middleware.RequestIDFromContext(c),
	})
	if err != nil {
		responses.HandleError(c, err, "generation failed")
		return
	}

	if result.Debug != nil {
		c.JSON(http.StatusOK, result.Debug)
		return
	}
	if result.FinishReason != "" {
		c.Header("X-Finish-Reason", result.FinishReason)
	}
	c.JSON(http.StatusOK, result.Output)
}
