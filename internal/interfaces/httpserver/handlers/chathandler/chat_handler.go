package chathandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	"promptforge/internal/interfaces/httpserver/handlers/prompthandler"
	"promptforge/internal/interfaces/httpserver/requests"
	chatreq "promptforge/internal/interfaces/httpserver/requests/chat"
	"promptforge/internal/interfaces/httpserver/responses"
	"promptforge/internal/interfaces/httpserver/responses/chatres"
	"promptforge/internal/utils/platformerrors"
)

// ChatHandler manages a prompt's stored turns and attachments.
type ChatHandler struct {
	promptService *prompt.PromptService
	chatService   *chat.ChatService
	fileService   *file.FileService
}

func NewChatHandler(promptService *prompt.PromptService, chatService *chat.ChatService, fileService *file.FileService) *ChatHandler {
	return &ChatHandler{
		promptService: promptService,
		chatService:   chatService,
		fileService:   fileService,
	}
}

// ListChats godoc
// @Summary List a prompt's chats
// @Description Returns the stored turns oldest first.
// @Tags Chats API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {array} chatres.ChatResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id}/chats [get]
func (h *ChatHandler) ListChats(c *gin.Context) {
	p, ok := prompthandler.GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}
	chats, err := h.chatService.List(c.Request.Context(), p.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list chats")
		return
	}
	c.JSON(http.StatusOK, chatres.NewChatListResponse(chats))
}

// ListFiles godoc
// @Summary List a prompt's files
// @Tags Chats API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {array} chatres.FileResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/prompts/{prompt_id}/files [get]
func (h *ChatHandler) ListFiles(c *gin.Context) {
	p, ok := prompthandler.GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}
	files, err := h.fileService.List(c.Request.Context(), p.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to list files")
		return
	}
	c.JSON(http.StatusOK, chatres.NewFileListResponse(files))
}

// CreateChat godoc
// @Summary Append a chat turn
// @Description Appends a turn to the prompt's history, then syncs its files: files not listed in existing_files[] are deleted and new_files[] are stored.
// @Tags Chats API
// @Accept json,mpfd
// @Produce json
// @Security BearerAuth
// @Param prompt_id formData string true "Prompt ID"
// @Param role formData string true "user or model"
// @Param text formData string true "Turn text"
// @Param existing_files[] formData []string false "File ids to keep"
// @Param new_files[] formData file false "Files to attach (txt, pdf, doc, docx, jpg, jpeg, png)"
// @Success 201 {object} chatres.ChatCreatedResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/chats [post]
func (h *ChatHandler) CreateChat(c *gin.Context) {
	usr, ok := authhandler.GetUserFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeUnauthorized, "authentication required", "")
		return
	}
	ctx := c.Request.Context()

	var req chatreq.CreateChatRequest
	if err := c.ShouldBind(&req); err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, err.Error(), "2c6e0a4f-8d1b-4b75-93f2-e7a9c1d5b806")
		return
	}
	uploads, err := requests.UploadsFromForm(c, "new_files[]", "new_files")
	if err != nil {
		responses.HandleNewError(c, platformerrors.ErrorTypeValidation, "invalid multipart form", "b5f9d1a3-6c2e-4e08-a7b4-1d3f5b7c9e62")
		return
	}
	for _, upload := range uploads {
		if err := h.fileService.ValidateUpload(ctx, upload); err != nil {
			responses.HandleError(c, err, "invalid file")
			return
		}
	}

	p, err := h.promptService.GetPromptByPublicIDAndUserID(ctx, req.PromptID, usr.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to load prompt")
		return
	}

	created, err := h.chatService.Append(ctx, p.ID, chat.Role(req.Role), req.Text)
	if err != nil {
		responses.HandleError(c, err, "failed to create chat")
		return
	}
	files, err := h.fileService.Sync(ctx, p.ID, req.ExistingFiles, uploads)
	if err != nil {
		responses.HandleError(c, err, "failed to sync files")
		return
	}

	c.JSON(http.StatusCreated, chatres.ChatCreatedResponse{
		Chat:  chatres.NewChatResponse(created),
		Files: chatres.NewFileListResponse(files),
	})
}

// ClearChats godoc
// @Summary Delete a prompt's chats
// @Tags Chats API
// @Produce json
// @Security BearerAuth
// @Param prompt_id path string true "Prompt ID"
// @Success 200 {object} chatres.ChatsDeletedResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /v1/chats/{prompt_id} [delete]
func (h *ChatHandler) ClearChats(c *gin.Context) {
	p, ok := prompthandler.GetPromptFromContext(c)
	if !ok {
		responses.HandleNewError(c, platformerrors.ErrorTypeNotFound, prompt.ErrPromptNotFound, "")
		return
	}
	n, err := h.chatService.Clear(c.Request.Context(), p.ID)
	if err != nil {
		responses.HandleError(c, err, "failed to delete chats")
		return
	}
	c.JSON(http.StatusOK, chatres.ChatsDeletedResponse{Message: "Chats deleted successfully", Deleted: n})
}
