package chat

// CreateChatRequest is the body of POST /v1/chats, sent as JSON or as a
// multipart form together with new_files[].
type CreateChatRequest struct {
	PromptID      string   `json:"prompt_id" form:"prompt_id" binding:"required"`
	Role          string   `json:"role" form:"role" binding:"required,oneof=user model"`
	Text          string   `json:"text" form:"text" binding:"required"`
	ExistingFiles []string `json:"existing_files" form:"existing_files[]"`
}
