package chatres

import (
	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
)

type ChatResponse struct {
	ID        uint   `json:"id"`
	Object    string `json:"object"`
	Role      string `json:"role"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"created_at"`
}

type FileResponse struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"created_at"`
}

// ChatCreatedResponse is returned by POST /v1/chats with the prompt's files
// after the sync.
type ChatCreatedResponse struct {
	Chat  ChatResponse   `json:"chat"`
	Files []FileResponse `json:"files"`
}

type ChatsDeletedResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func NewChatResponse(c *chat.Chat) ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		Object:    "chat",
		Role:      string(c.Role),
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Unix(),
	}
}

func NewChatListResponse(chats []*chat.Chat) []ChatResponse {
	out := make([]ChatResponse, 0, len(chats))
	for _, c := range chats {
		out = append(out, NewChatResponse(c))
	}
	return out
}

func NewFileResponse(f *file.File) FileResponse {
	return FileResponse{
		ID:        f.PublicID,
		Object:    "file",
		Name:      f.Name,
		MimeType:  f.MimeType,
		Size:      f.Size,
		CreatedAt: f.CreatedAt.Unix(),
	}
}

func NewFileListResponse(files []*file.File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, NewFileResponse(f))
	}
	return out
}
