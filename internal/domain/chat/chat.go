package chat

import (
	"context"
	"time"
)

// Role is the author of a stored turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Chat is one turn in a prompt's conversation history.
type Chat struct {
	ID        uint      `json:"id"`
	PromptID  uint      `json:"-"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRepository stores turns. ListByPromptID returns them ascending by
// (created_at, id).
type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error
	ListByPromptID(ctx context.Context, promptID uint) ([]*Chat, error)
	DeleteByPromptID(ctx context.Context, promptID uint) (int64, error)
}
