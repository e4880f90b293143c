package dbschema

import (
	"promptforge/internal/domain/chat"
	"promptforge/internal/infrastructure/database"
)

func init() {
	database.RegisterSchemaForAutoMigrate(Chat{})
}

type Chat struct {
	BaseModel
	PromptID uint   `gorm:"not null;index:idx_chats_prompt_created"`
	Prompt   Prompt `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE"`
	Role     string `gorm:"type:varchar(10);not null;check:chk_chats_role,role IN ('user','model')"`
	Text     string `gorm:"type:text;not null"`
}

func NewSchemaChat(c *chat.Chat) *Chat {
	return &Chat{
		BaseModel: BaseModel{ID: c.ID, CreatedAt: c.CreatedAt},
		PromptID:  c.PromptID,
		Role:      string(c.Role),
		Text:      c.Text,
	}
}

func (c *Chat) EtoD() *chat.Chat {
	return &chat.Chat{
		ID:        c.ID,
		PromptID:  c.PromptID,
		Role:      chat.Role(c.Role),
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}
