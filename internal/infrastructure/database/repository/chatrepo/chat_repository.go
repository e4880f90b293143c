package chatrepo

import (
	"context"

	"promptforge/internal/domain/chat"
	"promptforge/internal/infrastructure/database/dbschema"
	"promptforge/internal/infrastructure/database/transaction"
	"promptforge/internal/utils/platformerrors"
)

type ChatGormRepository struct {
	db *transaction.Database
}

var _ chat.ChatRepository = (*ChatGormRepository)(nil)

func NewChatGormRepository(db *transaction.Database) chat.ChatRepository {
	return &ChatGormRepository{db: db}
}

func (r *ChatGormRepository) Create(ctx context.Context, c *chat.Chat) error {
	model := dbschema.NewSchemaChat(c)
	if err := r.db.GetTx(ctx).Create(model).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to create chat", err, "7d9f1b3e-5c4a-4d26-9e8b-a0c2e4f6b8d7")
	}
	c.ID = model.ID
	c.CreatedAt = model.CreatedAt
	return nil
}

// ListByPromptID returns turns oldest first; id breaks ties between turns
// written in the same transaction.
func (r *ChatGormRepository) ListByPromptID(ctx context.Context, promptID uint) ([]*chat.Chat, error) {
	var models []dbschema.Chat
	if err := r.db.GetTx(ctx).
		Where("prompt_id = ?", promptID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to list chats", err, "1e3a5c7f-9b8d-4f40-a2c4-e6f8b0d2a4c8")
	}
	chats := make([]*chat.Chat, 0, len(models))
	for i := range models {
		chats = append(chats, models[i].EtoD())
	}
	return chats, nil
}

func (r *ChatGormRepository) DeleteByPromptID(ctx context.Context, promptID uint) (int64, error) {
	result := r.db.GetTx(ctx).Where("prompt_id = ?", promptID).Delete(&dbschema.Chat{})
	if result.Error != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "failed to delete chats", result.Error, "5b7d9f1a-3c2e-4e84-b6a8-c0e2d4f6a8b9")
	}
	return result.RowsAffected, nil
}
