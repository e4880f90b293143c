package chat

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"promptforge/internal/domain/generation"
	"promptforge/internal/utils/platformerrors"
)

// MaxTextLength bounds a user authored turn. Model turns are stored as returned.
const MaxTextLength = 10000

// ChatService appends to and reads a prompt's history.
type ChatService struct {
	repo ChatRepository
}

func NewChatService(repo ChatRepository) *ChatService {
	return &ChatService{repo: repo}
}

// Append validates and stores one turn.
func (s *ChatService) Append(ctx context.Context, promptID uint, role Role, text string) (*Chat, error) {
	if err := validateTurn(role, text); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), err, "8a4c2e6f-3b1d-4f97-a5e0-c9d7b3f1e264")
	}
	c := &Chat{PromptID: promptID, Role: role, Text: text}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to store chat")
	}
	return c, nil
}

func (s *ChatService) List(ctx context.Context, promptID uint) ([]*Chat, error) {
	chats, err := s.repo.ListByPromptID(ctx, promptID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list chats")
	}
	return chats, nil
}

// Turns loads the history in the shape the assembler consumes.
func (s *ChatService) Turns(ctx context.Context, promptID uint) ([]generation.Turn, error) {
	chats, err := s.List(ctx, promptID)
	if err != nil {
		return nil, err
	}
	return ToTurns(chats), nil
}

// Clear removes every turn of the prompt and reports how many were deleted.
func (s *ChatService) Clear(ctx context.Context, promptID uint) (int64, error) {
	n, err := s.repo.DeleteByPromptID(ctx, promptID)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete chats")
	}
	return n, nil
}

func ToTurns(chats []*Chat) []generation.Turn {
	turns := make([]generation.Turn, 0, len(chats))
	for _, c := range chats {
		turns = append(turns, generation.Turn{Role: string(c.Role), Text: c.Text})
	}
	return turns
}

func validateTurn(role Role, text string) error {
	if !role.Valid() {
		return fmt.Errorf("role must be one of user, model")
	}
	if role == RoleModel {
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is required")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return fmt.Errorf("text exceeds maximum length of %d characters", MaxTextLength)
	}
	return nil
}
