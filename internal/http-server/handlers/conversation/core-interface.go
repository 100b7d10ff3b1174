package conversation

import (
	"Concierge/entity"
	"context"
)

type Core interface {
	ComposeResponse(ctx context.Context, userId, message string, attachments []string) (*entity.Reply, error)
	History(ctx context.Context, userId string) ([]entity.HistoryMessage, error)
	ResetConversation(ctx context.Context, userId string) error
}
