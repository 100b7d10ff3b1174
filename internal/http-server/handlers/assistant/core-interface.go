package assistant

import (
	"Concierge/entity"
	"context"
)

type Core interface {
	AssistantInfo() (*entity.AssistantInfo, error)
	UpdateTools(ctx context.Context, tools []string, vectorStoreId string) error
	DeleteAssistant(ctx context.Context) (bool, error)
}
