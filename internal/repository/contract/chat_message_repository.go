package contract

import (
	"context"

	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	Create(ctx context.Context, message *model.ChatMessage) error
	DeleteAllBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
