package contract

import (
	"context"

	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	Create(ctx context.Context, session *model.ChatSession) error
	Update(ctx context.Context, session *model.ChatSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.ChatSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
