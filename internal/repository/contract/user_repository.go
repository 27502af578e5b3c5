package contract

import (
	"context"

	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
