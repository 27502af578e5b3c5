package contract

import (
	"context"

	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"
)

type AuditRepository interface {
	Create(ctx context.Context, entry *model.AccessAuditLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.AccessAuditLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
