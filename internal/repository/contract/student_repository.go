package contract

import (
	"context"

	"edu-insight-be/internal/model"
	"edu-insight-be/internal/repository/specification"
)

// StudentRepository is read-only: student records are loaded by an external
// ingestion job and this service never mutates them.
type StudentRepository interface {
	FindOne(ctx context.Context, specs ...specification.Specification) (*model.Student, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*model.Student, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
