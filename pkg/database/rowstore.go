package database

import (
	"context"

	"gorm.io/gorm"

	"edu-insight-be/pkg/pipeline"
)

// RowStore adapts a gorm connection to the pipeline's read-only Store
// contract. Queries are executed raw because the pipeline generates them
// dynamically against the reporting schema, not against mapped models.
type RowStore struct {
	db *gorm.DB
}

var _ pipeline.Store = &RowStore{}

func NewRowStore(db *gorm.DB) *RowStore {
	return &RowStore{db: db}
}

// Query runs the statement and returns every result row as a column-keyed
// map. Byte slices from the driver are normalized to strings so the
// pipeline's field helpers can read them uniformly.
func (s *RowStore) Query(ctx context.Context, query string) ([]pipeline.Row, error) {
	rows, err := s.db.WithContext(ctx).Raw(query).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []pipeline.Row
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(pipeline.Row, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
