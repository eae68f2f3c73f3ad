package ports

import (
	"context"

	"sentiment-service/internal/core/domain"
)

// DatasetReader loads a labeled table. Rows with an empty label are skipped;
// an empty text cell is read as "".
type DatasetReader interface {
	Read(ctx context.Context, path, textColumn, labelColumn string) (*domain.Dataset, error)
}

// PredictionWriter writes a dataset with extra prediction columns appended.
type PredictionWriter interface {
	Write(ctx context.Context, path string, dataset *domain.Dataset, columns []domain.PredictionColumn) error
}
