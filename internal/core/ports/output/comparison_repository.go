package ports

import (
	"context"

	"github.com/google/uuid"

	"sentiment-service/internal/core/domain"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ComparisonListFilter struct {
	Limit  int
	Offset int
}

// Normalized returns the page actually queried: a non-positive limit becomes
// DefaultListLimit, limits are capped at MaxListLimit and offsets start at zero.
func (f ComparisonListFilter) Normalized() ComparisonListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

type ComparisonRepository interface {
	Create(ctx context.Context, run *domain.ComparisonRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ComparisonRun, error)
	List(ctx context.Context, filter ComparisonListFilter) ([]*domain.ComparisonRun, int, error)
}
