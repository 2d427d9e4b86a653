package ports

import (
	"context"

	"github.com/nthds/segyscope/internal/core/domain"
)

// DatasetRepository stores analyzed datasets for the lifetime of the process.
type DatasetRepository interface {
	Save(ctx context.Context, ds *domain.Dataset) error
	GetByID(ctx context.Context, id string) (*domain.Dataset, error)
	List(ctx context.Context) ([]domain.Dataset, error)
	Delete(ctx context.Context, id string) error
}
