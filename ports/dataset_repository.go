package ports

import (
	"context"

	"anastat/domain/core"
	"anastat/domain/dataset"
)

// DatasetRepository persists named datasets with metadata. The analysis core
// never touches this directly; only the service layer and HTTP surface do.
type DatasetRepository interface {
	Create(ctx context.Context, ds *dataset.Dataset) error
	GetByID(ctx context.Context, id core.DatasetID) (*dataset.Dataset, error)
	Update(ctx context.Context, ds *dataset.Dataset) error
	Delete(ctx context.Context, id core.DatasetID) error
	List(ctx context.Context, filter dataset.SearchFilter) ([]*dataset.Dataset, error)
	SetPinned(ctx context.Context, id core.DatasetID, pinned bool) error
}
