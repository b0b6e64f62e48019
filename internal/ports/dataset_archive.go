package ports

import (
	"context"
	"io"
)

// DatasetArchive keeps the source files imported into an experiment.
type DatasetArchive interface {
	Store(ctx context.Context, experimentID, sourcePath string) (storedPath string, err error)
	List(ctx context.Context, experimentID string) ([]string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, experimentID string) error
}
