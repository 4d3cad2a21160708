package ports

import (
	"context"

	"impactproof/domain/record"
)

// DatasetReader materializes an ordered batch of raw rows from some source.
// Readers live entirely outside the core: the engine only ever sees the
// already-loaded batch.
type DatasetReader interface {
	// Read returns every row of the source in source order.
	Read(ctx context.Context) ([]record.RawRow, error)

	// Source names the dataset origin for logs and reports.
	Source() string
}
