package ports

import (
	"context"

	"github.com/nzmdn/trackship/internal/domain"
)

// ReadingStore is the durable fallback for readings that could not be
// delivered at collection time. It is append-only except for full
// clears after confirmed delivery; there are deliberately no partial
// deletes.
//
// All failures wrap domain.ErrStorage and are recoverable: the caller
// logs and skips the operation for the current cycle.
type ReadingStore interface {
	// Init creates the underlying persistent structure if absent.
	// Idempotent; safe to call on every process start.
	Init(ctx context.Context) error

	// Append persists the readings in order, assigning storage
	// identifiers internally.
	Append(ctx context.Context, readings []domain.Reading) error

	// FetchAll returns every persisted reading, oldest first by
	// insertion order. Returns an empty slice when the store is empty.
	FetchAll(ctx context.Context) ([]domain.Reading, error)

	// ClearAll deletes every persisted reading unconditionally.
	// On failure the backlog is not considered cleared and must be
	// retried on a later cycle.
	ClearAll(ctx context.Context) error
}
