package ports

import (
	"context"

	"github.com/nzmdn/trackship/internal/domain"
)

// Transmitter delivers readings to the remote collector, one delivery
// call per reading.
type Transmitter interface {
	// SendBatch attempts every reading in order and returns nil only
	// if each delivery call completed without a transport error and
	// was acknowledged with a success status. It does not short-circuit:
	// remaining readings are still attempted after a failure, and the
	// per-reading errors are joined into the returned error, each
	// wrapping domain.ErrTransport.
	//
	// A non-nil result can therefore still mean some readings reached
	// the collector; retrying a failed batch may re-deliver them.
	// Duplicates are accepted at the collector side.
	SendBatch(ctx context.Context, readings []domain.Reading) error
}
