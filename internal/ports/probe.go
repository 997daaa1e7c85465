package ports

import "context"

// Probe checks whether outbound network delivery is currently possible.
// Connectivity is advisory, not authoritative: a true result means
// general internet egress works, not that the collector itself is
// reachable.
type Probe interface {
	// Reachable performs one bounded-timeout check. Any error
	// (timeout, DNS failure, non-2xx) collapses to false; errors are
	// never propagated to the caller.
	Reachable(ctx context.Context) bool
}
