package domain

import "errors"

// Domain errors represent error conditions in the trackship domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrStorage wraps durable store failures (init, append, fetch,
	// clear). Always recoverable: callers log and skip the operation
	// for the current cycle.
	ErrStorage = errors.New("trackship: storage failure")

	// ErrTransport wraps per-reading delivery failures. A batch send
	// joins one ErrTransport-wrapped error per failed reading.
	ErrTransport = errors.New("trackship: transport failure")

	// ErrNoFix is returned by a fix source when no reading is
	// currently available. Not a failure: the cycle simply has no data.
	ErrNoFix = errors.New("trackship: no fix available")

	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("trackship: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("trackship: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("trackship: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("trackship: invalid configuration")
)
