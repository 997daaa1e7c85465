package ports

import "github.com/nzmdn/trackship/pkg/log"

// Logger re-exports the pkg/log abstraction so the application layer
// only depends on ports.
type Logger = log.Logger

// Field is a structured logging key-value pair.
type Field = log.Field

// Field constructors, mirrored from pkg/log.
var (
	String   = log.String
	Int      = log.Int
	Int64    = log.Int64
	Float64  = log.Float64
	Bool     = log.Bool
	Duration = log.Duration
	Err      = log.Err
	Any      = log.Any
)
