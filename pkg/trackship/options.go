package trackship

import (
	"github.com/nzmdn/trackship/internal/app"
	"github.com/nzmdn/trackship/internal/ports"
)

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// Logger is the interface for structured logging.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// Option configures optional behavior of Trackship.
type Option func(*options)

// options holds the optional dependencies of a Trackship instance.
// Nil fields are built from the Config by New.
type options struct {
	httpClient   ports.HTTPClient
	logger       ports.Logger
	store        ports.ReadingStore
	probe        ports.Probe
	transmitter  ports.Transmitter
	source       ports.FixSource
	battery      ports.BatterySource
	clock        app.Clock
	eventHandler EventHandler
}

// WithHTTPClient sets a custom HTTP client used for the feed, the
// collector, and the connectivity probe. If not provided, clients with
// the configured timeouts are used.
func WithHTTPClient(client HTTPClient) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore replaces the SQLite fallback store.
func WithStore(store ports.ReadingStore) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithProbe replaces the connectivity probe.
func WithProbe(probe ports.Probe) Option {
	return func(o *options) {
		o.probe = probe
	}
}

// WithTransmitter replaces the collector transmitter.
func WithTransmitter(tx ports.Transmitter) Option {
	return func(o *options) {
		o.transmitter = tx
	}
}

// WithFixSource replaces the sensor feed source.
func WithFixSource(source ports.FixSource) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithBatterySource replaces the battery enrichment source. Without
// this option a source is built only when Config.StatusURL is set.
func WithBatterySource(battery ports.BatterySource) Option {
	return func(o *options) {
		o.battery = battery
	}
}

// WithClock replaces the wall clock used for timestamps and cycle
// pacing. Intended for tests.
func WithClock(clock app.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithEventHandler sets a handler for lifecycle events.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
