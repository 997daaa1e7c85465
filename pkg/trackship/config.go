package trackship

import (
	"fmt"
	"strings"
	"time"

	"github.com/nzmdn/trackship/internal/domain"
)

// Default endpoints used when the corresponding Config field is empty.
const (
	DefaultServerURL = "https://osmand.nzmdn.me"
	DefaultProbeURL  = "http://www.google.com"
)

// Config holds the configuration for an embedded tracking agent.
// FeedURL is the only required field; call SetDefaults to fill the
// rest, or leave them zero and let New do it.
type Config struct {
	// DBPath is the SQLite file used as the durable fallback store.
	DBPath string

	// DeviceID identifies this agent to the collector.
	DeviceID string

	// ServerURL is the collector base endpoint.
	ServerURL string

	// FeedURL is the local sensor feed endpoint that serves fixes.
	FeedURL string

	// StatusURL is the optional device status endpoint used to enrich
	// readings with a battery level. Empty disables enrichment.
	StatusURL string

	// ProbeURL is the endpoint used for the advisory connectivity check.
	ProbeURL string

	// FlushThreshold is the buffered reading count that triggers a
	// flush decision.
	FlushThreshold int

	// PollInterval is the sleep between collection cycles.
	PollInterval time.Duration

	// ErrorCooldown is the longer sleep after a failed cycle.
	ErrorCooldown time.Duration

	// ProbeTimeout bounds the connectivity check.
	ProbeTimeout time.Duration

	// HTTPTimeout bounds feed reads and collector deliveries.
	HTTPTimeout time.Duration

	// HeartbeatInterval is how often pipeline counters are logged.
	// Zero or negative disables the heartbeat.
	HeartbeatInterval time.Duration
}

// SetDefaults fills zero-valued fields with defaults. FeedURL has no
// default and stays empty.
func (c *Config) SetDefaults() {
	if c.DBPath == "" {
		c.DBPath = "gps_data.db"
	}
	if c.DeviceID == "" {
		c.DeviceID = "default"
	}
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.ProbeURL == "" {
		c.ProbeURL = DefaultProbeURL
	}
	if c.FlushThreshold == 0 {
		c.FlushThreshold = 10
	}
	if c.PollInterval == 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.ErrorCooldown == 0 {
		c.ErrorCooldown = 10 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 5 * time.Second
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 15 * time.Second
	}
}

// Validate checks the configuration. Returned errors wrap
// domain.ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("%w: FeedURL is required", domain.ErrInvalidConfig)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: DBPath is required", domain.ErrInvalidConfig)
	}
	if c.FlushThreshold <= 0 {
		return fmt.Errorf("%w: FlushThreshold must be positive", domain.ErrInvalidConfig)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: PollInterval must be positive", domain.ErrInvalidConfig)
	}
	if c.ErrorCooldown <= 0 {
		return fmt.Errorf("%w: ErrorCooldown must be positive", domain.ErrInvalidConfig)
	}
	c.ServerURL = strings.TrimSuffix(c.ServerURL, "/")
	return nil
}
