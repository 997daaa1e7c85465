package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultServerURL is the default collector endpoint readings are
// delivered to.
const DefaultServerURL = "https://osmand.nzmdn.me/"

// DefaultProbeURL is the well-known endpoint used for the advisory
// connectivity check.
const DefaultProbeURL = "http://www.google.com"

// Config holds CLI configuration for trackship.
type Config struct {
	DBPath   string
	DeviceID string

	ServerURL string
	FeedURL   string
	StatusURL string
	ProbeURL  string

	FlushThreshold int

	PollInterval      time.Duration
	ErrorCooldown     time.Duration
	ProbeTimeout      time.Duration
	HTTPTimeout       time.Duration
	HeartbeatInterval time.Duration
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		DBPath:            "gps_data.db",
		DeviceID:          "default",
		ServerURL:         DefaultServerURL,
		ProbeURL:          DefaultProbeURL,
		FlushThreshold:    10,
		PollInterval:      5 * time.Second,
		ErrorCooldown:     10 * time.Second,
		ProbeTimeout:      5 * time.Second,
		HTTPTimeout:       15 * time.Second,
		HeartbeatInterval: time.Minute,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed-url is required")
	}
	if c.DeviceID == "" {
		return fmt.Errorf("device-id is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db-path is required")
	}

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	c.ServerURL = strings.TrimSuffix(c.ServerURL, "/")

	if c.ProbeURL == "" {
		c.ProbeURL = DefaultProbeURL
	}

	if c.FlushThreshold <= 0 {
		return fmt.Errorf("flush threshold must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.ErrorCooldown <= 0 {
		return fmt.Errorf("error cooldown must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}
