package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	DBPath            string `toml:"db_path"`
	DeviceID          string `toml:"device_id"`
	ServerURL         string `toml:"server_url"`
	FeedURL           string `toml:"feed_url"`
	StatusURL         string `toml:"status_url"`
	ProbeURL          string `toml:"probe_url"`
	FlushThreshold    int    `toml:"flush_threshold"`
	PollInterval      string `toml:"poll_interval"`
	ErrorCooldown     string `toml:"error_cooldown"`
	ProbeTimeout      string `toml:"probe_timeout"`
	HTTPTimeout       string `toml:"http_timeout"`
	HeartbeatInterval string `toml:"heartbeat_interval"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.trackship/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".trackship", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("db-path", fc.DBPath, &cfg.DBPath)
	s.setString("device-id", fc.DeviceID, &cfg.DeviceID)
	s.setString("server-url", fc.ServerURL, &cfg.ServerURL)
	s.setString("feed-url", fc.FeedURL, &cfg.FeedURL)
	s.setString("status-url", fc.StatusURL, &cfg.StatusURL)
	s.setString("probe-url", fc.ProbeURL, &cfg.ProbeURL)

	s.setInt("flush-threshold", fc.FlushThreshold, &cfg.FlushThreshold)

	if err := s.setDuration("poll", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("cooldown", fc.ErrorCooldown, &cfg.ErrorCooldown); err != nil {
		return err
	}
	if err := s.setDuration("probe-timeout", fc.ProbeTimeout, &cfg.ProbeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("heartbeat", fc.HeartbeatInterval, &cfg.HeartbeatInterval); err != nil {
		return err
	}

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
