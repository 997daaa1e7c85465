package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (TRACKSHIP_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("db-path", os.Getenv("TRACKSHIP_DB_PATH"), &cfg.DBPath)
	s.setString("device-id", os.Getenv("TRACKSHIP_DEVICE_ID"), &cfg.DeviceID)
	s.setString("server-url", os.Getenv("TRACKSHIP_SERVER_URL"), &cfg.ServerURL)
	s.setString("feed-url", os.Getenv("TRACKSHIP_FEED_URL"), &cfg.FeedURL)
	s.setString("status-url", os.Getenv("TRACKSHIP_STATUS_URL"), &cfg.StatusURL)
	s.setString("probe-url", os.Getenv("TRACKSHIP_PROBE_URL"), &cfg.ProbeURL)

	if err := s.setIntFromString("flush-threshold", os.Getenv("TRACKSHIP_FLUSH_THRESHOLD"), &cfg.FlushThreshold); err != nil {
		return err
	}

	if err := s.setDuration("poll", os.Getenv("TRACKSHIP_POLL_INTERVAL"), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("cooldown", os.Getenv("TRACKSHIP_ERROR_COOLDOWN"), &cfg.ErrorCooldown); err != nil {
		return err
	}
	if err := s.setDuration("probe-timeout", os.Getenv("TRACKSHIP_PROBE_TIMEOUT"), &cfg.ProbeTimeout); err != nil {
		return err
	}
	if err := s.setDuration("timeout", os.Getenv("TRACKSHIP_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("heartbeat", os.Getenv("TRACKSHIP_HEARTBEAT_INTERVAL"), &cfg.HeartbeatInterval); err != nil {
		return err
	}

	return nil
}
