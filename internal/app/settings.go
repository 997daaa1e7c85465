package app

import (
	"sync/atomic"
	"time"
)

// Settings are the pipeline parameters that may change at runtime via
// the config watcher. The pipeline reads a snapshot at the top of every
// cycle, so a swap takes effect on the next cycle at the latest.
type Settings struct {
	// FlushThreshold is the buffer size that triggers a flush decision.
	FlushThreshold int

	// PollInterval is the sleep between cycles.
	PollInterval time.Duration

	// ErrorCooldown is the longer sleep after a failed cycle.
	ErrorCooldown time.Duration
}

// SettingsHolder is an atomically swappable Settings snapshot, written
// by the config watcher and read by the pipeline.
type SettingsHolder struct {
	v atomic.Pointer[Settings]
}

// NewSettingsHolder creates a holder with the given initial settings.
func NewSettingsHolder(s Settings) *SettingsHolder {
	h := &SettingsHolder{}
	h.v.Store(&s)
	return h
}

// Load returns the current settings snapshot.
func (h *SettingsHolder) Load() Settings {
	return *h.v.Load()
}

// Store replaces the settings snapshot.
func (h *SettingsHolder) Store(s Settings) {
	h.v.Store(&s)
}
