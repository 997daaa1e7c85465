package app

import (
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nzmdn/trackship/internal/ports"
)

// Heartbeat periodically logs a snapshot of the pipeline counters. It
// is purely observational: it runs on the scheduler's goroutine but
// touches only the atomic counters, so the single-writer model for the
// buffer and the store is preserved.
type Heartbeat struct {
	scheduler *gocron.Scheduler
	stats     *Stats
	logger    ports.Logger
	interval  time.Duration
}

// NewHeartbeat creates a heartbeat logging every interval. An interval
// of zero or below disables it.
func NewHeartbeat(stats *Stats, logger ports.Logger, interval time.Duration) *Heartbeat {
	return &Heartbeat{
		scheduler: gocron.NewScheduler(time.UTC),
		stats:     stats,
		logger:    logger,
		interval:  interval,
	}
}

// Start schedules the heartbeat job and starts the scheduler.
func (h *Heartbeat) Start() error {
	if h.interval <= 0 {
		return nil
	}

	_, err := h.scheduler.Every(h.interval).Do(func() {
		snap := h.stats.Snapshot()
		h.logger.Info("heartbeat",
			ports.Int64("cycles", snap.Cycles),
			ports.Int64("polled", snap.ReadingsPolled),
			ports.Int64("batches_sent", snap.BatchesSent),
			ports.Int64("readings_sent", snap.ReadingsSent),
			ports.Int64("persisted", snap.ReadingsPersisted),
			ports.Int64("backlog_drains", snap.BacklogDrains),
			ports.Int64("cycle_errors", snap.CycleErrors),
		)
	})
	if err != nil {
		return err
	}

	h.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future runs.
func (h *Heartbeat) Stop() {
	if h.scheduler != nil {
		h.scheduler.Stop()
	}
}
