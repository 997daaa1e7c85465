package app

import "sync/atomic"

// Stats holds the pipeline's operational counters. All fields are
// atomics so the heartbeat can snapshot them from outside the pipeline
// goroutine without locking.
type Stats struct {
	Cycles            atomic.Int64
	ReadingsPolled    atomic.Int64
	BatchesSent       atomic.Int64
	ReadingsSent      atomic.Int64
	ReadingsPersisted atomic.Int64
	BacklogDrains     atomic.Int64
	CycleErrors       atomic.Int64
}

// StatsSnapshot is a point-in-time copy of the counters.
type StatsSnapshot struct {
	Cycles            int64
	ReadingsPolled    int64
	BatchesSent       int64
	ReadingsSent      int64
	ReadingsPersisted int64
	BacklogDrains     int64
	CycleErrors       int64
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Cycles:            s.Cycles.Load(),
		ReadingsPolled:    s.ReadingsPolled.Load(),
		BatchesSent:       s.BatchesSent.Load(),
		ReadingsSent:      s.ReadingsSent.Load(),
		ReadingsPersisted: s.ReadingsPersisted.Load(),
		BacklogDrains:     s.BacklogDrains.Load(),
		CycleErrors:       s.CycleErrors.Load(),
	}
}
