package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/nzmdn/trackship/internal/domain"
	"github.com/nzmdn/trackship/internal/geo"
	"github.com/nzmdn/trackship/internal/ports"
)

// Pipeline is the reliability orchestrator. It owns the session state
// (previous position and in-memory buffer) and drives the
// poll/buffer/flush/drain cycle on a fixed period.
//
// Everything runs on one goroutine: polling, buffering, persistence,
// connectivity checks and transmission happen sequentially within a
// cycle, so the buffer and the store have a single writer and need no
// locking. All retry happens at the level of the next cycle.
type Pipeline struct {
	settings *SettingsHolder
	source   ports.FixSource
	battery  ports.BatterySource
	store    ports.ReadingStore
	probe    ports.Probe
	tx       ports.Transmitter
	logger   ports.Logger
	clock    Clock

	session domain.Session
	stats   Stats
}

// NewPipeline wires the orchestrator. battery may be nil, in which case
// readings carry no battery enrichment.
func NewPipeline(
	settings *SettingsHolder,
	source ports.FixSource,
	battery ports.BatterySource,
	store ports.ReadingStore,
	probe ports.Probe,
	tx ports.Transmitter,
	logger ports.Logger,
	clock Clock,
) *Pipeline {
	return &Pipeline{
		settings: settings,
		source:   source,
		battery:  battery,
		store:    store,
		probe:    probe,
		tx:       tx,
		logger:   logger,
		clock:    clock,
	}
}

// Stats exposes the pipeline counters for the heartbeat.
func (p *Pipeline) Stats() *Stats {
	return &p.stats
}

// Run executes the pipeline loop until ctx is done. The loop has no
// terminal state of its own: a failed cycle is logged and followed by
// the error cooldown instead of the poll interval, never by an exit.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.store.Init(ctx); err != nil {
		// The store may become writable later; cycles degrade to
		// send-or-drop until then.
		p.logger.Error("store init failed", ports.Err(err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		set := p.settings.Load()
		delay := set.PollInterval

		if err := p.cycle(ctx, set); err != nil {
			p.logger.Error("cycle failed", ports.Err(err))
			p.stats.CycleErrors.Add(1)
			delay = set.ErrorCooldown
		}

		if err := p.clock.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// cycle runs one iteration of the state machine: poll, buffer, flush on
// threshold, drain backlog. A panic anywhere inside is converted to an
// error so the loop survives and applies the cooldown.
func (p *Pipeline) cycle(ctx context.Context, set Settings) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()

	p.stats.Cycles.Add(1)

	if err := p.poll(ctx); err != nil {
		return err
	}

	if len(p.session.Buffer) >= set.FlushThreshold {
		p.flushBuffer(ctx)
	}

	p.drainBacklog(ctx)
	return nil
}

// poll samples the sensor source once and appends the derived reading
// to the buffer. A source with no data is not an error; anything else
// fails the cycle.
func (p *Pipeline) poll(ctx context.Context) error {
	fix, err := p.source.Latest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoFix) {
			p.logger.Debug("no fix this cycle")
			return nil
		}
		return fmt.Errorf("sensor poll: %w", err)
	}

	r := domain.Reading{
		Lat:       fix.Lat,
		Lon:       fix.Lon,
		Altitude:  fix.Altitude,
		Accuracy:  fix.Accuracy,
		Timestamp: domain.FormatTimestamp(p.clock.Now()),
		Speed:     geo.Speed(fix.VelN, fix.VelE, fix.VelD),
	}

	// Bearing needs a prior position; the first reading of a session
	// goes out without one.
	if p.session.Prev != nil {
		b := geo.Bearing(*p.session.Prev, r.Coordinate())
		r.Bearing = &b
	}

	if p.battery != nil {
		if level, err := p.battery.Level(ctx); err == nil {
			r.Battery = &level
		} else {
			p.logger.Debug("battery level unavailable", ports.Err(err))
		}
	}

	p.session.Push(r)
	p.stats.ReadingsPolled.Add(1)
	return nil
}

// flushBuffer makes one flush decision over the full buffer: transmit
// when reachable, otherwise (or on send failure) migrate the readings
// to the durable store. Either way the buffer ends empty, so it never
// grows past the threshold.
func (p *Pipeline) flushBuffer(ctx context.Context) {
	defer p.session.ClearBuffer()

	n := len(p.session.Buffer)

	if p.probe.Reachable(ctx) {
		err := p.tx.SendBatch(ctx, p.session.Buffer)
		if err == nil {
			p.logger.Info("sent buffer", ports.Int("readings", n))
			p.stats.BatchesSent.Add(1)
			p.stats.ReadingsSent.Add(int64(n))
			return
		}
		p.logger.Error("buffer send failed, storing locally", ports.Err(err))
	} else {
		p.logger.Info("offline, storing buffer locally", ports.Int("readings", n))
	}

	if err := p.store.Append(ctx, p.session.Buffer); err != nil {
		// Non-fatal: the readings are lost for this cycle but the
		// process keeps running.
		p.logger.Error("store append failed, readings dropped",
			ports.Int("readings", n), ports.Err(err))
		return
	}
	p.stats.ReadingsPersisted.Add(int64(n))
}

// drainBacklog attempts to deliver the durable store's contents. The
// store is cleared only after the whole backlog was acknowledged; a
// failed clear leaves the backlog for a later cycle, accepting
// duplicate delivery over data loss.
func (p *Pipeline) drainBacklog(ctx context.Context) {
	if !p.probe.Reachable(ctx) {
		return
	}

	backlog, err := p.store.FetchAll(ctx)
	if err != nil {
		p.logger.Error("backlog fetch failed", ports.Err(err))
		return
	}
	if len(backlog) == 0 {
		return
	}

	if err := p.tx.SendBatch(ctx, backlog); err != nil {
		p.logger.Error("backlog send failed", ports.Int("readings", len(backlog)), ports.Err(err))
		return
	}

	if err := p.store.ClearAll(ctx); err != nil {
		p.logger.Error("backlog clear failed, will retry", ports.Err(err))
		return
	}

	p.logger.Info("backlog drained", ports.Int("readings", len(backlog)))
	p.stats.BacklogDrains.Add(1)
	p.stats.ReadingsSent.Add(int64(len(backlog)))
}
