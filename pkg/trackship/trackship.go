package trackship

import (
	"context"
	"net/http"
	"sync"

	"github.com/nzmdn/trackship/internal/adapters/feed"
	httpadapter "github.com/nzmdn/trackship/internal/adapters/http"
	"github.com/nzmdn/trackship/internal/adapters/sqlite"
	"github.com/nzmdn/trackship/internal/app"
	"github.com/nzmdn/trackship/internal/domain"
	"github.com/nzmdn/trackship/internal/ports"
	"github.com/nzmdn/trackship/pkg/log"
)

// Trackship is a store-and-forward GPS tracking agent that can be
// embedded in other applications. Use New() to create an instance,
// then Start() to begin collecting.
type Trackship struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	settings  *app.SettingsHolder
	pipeline  *app.Pipeline
	heartbeat *app.Heartbeat
	logger    ports.Logger

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Trackship instance with the given configuration.
// The instance is created in StateStopped; call Start() to begin
// collecting. Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Trackship, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}

	feedClient := o.httpClient
	if feedClient == nil {
		feedClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	probeClient := o.httpClient
	if probeClient == nil {
		probeClient = &http.Client{Timeout: cfg.ProbeTimeout}
	}

	source := o.source
	if source == nil {
		source = feed.NewFixSource(cfg.FeedURL, feedClient)
	}
	battery := o.battery
	if battery == nil && cfg.StatusURL != "" {
		battery = feed.NewBatterySource(cfg.StatusURL, feedClient)
	}
	store := o.store
	if store == nil {
		store = sqlite.NewStore(cfg.DBPath)
	}
	probe := o.probe
	if probe == nil {
		probe = httpadapter.NewProbe(cfg.ProbeURL, probeClient)
	}
	tx := o.transmitter
	if tx == nil {
		tx = httpadapter.NewTransmitter(httpadapter.TransmitterConfig{
			ServerURL: cfg.ServerURL,
			DeviceID:  cfg.DeviceID,
		}, feedClient, logger)
	}
	clock := o.clock
	if clock == nil {
		clock = app.SystemClock{}
	}

	var emitter eventEmitterWrapper
	if o.eventHandler != nil {
		emitter = eventEmitterWrapper{handler: o.eventHandler}
	}
	lifecycle := app.NewLifecycle(logger, &emitter)

	settings := app.NewSettingsHolder(app.Settings{
		FlushThreshold: cfg.FlushThreshold,
		PollInterval:   cfg.PollInterval,
		ErrorCooldown:  cfg.ErrorCooldown,
	})

	pipeline := app.NewPipeline(settings, source, battery, store, probe, tx, logger, clock)

	return &Trackship{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		settings:  settings,
		pipeline:  pipeline,
		heartbeat: app.NewHeartbeat(pipeline.Stats(), logger, cfg.HeartbeatInterval),
		logger:    logger,
	}, nil
}

// Settings returns the live settings holder; storing a new snapshot
// takes effect on the pipeline's next cycle.
func (t *Trackship) Settings() *app.SettingsHolder {
	return t.settings
}

// Stats returns a snapshot of the pipeline counters.
func (t *Trackship) Stats() app.StatsSnapshot {
	return t.pipeline.Stats().Snapshot()
}

// Start begins collecting in the background.
// Returns immediately after starting the pipeline goroutine.
// Returns an error if already running.
// The provided context is used for the lifetime of the collection loop.
func (t *Trackship) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := t.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	t.ctx = runCtx
	t.cancel = cancel
	t.lifecycle.SetCancel(cancel)

	if err := t.heartbeat.Start(); err != nil {
		t.logger.Error("heartbeat start failed", ports.Err(err))
	}

	t.lifecycle.AddWorker()
	go func() {
		defer t.lifecycle.WorkerDone()

		if err := t.lifecycle.TransitionTo(app.StateRunning, "pipeline starting"); err != nil {
			t.logger.Error("failed to transition to running", ports.Err(err))
			return
		}

		err := t.pipeline.Run(runCtx)
		if err != nil && err != context.Canceled {
			t.logger.Error("pipeline error", ports.Err(err))
			_ = t.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		}
	}()

	return nil
}

// Stop gracefully shuts down the agent.
// Waits up to 30 seconds before forcing shutdown.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (t *Trackship) Stop() error {
	t.mu.Lock()

	if !t.lifecycle.CanStop() {
		t.mu.Unlock()
		return domain.ErrNotRunning
	}
	if err := t.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		t.mu.Unlock()
		return err
	}
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()

	err := t.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	t.heartbeat.Stop()

	if err != nil {
		_ = t.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = t.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (t *Trackship) Status() State {
	return convertState(t.lifecycle.State())
}
