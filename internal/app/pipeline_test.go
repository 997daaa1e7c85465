package app

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/nzmdn/trackship/internal/domain"
	"github.com/nzmdn/trackship/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// fakeSource replays a scripted sequence of fixes and errors.
type fakeSource struct {
	fixes []ports.Fix
	errs  []error
	calls int
	panic bool
}

func (s *fakeSource) Latest(ctx context.Context) (ports.Fix, error) {
	if s.panic {
		panic("sensor feed wedged")
	}
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return ports.Fix{}, s.errs[i]
	}
	if i < len(s.fixes) {
		return s.fixes[i], nil
	}
	return ports.Fix{}, domain.ErrNoFix
}

// fakeBattery returns a fixed level or an error.
type fakeBattery struct {
	level float64
	err   error
}

func (b *fakeBattery) Level(ctx context.Context) (float64, error) {
	return b.level, b.err
}

// fakeStore is an in-memory ReadingStore with per-operation failure
// injection.
type fakeStore struct {
	readings []domain.Reading

	failInit   bool
	failAppend bool
	failFetch  bool
	failClear  bool

	appendCalls int
	clearCalls  int
}

func (s *fakeStore) Init(ctx context.Context) error {
	if s.failInit {
		return fmt.Errorf("%w: init", domain.ErrStorage)
	}
	return nil
}

func (s *fakeStore) Append(ctx context.Context, readings []domain.Reading) error {
	s.appendCalls++
	if s.failAppend {
		return fmt.Errorf("%w: append", domain.ErrStorage)
	}
	s.readings = append(s.readings, readings...)
	return nil
}

func (s *fakeStore) FetchAll(ctx context.Context) ([]domain.Reading, error) {
	if s.failFetch {
		return nil, fmt.Errorf("%w: fetch", domain.ErrStorage)
	}
	return append([]domain.Reading{}, s.readings...), nil
}

func (s *fakeStore) ClearAll(ctx context.Context) error {
	s.clearCalls++
	if s.failClear {
		return fmt.Errorf("%w: clear", domain.ErrStorage)
	}
	s.readings = nil
	return nil
}

// fakeProbe reports a settable reachability.
type fakeProbe struct {
	reachable bool
	calls     int
}

func (p *fakeProbe) Reachable(ctx context.Context) bool {
	p.calls++
	return p.reachable
}

// fakeTransmitter records batches and can be scripted to fail.
type fakeTransmitter struct {
	batches [][]domain.Reading
	fail    bool
}

func (t *fakeTransmitter) SendBatch(ctx context.Context, readings []domain.Reading) error {
	// The pipeline reuses its buffer slice, so keep a copy.
	t.batches = append(t.batches, append([]domain.Reading{}, readings...))
	if t.fail {
		return fmt.Errorf("%w: collector down", domain.ErrTransport)
	}
	return nil
}

// fakeClock advances a synthetic time and records sleeps. After
// maxSleeps it cancels the run.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration

	maxSleeps int
	cancel    context.CancelFunc

	// afterSleep, when set, runs synchronously after each recorded
	// sleep. n is 1-based.
	afterSleep func(n int)
}

func newFakeClock(cancel context.CancelFunc, maxSleeps int) *fakeClock {
	return &fakeClock{
		now:       time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		maxSleeps: maxSleeps,
		cancel:    cancel,
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	n := len(c.sleeps)
	done := n >= c.maxSleeps
	c.mu.Unlock()

	if c.afterSleep != nil {
		c.afterSleep(n)
	}
	if done {
		c.cancel()
		return ctx.Err()
	}
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration{}, c.sleeps...)
}

func testSettings(threshold int) *SettingsHolder {
	return NewSettingsHolder(Settings{
		FlushThreshold: threshold,
		PollInterval:   5 * time.Second,
		ErrorCooldown:  10 * time.Second,
	})
}

func fixAt(lat, lon float64) ports.Fix {
	return ports.Fix{Lat: lat, Lon: lon, Altitude: 30, Accuracy: 5, VelN: 3, VelE: 4}
}

type pipelineParts struct {
	source *fakeSource
	store  *fakeStore
	probe  *fakeProbe
	tx     *fakeTransmitter
	clock  *fakeClock
}

func newTestPipeline(settings *SettingsHolder, parts pipelineParts) *Pipeline {
	if parts.clock == nil {
		parts.clock = newFakeClock(func() {}, 1<<30)
	}
	return NewPipeline(settings, parts.source, nil, parts.store, parts.probe, parts.tx, &mockLogger{}, parts.clock)
}

func runCycles(t *testing.T, p *Pipeline, settings *SettingsHolder, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := p.cycle(context.Background(), settings.Load()); err != nil {
			t.Fatalf("cycle %d: %v", i, err)
		}
	}
}

func TestOfflineBufferMigratesToStore(t *testing.T) {
	settings := testSettings(3)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1), fixAt(2, 2), fixAt(3, 3)}}
	store := &fakeStore{}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: source, store: store, probe: &fakeProbe{reachable: false}, tx: tx})

	runCycles(t, p, settings, 3)

	// No-loss: every buffered reading is in the store, in order,
	// before the buffer was cleared.
	if len(store.readings) != 3 {
		t.Fatalf("store holds %d readings, want 3", len(store.readings))
	}
	for i, want := range []float64{1, 2, 3} {
		if store.readings[i].Lat != want {
			t.Errorf("stored reading %d has lat %v, want %v", i, store.readings[i].Lat, want)
		}
	}
	// Flush-triggers-clear.
	if len(p.session.Buffer) != 0 {
		t.Errorf("buffer holds %d readings after flush, want 0", len(p.session.Buffer))
	}
	// Nothing was transmitted while offline (drain probes but finds
	// the probe unreachable before fetching).
	if len(tx.batches) != 0 {
		t.Errorf("transmitter received %d batches while offline, want 0", len(tx.batches))
	}
}

func TestOnlineBufferIsTransmitted(t *testing.T) {
	settings := testSettings(2)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1), fixAt(2, 2)}}
	store := &fakeStore{}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: source, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 2)

	if len(tx.batches) != 1 || len(tx.batches[0]) != 2 {
		t.Fatalf("transmitter batches = %v, want one batch of 2", tx.batches)
	}
	if len(store.readings) != 0 {
		t.Errorf("store holds %d readings after successful send, want 0", len(store.readings))
	}
	if len(p.session.Buffer) != 0 {
		t.Errorf("buffer holds %d readings after flush, want 0", len(p.session.Buffer))
	}
}

func TestSendFailureFallsBackToStore(t *testing.T) {
	settings := testSettings(2)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1), fixAt(2, 2)}}
	store := &fakeStore{}
	tx := &fakeTransmitter{fail: true}
	p := newTestPipeline(settings, pipelineParts{source: source, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 2)

	if len(store.readings) != 2 {
		t.Fatalf("store holds %d readings after failed send, want 2", len(store.readings))
	}
	if len(p.session.Buffer) != 0 {
		t.Errorf("buffer holds %d readings after flush, want 0", len(p.session.Buffer))
	}
	// Backlog-clear-only-on-success: the failed drain attempts must
	// not have cleared the store.
	if store.clearCalls != 0 {
		t.Errorf("ClearAll called %d times after failed sends, want 0", store.clearCalls)
	}
}

func TestStoreAppendFailureStillClearsBuffer(t *testing.T) {
	settings := testSettings(1)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1)}}
	store := &fakeStore{failAppend: true}
	p := newTestPipeline(settings, pipelineParts{source: source, store: store, probe: &fakeProbe{reachable: false}, tx: &fakeTransmitter{}})

	runCycles(t, p, settings, 1)

	// The readings are lost for this cycle but the buffer must not
	// grow unbounded and the cycle must not fail.
	if len(p.session.Buffer) != 0 {
		t.Errorf("buffer holds %d readings after flush decision, want 0", len(p.session.Buffer))
	}
}

func TestThresholdTriggersSingleFlush(t *testing.T) {
	settings := testSettings(10)
	fixes := make([]ports.Fix, 10)
	for i := range fixes {
		fixes[i] = fixAt(float64(i), float64(i))
	}
	source := &fakeSource{fixes: fixes}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: source, store: &fakeStore{}, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 9)
	if len(tx.batches) != 0 {
		t.Fatalf("flush happened after %d readings, before the threshold", len(tx.batches))
	}

	// The 10th append triggers exactly one flush decision before the
	// 11th poll occurs.
	runCycles(t, p, settings, 1)
	if len(tx.batches) != 1 || len(tx.batches[0]) != 10 {
		t.Fatalf("transmitter batches = %d, want exactly one batch of 10", len(tx.batches))
	}
	if source.calls != 10 {
		t.Fatalf("source polled %d times, want 10", source.calls)
	}
}

func TestBacklogDrainClearsOnSuccess(t *testing.T) {
	settings := testSettings(100)
	backlog := []domain.Reading{
		{Lat: 1, Timestamp: "2026-08-30T09:00:00Z"},
		{Lat: 2, Timestamp: "2026-08-30T09:00:05Z"},
	}
	store := &fakeStore{readings: append([]domain.Reading{}, backlog...)}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: &fakeSource{}, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 1)

	if len(tx.batches) != 1 || !reflect.DeepEqual(tx.batches[0], backlog) {
		t.Fatalf("transmitter received %v, want the backlog verbatim", tx.batches)
	}
	if store.clearCalls != 1 {
		t.Fatalf("ClearAll called %d times, want 1", store.clearCalls)
	}
	if len(store.readings) != 0 {
		t.Fatalf("store holds %d readings after drain, want 0", len(store.readings))
	}
}

func TestBacklogKeptOnSendFailure(t *testing.T) {
	settings := testSettings(100)
	store := &fakeStore{readings: []domain.Reading{{Lat: 1, Timestamp: "2026-08-30T09:00:00Z"}}}
	tx := &fakeTransmitter{fail: true}
	p := newTestPipeline(settings, pipelineParts{source: &fakeSource{}, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 1)

	if store.clearCalls != 0 {
		t.Fatalf("ClearAll called %d times after failed send, want 0", store.clearCalls)
	}
	if len(store.readings) != 1 {
		t.Fatalf("backlog lost after failed send")
	}
}

func TestBacklogClearFailureRetriedNextCycle(t *testing.T) {
	settings := testSettings(100)
	store := &fakeStore{readings: []domain.Reading{{Lat: 1, Timestamp: "2026-08-30T09:00:00Z"}}, failClear: true}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: &fakeSource{}, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 1)
	if store.clearCalls != 1 || len(store.readings) != 1 {
		t.Fatalf("backlog considered cleared despite clear failure")
	}

	// The backlog is re-sent on the next cycle; duplicates are the
	// accepted trade-off.
	store.failClear = false
	runCycles(t, p, settings, 1)
	if len(tx.batches) != 2 {
		t.Fatalf("transmitter received %d batches, want 2 (resend after clear failure)", len(tx.batches))
	}
	if len(store.readings) != 0 {
		t.Fatalf("store holds %d readings after successful retry, want 0", len(store.readings))
	}
}

func TestBearingAbsentOnFirstReading(t *testing.T) {
	settings := testSettings(100)
	source := &fakeSource{fixes: []ports.Fix{fixAt(0, 0), fixAt(0, 1)}}
	p := newTestPipeline(settings, pipelineParts{source: source, store: &fakeStore{}, probe: &fakeProbe{}, tx: &fakeTransmitter{}})

	runCycles(t, p, settings, 2)

	buf := p.session.Buffer
	if len(buf) != 2 {
		t.Fatalf("buffer holds %d readings, want 2", len(buf))
	}
	if buf[0].Bearing != nil {
		t.Errorf("first reading bearing = %v, want nil", *buf[0].Bearing)
	}
	if buf[1].Bearing == nil {
		t.Fatal("second reading bearing is nil")
	}
	if got := *buf[1].Bearing; got < 89.999 || got > 90.001 {
		t.Errorf("second reading bearing = %v, want ~90", got)
	}
}

func TestBatteryEnrichment(t *testing.T) {
	settings := testSettings(100)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1)}}
	p := NewPipeline(settings, source, &fakeBattery{level: 80},
		&fakeStore{}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, newFakeClock(func() {}, 1<<30))

	runCycles(t, p, settings, 1)

	if b := p.session.Buffer[0].Battery; b == nil || *b != 80 {
		t.Fatalf("battery = %v, want 80", b)
	}
}

func TestBatteryFailureLeavesFieldAbsent(t *testing.T) {
	settings := testSettings(100)
	source := &fakeSource{fixes: []ports.Fix{fixAt(1, 1)}}
	p := NewPipeline(settings, source, &fakeBattery{err: errors.New("status daemon down")},
		&fakeStore{}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, newFakeClock(func() {}, 1<<30))

	runCycles(t, p, settings, 1)

	if b := p.session.Buffer[0].Battery; b != nil {
		t.Fatalf("battery = %v, want nil when the status source fails", *b)
	}
}

func TestNoFixSkipsPollButStillDrains(t *testing.T) {
	settings := testSettings(100)
	store := &fakeStore{readings: []domain.Reading{{Lat: 1, Timestamp: "2026-08-30T09:00:00Z"}}}
	tx := &fakeTransmitter{}
	p := newTestPipeline(settings, pipelineParts{source: &fakeSource{}, store: store, probe: &fakeProbe{reachable: true}, tx: tx})

	runCycles(t, p, settings, 1)

	if len(p.session.Buffer) != 0 {
		t.Errorf("buffer holds %d readings without a fix, want 0", len(p.session.Buffer))
	}
	// The backlog drain is independent of the poll outcome.
	if len(tx.batches) != 1 {
		t.Errorf("drain did not run on a no-fix cycle")
	}
}

func TestCooldownAfterSensorError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(cancel, 2)
	settings := testSettings(100)
	source := &fakeSource{errs: []error{errors.New("i2c bus error")}}
	p := NewPipeline(settings, source, nil, &fakeStore{}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, clock)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	sleeps := clock.Sleeps()
	if len(sleeps) != 2 {
		t.Fatalf("got %d sleeps, want 2", len(sleeps))
	}
	// The failed cycle sleeps the cooldown, the following clean cycle
	// the normal poll interval.
	if sleeps[0] != 10*time.Second {
		t.Errorf("sleep after failed cycle = %v, want the 10s cooldown", sleeps[0])
	}
	if sleeps[1] != 5*time.Second {
		t.Errorf("sleep after clean cycle = %v, want the 5s poll interval", sleeps[1])
	}
	if p.stats.CycleErrors.Load() != 1 {
		t.Errorf("cycle errors = %d, want 1", p.stats.CycleErrors.Load())
	}
}

func TestPanicInCycleIsRecovered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(cancel, 2)
	settings := testSettings(100)
	p := NewPipeline(settings, &fakeSource{panic: true}, nil, &fakeStore{}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, clock)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	sleeps := clock.Sleeps()
	for i, d := range sleeps {
		if d != 10*time.Second {
			t.Errorf("sleep %d = %v, want the cooldown after a panicking cycle", i, d)
		}
	}
	if p.stats.CycleErrors.Load() != 2 {
		t.Errorf("cycle errors = %d, want 2", p.stats.CycleErrors.Load())
	}
}

func TestSettingsSwapTakesEffectNextCycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	settings := testSettings(100)
	clock := newFakeClock(cancel, 2)
	clock.afterSleep = func(n int) {
		if n == 1 {
			settings.Store(Settings{FlushThreshold: 100, PollInterval: 30 * time.Second, ErrorCooldown: time.Minute})
		}
	}
	p := NewPipeline(settings, &fakeSource{}, nil, &fakeStore{}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, clock)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	sleeps := clock.Sleeps()
	if sleeps[0] != 5*time.Second {
		t.Errorf("first sleep = %v, want 5s", sleeps[0])
	}
	if sleeps[1] != 30*time.Second {
		t.Errorf("second sleep = %v, want the swapped 30s interval", sleeps[1])
	}
}

func TestStoreInitFailureDoesNotAbortRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := newFakeClock(cancel, 1)
	settings := testSettings(100)
	p := NewPipeline(settings, &fakeSource{}, nil, &fakeStore{failInit: true}, &fakeProbe{}, &fakeTransmitter{}, &mockLogger{}, clock)

	if err := p.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if p.stats.Cycles.Load() != 1 {
		t.Errorf("cycles = %d, want 1 despite init failure", p.stats.Cycles.Load())
	}
}
