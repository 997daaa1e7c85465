package app

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nzmdn/trackship/internal/ports"
)

// ConfigWatcher monitors the config file via fsnotify and swaps the
// mutable pipeline settings when it changes. Immutable settings (paths,
// URLs, device id) still require a restart.
type ConfigWatcher struct {
	path   string
	reload func() (Settings, error)
	holder *SettingsHolder
	logger ports.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// NewConfigWatcher creates a watcher for the config file at path.
// reload re-reads the file and returns the resulting settings; it is
// supplied by the caller so this package stays ignorant of the config
// format.
func NewConfigWatcher(path string, reload func() (Settings, error), holder *SettingsHolder, logger ports.Logger) *ConfigWatcher {
	return &ConfigWatcher{
		path:   path,
		reload: reload,
		holder: holder,
		logger: logger,
	}
}

// Run watches the config file's directory until ctx is done. Editors
// typically replace files rather than write in place, so the watch is
// on the directory and events are filtered by base name.
func (w *ConfigWatcher) Run(ctx context.Context) {
	if w.path == "" {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Error("config watcher: create failed", ports.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		w.logger.Error("config watcher: watch failed",
			ports.String("dir", filepath.Dir(w.path)), ports.Err(err))
		return
	}

	base := filepath.Base(w.path)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceApply(100 * time.Millisecond)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher: error", ports.Err(err))
		}
	}
}

// debounceApply coalesces bursts of events into one reload.
func (w *ConfigWatcher) debounceApply(delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(delay, w.apply)
}

func (w *ConfigWatcher) apply() {
	s, err := w.reload()
	if err != nil {
		w.logger.Error("config watcher: reload failed", ports.Err(err))
		return
	}

	w.holder.Store(s)
	w.logger.Info("config reloaded",
		ports.Int("flush_threshold", s.FlushThreshold),
		ports.Duration("poll_interval", s.PollInterval),
		ports.Duration("error_cooldown", s.ErrorCooldown),
	)
}
