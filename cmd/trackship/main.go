package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/nzmdn/trackship/internal/app"
	"github.com/nzmdn/trackship/internal/cliconfig"
	logpkg "github.com/nzmdn/trackship/pkg/log"
	"github.com/nzmdn/trackship/pkg/trackship"
)

const helpDescription = `
Ship GPS readings from a local sensor feed to a remote collector, even
over spotty connectivity.

Highlights:
  - Buffers readings in memory and flushes when the batch threshold is reached.
  - Falls back to a local SQLite file when the network is down; the backlog
    is drained automatically once connectivity returns.
  - At-least-once delivery: nothing is discarded before the collector
    acknowledged it.
  - Configure via file, environment (TRACKSHIP_*), or flags.
`

var longHelp = strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  trackship --feed-url http://localhost:8500/fix --device-id 971543493196
  trackship --config $HOME/.trackship/config.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	// A .env next to the binary is a convenience for development setups.
	_ = godotenv.Load()

	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "trackship",
		Short:   "Ship GPS readings to a remote collector, even over spotty connectivity",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Precedence: flags > environment > config file > defaults.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Interface("config", cfg).Msg("configuration")

			libCfg := trackship.Config{
				DBPath:            cfg.DBPath,
				DeviceID:          cfg.DeviceID,
				ServerURL:         cfg.ServerURL,
				FeedURL:           cfg.FeedURL,
				StatusURL:         cfg.StatusURL,
				ProbeURL:          cfg.ProbeURL,
				FlushThreshold:    cfg.FlushThreshold,
				PollInterval:      cfg.PollInterval,
				ErrorCooldown:     cfg.ErrorCooldown,
				ProbeTimeout:      cfg.ProbeTimeout,
				HTTPTimeout:       cfg.HTTPTimeout,
				HeartbeatInterval: cfg.HeartbeatInterval,
			}

			adapter := logpkg.NewZerologAdapterWithLogger(log)

			agent, err := trackship.New(libCfg, trackship.WithLogger(adapter))
			if err != nil {
				return fmt.Errorf("create trackship: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := agent.Start(ctx); err != nil {
				return fmt.Errorf("start trackship: %w", err)
			}

			// Hot-reload the tunable pipeline settings when the config
			// file changes. Endpoints and paths still need a restart.
			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				reload := func() (app.Settings, error) {
					c := cfg
					fc, err := cliconfig.LoadFileConfig(cfgFile)
					if err != nil {
						return app.Settings{}, err
					}
					if err := cliconfig.ApplyFileConfig(&c, fc, changed); err != nil {
						return app.Settings{}, err
					}
					if err := cliconfig.ApplyEnvConfig(&c, changed); err != nil {
						return app.Settings{}, err
					}
					if err := c.Validate(); err != nil {
						return app.Settings{}, err
					}
					return app.Settings{
						FlushThreshold: c.FlushThreshold,
						PollInterval:   c.PollInterval,
						ErrorCooldown:  c.ErrorCooldown,
					}, nil
				}
				watcher := app.NewConfigWatcher(cfgFile, reload, agent.Settings(), adapter)
				go watcher.Run(ctx)
			}

			doneCh := make(chan struct{})
			go func() {
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := agent.Status()
						if status == trackship.StateStopped || status == trackship.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				log.Info().Msg("received signal, stopping...")
			case <-doneCh:
				if agent.Status() == trackship.StateCrashed {
					log.Error().Msg("trackship crashed")
				}
			}

			if err := agent.Stop(); err != nil {
				return fmt.Errorf("stop trackship: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.trackship/config.toml)")
	root.Flags().StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite file used as the durable fallback store")
	root.Flags().StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier sent with every reading")

	root.Flags().StringVar(&cfg.ServerURL, "server-url", cfg.ServerURL, fmt.Sprintf("collector base URL (defaults to %s)", cliconfig.DefaultServerURL))
	root.Flags().StringVar(&cfg.FeedURL, "feed-url", cfg.FeedURL, "local sensor feed endpoint serving position fixes")
	root.Flags().StringVar(&cfg.StatusURL, "status-url", cfg.StatusURL, "device status endpoint for battery enrichment (optional)")
	root.Flags().StringVar(&cfg.ProbeURL, "probe-url", cfg.ProbeURL, "endpoint used for the connectivity check")

	root.Flags().IntVar(&cfg.FlushThreshold, "flush-threshold", cfg.FlushThreshold, "buffered readings that trigger a flush")

	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "interval between collection cycles")
	root.Flags().DurationVar(&cfg.ErrorCooldown, "cooldown", cfg.ErrorCooldown, "pause after a failed cycle")
	root.Flags().DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "timeout for the connectivity check")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout for feed reads and deliveries")
	root.Flags().DurationVar(&cfg.HeartbeatInterval, "heartbeat", cfg.HeartbeatInterval, "interval between stats log lines (0 disables)")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("trackship")
		os.Exit(1)
	}
}
