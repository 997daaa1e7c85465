// Package trackship provides an embeddable store-and-forward GPS
// tracking agent.
//
// Trackship polls a local sensor feed for position fixes, buffers them
// in memory, and ships them to a remote collector when connectivity
// allows. Readings that cannot be delivered are persisted in a local
// SQLite file and drained on later cycles, giving at-least-once
// delivery across restarts and connectivity gaps.
//
// # Basic Usage
//
//	cfg := trackship.Config{
//	    FeedURL:  "http://localhost:8500/fix",
//	    DeviceID: "971543493196",
//	}
//
//	agent, err := trackship.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := agent.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := agent.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Configuration
//
// Create a [Config] with at minimum FeedURL. All other fields have
// defaults set via [Config.SetDefaults].
//
// # Dependency Injection
//
// For testing, custom implementations of external dependencies can be
// injected:
//
//	agent, err := trackship.New(cfg,
//	    trackship.WithHTTPClient(mockClient),
//	    trackship.WithLogger(customLogger),
//	    trackship.WithStore(memStore),
//	)
//
// # Lifecycle States
//
// A Trackship instance can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed].
// Use [Trackship.Status] to query the current state.
package trackship
