// Package ports defines the interfaces (ports) that connect the
// application layer to infrastructure adapters.
//
// Ports are the boundaries between the pipeline core and the outside
// world. They define what the pipeline needs from external systems
// without specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [ReadingStore]: Durable fallback persistence for undelivered readings
//   - [Probe]: Advisory connectivity check
//   - [Transmitter]: Batch delivery to the remote collector
//   - [FixSource]: On-demand latest positional fix
//   - [BatterySource]: Best-effort battery level enrichment
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with
// concrete implementations (sqlite, HTTP, local feed daemon).
//
// This separation enables:
//   - Testing pipeline logic with fake implementations
//   - Swapping infrastructure without changing the reliability logic
//   - Clear boundaries and dependency direction
package ports
