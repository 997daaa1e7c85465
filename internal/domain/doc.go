// Package domain contains the core domain entities and value objects for
// trackship.
//
// This package represents the innermost layer of the agent. It has no
// dependencies on infrastructure concerns (HTTP, SQL, logging) and
// contains only the data model and its invariants.
//
// # Entities
//
//   - [Reading]: a single timestamped positional/status observation
//   - [Coordinate]: a latitude/longitude pair
//   - [Session]: the pipeline-owned previous position and in-memory buffer
//
// # Design Principles
//
// Domain entities are:
//   - Free of infrastructure dependencies
//   - Owned by exactly one component where mutable (Session by the pipeline)
//   - Testable without mocks or external systems
package domain
