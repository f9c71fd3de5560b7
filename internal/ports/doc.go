// Package ports defines the interfaces that connect the calculator to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [SnapshotStore]: persists and loads calculator progress
//   - [Pacer]: blocks between iterations when pacing is enabled
//   - [Logger]: structured logging abstraction
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters) implement them with the file system and
// zerolog, which keeps the loop testable with in-memory fakes.
package ports
