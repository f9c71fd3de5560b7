// Package domain contains the core entities of fibcalc.
//
// It has no dependencies on infrastructure concerns (file system, logging,
// tracing) and holds only the arithmetic and naming rules.
//
// # Entities
//
//   - [Progress]: the position reached by the iterative calculator, an index
//     plus the two consecutive Fibonacci values ending at it
//   - [SnapshotName]: the on-disk naming scheme for persisted progress
//
// Errors are exported as sentinels and are meant to be checked with
// errors.Is after any amount of wrapping.
package domain
