package domain

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists: the checkpoint
	// directory is missing or holds no snapshot files.
	ErrNotFound = errors.New("fibcalc: no snapshot found")

	// ErrCorrupt is returned when snapshot files exist but none of them
	// could be decoded.
	ErrCorrupt = errors.New("fibcalc: no loadable snapshot")

	// ErrInvalidProgress is returned when a progress value breaks its invariants.
	ErrInvalidProgress = errors.New("fibcalc: invalid progress")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("fibcalc: invalid configuration")
)

// IsNoCheckpoint reports whether err means "nothing to resume from".
// Both conditions are recoverable: the calculator starts from scratch.
func IsNoCheckpoint(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}
