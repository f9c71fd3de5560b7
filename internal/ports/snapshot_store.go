package ports

import (
	"context"

	"github.com/bft-labs/fibcalc/internal/domain"
)

// SnapshotStore persists calculator progress for resuming after interruption.
type SnapshotStore interface {
	// Write persists p as a new snapshot. Existing snapshots are never
	// modified.
	Write(ctx context.Context, p domain.Progress) error

	// Load returns the most recent snapshot that can be decoded.
	// It returns an error wrapping domain.ErrNotFound when there is nothing
	// to load and domain.ErrCorrupt when every candidate failed to decode.
	Load(ctx context.Context) (domain.Progress, error)
}
