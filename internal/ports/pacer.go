package ports

import "context"

// Pacer delays the calculator between iterations.
type Pacer interface {
	// Pause blocks for one pacing interval or until ctx is done.
	Pause(ctx context.Context) error
}
