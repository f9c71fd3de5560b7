// Package fibcalc computes Fibonacci numbers with an iterative loop that
// can be paced and checkpointed to disk.
//
// Example usage:
//
//	n, err := fibcalc.Compute(ctx, 90,
//	    fibcalc.WithCheckpointDir("/var/lib/fib"),
//	    fibcalc.WithPacing(time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Snapshots are written as fib.<stamp>.<ext> files; an interrupted run
// resumes from the newest readable one.
package fibcalc

import (
	"context"
	"io"
	"math/big"
	"time"

	"github.com/bft-labs/fibcalc/internal/adapters/fs"
	"github.com/bft-labs/fibcalc/internal/app"
	"github.com/bft-labs/fibcalc/internal/domain"
	"github.com/bft-labs/fibcalc/internal/ports"
	"github.com/bft-labs/fibcalc/pkg/log"
)

// Progress is the position reached by the calculator: an index and the
// two consecutive Fibonacci values ending at it.
type Progress = domain.Progress

var (
	// ErrNotFound is returned by LoadLatest when there is no snapshot.
	ErrNotFound = domain.ErrNotFound
	// ErrCorrupt is returned by LoadLatest when no snapshot can be decoded.
	ErrCorrupt = domain.ErrCorrupt
)

// Fib returns F(n) without any I/O.
func Fib(n uint64) *big.Int {
	return domain.Fib(n)
}

// Option configures Compute.
type Option func(*options)

type options struct {
	checkpointDir string
	format        string
	keep          int
	pace          time.Duration
	output        io.Writer
	logger        ports.Logger
}

// WithCheckpointDir enables snapshot persistence and resume in dir.
func WithCheckpointDir(dir string) Option {
	return func(o *options) {
		o.checkpointDir = dir
	}
}

// WithFormat selects the snapshot encoding: "json" (default), "yaml" or "toml".
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = format
	}
}

// WithRetention keeps only the newest keep snapshots.
func WithRetention(keep int) Option {
	return func(o *options) {
		o.keep = keep
	}
}

// WithPacing pauses for interval before every step and announces the step
// on the output writer.
func WithPacing(interval time.Duration) Option {
	return func(o *options) {
		o.pace = interval
	}
}

// WithOutput sets where progress messages are written. Default: discarded.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithLogger sets a structured logger. Default: no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Compute returns F(n), honouring the configured pacing and checkpointing.
func Compute(ctx context.Context, n uint64, opts ...Option) (*big.Int, error) {
	o := options{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}

	var store ports.SnapshotStore
	if o.checkpointDir != "" {
		s, err := fs.OpenStore(o.checkpointDir, o.format, o.keep, o.logger)
		if err != nil {
			return nil, err
		}
		store = s
	}

	var pacer ports.Pacer
	if o.pace > 0 {
		pacer = app.NewIntervalPacer(o.pace)
	}

	calc := app.NewCalculator(app.CalculatorConfig{
		CheckpointDir: o.checkpointDir,
		Output:        o.output,
	}, store, pacer, o.logger)
	return calc.Compute(ctx, n)
}

// LoadLatest returns the newest readable snapshot in dir.
func LoadLatest(ctx context.Context, dir string) (Progress, error) {
	return fs.NewSnapshotStore(dir).Load(ctx)
}
