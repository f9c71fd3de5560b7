package app

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bft-labs/fibcalc/internal/domain"
	"github.com/bft-labs/fibcalc/internal/ports"
	"github.com/bft-labs/fibcalc/pkg/log"
)

const tracerName = "github.com/bft-labs/fibcalc/internal/app"

// CalculatorConfig contains configuration for the calculation loop.
type CalculatorConfig struct {
	// CheckpointDir names the snapshot location in progress messages.
	CheckpointDir string

	// Output receives progress and resume messages. Nil discards them.
	Output io.Writer
}

// Calculator runs the iterative Fibonacci loop.
type Calculator struct {
	config CalculatorConfig
	store  ports.SnapshotStore
	pacer  ports.Pacer
	logger ports.Logger
	tracer trace.Tracer
}

// NewCalculator creates a calculator with the given dependencies.
// A nil store disables checkpointing, a nil pacer disables pacing and a
// nil logger discards log output.
func NewCalculator(
	config CalculatorConfig,
	store ports.SnapshotStore,
	pacer ports.Pacer,
	logger ports.Logger,
) *Calculator {
	if config.Output == nil {
		config.Output = io.Discard
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Calculator{
		config: config,
		store:  store,
		pacer:  pacer,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
}

// Compute returns F(n).
//
// When a store is configured the latest snapshot is used as the starting
// point and a snapshot is written for the starting state and after every
// step. When a pacer is configured each step is announced on the output
// and preceded by a pause. Cancelling ctx stops the loop between steps.
func (c *Calculator) Compute(ctx context.Context, n uint64) (result *big.Int, err error) {
	if n < 2 {
		return new(big.Int).SetUint64(n), nil
	}

	ctx, span := c.tracer.Start(ctx, "fibcalc.compute",
		trace.WithAttributes(attribute.Int64("n", int64(n))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	p, err := c.start(ctx, n)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("start_index", int64(p.Index)))

	for p.Index < n {
		if c.pacer != nil {
			fmt.Fprintf(c.config.Output, "Fibonacci number %d: %s; sleeping...\n", p.Index, p.Current)
			if err := c.pacer.Pause(ctx); err != nil {
				return nil, err
			}
		} else if err := ctx.Err(); err != nil {
			return nil, err
		}

		p = p.Advance()
		if err := c.checkpoint(ctx, p); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("computation finished", log.Uint64("n", n), log.Stringer("value", p.Current))
	return p.Current, nil
}

// start determines the initial progress for a run towards n and records it.
func (c *Calculator) start(ctx context.Context, n uint64) (domain.Progress, error) {
	p := domain.Initial()
	if c.store == nil {
		return p, nil
	}

	loaded, err := c.store.Load(ctx)
	switch {
	case err == nil:
		fmt.Fprintf(c.config.Output, "Loaded latest checkpoint from %s\n", c.config.CheckpointDir)
		c.logger.Info("checkpoint loaded",
			log.String("dir", c.config.CheckpointDir),
			log.Uint64("index", loaded.Index),
			log.Bool("past_target", loaded.Index > n),
		)
		trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("resumed", true))
		p = loaded
	case domain.IsNoCheckpoint(err):
		fmt.Fprintf(c.config.Output, "No loadable checkpoint in %s\n", c.config.CheckpointDir)
		c.logger.Info("no loadable checkpoint",
			log.String("dir", c.config.CheckpointDir),
			log.Err(err),
		)
	default:
		return p, fmt.Errorf("load checkpoint: %w", err)
	}

	// A snapshot from a run with a larger target cannot be walked back
	// without trusting its priors, so the run restarts from F(1).
	if p.Index > n {
		c.logger.Info("checkpoint is past target, starting over",
			log.Uint64("index", p.Index),
			log.Uint64("n", n),
		)
		p = domain.Initial()
	}

	if err := c.checkpoint(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

func (c *Calculator) checkpoint(ctx context.Context, p domain.Progress) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Write(ctx, p); err != nil {
		return fmt.Errorf("write checkpoint at %d: %w", p.Index, err)
	}
	return nil
}
