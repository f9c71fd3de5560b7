package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bft-labs/fibcalc/internal/domain"
	"github.com/bft-labs/fibcalc/internal/ports"
	"github.com/bft-labs/fibcalc/pkg/log"
)

const tracerName = "github.com/bft-labs/fibcalc/internal/adapters/fs"

// SnapshotStore implements ports.SnapshotStore with one file per snapshot
// in a checkpoint directory.
type SnapshotStore struct {
	dir    string
	codec  Codec
	keep   int
	logger ports.Logger
	now    func() time.Time
	tracer trace.Tracer

	mu   sync.Mutex
	last time.Time
}

// StoreOption configures a SnapshotStore.
type StoreOption func(*SnapshotStore)

// WithCodec sets the format used for new snapshots. Loading always picks
// the codec from each file's extension.
func WithCodec(c Codec) StoreOption {
	return func(s *SnapshotStore) {
		s.codec = c
	}
}

// WithRetention keeps only the newest keep snapshots after every write.
// Zero keeps everything.
func WithRetention(keep int) StoreOption {
	return func(s *SnapshotStore) {
		s.keep = keep
	}
}

// WithLogger sets the logger used for skipped files and pruning.
func WithLogger(logger ports.Logger) StoreOption {
	return func(s *SnapshotStore) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for snapshot stamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *SnapshotStore) {
		s.now = now
	}
}

// NewSnapshotStore creates a store rooted at dir. The directory is created
// lazily on the first write.
func NewSnapshotStore(dir string, opts ...StoreOption) *SnapshotStore {
	def, _ := CodecFor(DefaultFormat)
	s := &SnapshotStore{
		dir:    dir,
		codec:  def,
		logger: log.NewNoopLogger(),
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenStore builds a store in dir that writes the named format and keeps
// the newest keep snapshots. An empty format selects DefaultFormat.
func OpenStore(dir, format string, keep int, logger ports.Logger) (*SnapshotStore, error) {
	if format == "" {
		format = DefaultFormat
	}
	codec, ok := CodecFor(format)
	if !ok {
		return nil, fmt.Errorf("%w: unknown format %q", domain.ErrInvalidConfig, format)
	}
	opts := []StoreOption{WithCodec(codec), WithRetention(keep)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return NewSnapshotStore(dir, opts...), nil
}

// Dir returns the checkpoint directory.
func (s *SnapshotStore) Dir() string {
	return s.dir
}

// Write persists p to a new file named after the current time.
// The record goes to a hidden temp file first and is renamed into place
// once synced, so readers never observe a partial snapshot.
func (s *SnapshotStore) Write(ctx context.Context, p domain.Progress) (err error) {
	ctx, span := s.tracer.Start(ctx, "snapshot.write",
		trace.WithAttributes(attribute.Int64("index", int64(p.Index))))
	defer func() { endSpan(span, err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Encode(p)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	name := domain.SnapshotName(s.nextStamp(), s.codec.Ext())
	path := filepath.Join(s.dir, name)
	tmp := filepath.Join(s.dir, "."+name+".tmp")

	if err := writeFileSync(tmp, data); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	span.SetAttributes(attribute.String("file", name))

	s.logger.Debug("snapshot written", log.String("file", name), log.Uint64("index", p.Index))

	if s.keep > 0 {
		if _, err := s.Prune(ctx, s.keep); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the newest snapshot that decodes successfully.
// Files are tried in descending name order; unreadable ones are skipped.
func (s *SnapshotStore) Load(ctx context.Context) (p domain.Progress, err error) {
	ctx, span := s.tracer.Start(ctx, "snapshot.load")
	defer func() { endSpan(span, err) }()

	names, err := s.List(ctx)
	if err != nil {
		return domain.Progress{}, err
	}
	if len(names) == 0 {
		return domain.Progress{}, fmt.Errorf("%w: %s is empty", domain.ErrNotFound, s.dir)
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return domain.Progress{}, err
		}
		p, err := s.readSnapshot(name)
		if err != nil {
			s.logger.Debug("skipping snapshot", log.String("file", name), log.Err(err))
			continue
		}
		span.SetAttributes(
			attribute.String("file", name),
			attribute.Int64("index", int64(p.Index)),
		)
		return p, nil
	}
	return domain.Progress{}, fmt.Errorf("%w: %d candidates in %s", domain.ErrCorrupt, len(names), s.dir)
}

// List returns snapshot file names, newest first.
// A missing directory yields an error wrapping domain.ErrNotFound.
func (s *SnapshotStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
		return nil, fmt.Errorf("read checkpoint dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if _, _, ok := domain.ParseSnapshotName(e.Name()); ok {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, func(a, b string) int { return strings.Compare(b, a) })
	return names, nil
}

// Prune removes all but the newest keep snapshots and returns how many
// files were deleted. keep <= 0 is a no-op.
func (s *SnapshotStore) Prune(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	names, err := s.List(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if len(names) <= keep {
		return 0, nil
	}

	removed := 0
	for _, name := range names[keep:] {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		err := os.Remove(filepath.Join(s.dir, name))
		if err != nil && !errors.Is(err, iofs.ErrNotExist) {
			return removed, fmt.Errorf("prune snapshot %s: %w", name, err)
		}
		removed++
	}
	if removed > 0 {
		s.logger.Debug("snapshots pruned", log.Int("removed", removed), log.Int("kept", keep))
	}
	return removed, nil
}

func (s *SnapshotStore) readSnapshot(name string) (domain.Progress, error) {
	_, ext, _ := domain.ParseSnapshotName(name)
	c, ok := CodecFor(ext)
	if !ok {
		return domain.Progress{}, fmt.Errorf("unknown snapshot format %q", ext)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return domain.Progress{}, err
	}
	return c.Decode(data)
}

// nextStamp returns the current wall time, bumped past the previous stamp
// so names from one store are strictly increasing.
func (s *SnapshotStore) nextStamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.now().Round(0)
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
