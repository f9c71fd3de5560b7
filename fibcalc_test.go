package fibcalc

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/fibcalc/internal/domain"
)

func TestCompute_PacingWritesProgress(t *testing.T) {
	var out bytes.Buffer
	v, err := Compute(context.Background(), 3, WithPacing(time.Millisecond), WithOutput(&out))
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if v.Int64() != 2 {
		t.Fatalf("Compute(3) = %v, want 2", v)
	}
	want := "Fibonacci number 1: 1; sleeping...\nFibonacci number 2: 1; sleeping...\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestCompute_UnknownFormat(t *testing.T) {
	_, err := Compute(context.Background(), 5, WithCheckpointDir(t.TempDir()), WithFormat("pickle"))
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestLoadLatest_Missing(t *testing.T) {
	_, err := LoadLatest(context.Background(), filepath.Join(t.TempDir(), "none"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
