package domain

import (
	"fmt"
	"math/big"
)

// Progress is the position reached by the iterative calculator.
// Prev and Current hold F(Index-1) and F(Index).
type Progress struct {
	Index   uint64
	Prev    *big.Int
	Current *big.Int
}

// Initial returns the starting point of the loop: index 1 with priors (0, 1).
func Initial() Progress {
	return Progress{Index: 1, Prev: big.NewInt(0), Current: big.NewInt(1)}
}

// Validate checks the structural invariants of p.
// It does not verify that the priors are actually Fibonacci numbers.
func (p Progress) Validate() error {
	if p.Index == 0 {
		return fmt.Errorf("%w: index must be at least 1", ErrInvalidProgress)
	}
	if p.Prev == nil || p.Current == nil {
		return fmt.Errorf("%w: missing priors", ErrInvalidProgress)
	}
	if p.Prev.Sign() < 0 || p.Current.Sign() < 0 {
		return fmt.Errorf("%w: negative priors", ErrInvalidProgress)
	}
	if p.Index >= 2 && p.Prev.Cmp(p.Current) > 0 {
		return fmt.Errorf("%w: priors out of order", ErrInvalidProgress)
	}
	return nil
}

// Advance moves p one step forward: (a, b) <- (b, a+b).
// The receiver's big.Int values are never mutated; snapshots may still
// reference them.
func (p Progress) Advance() Progress {
	return Progress{
		Index:   p.Index + 1,
		Prev:    p.Current,
		Current: new(big.Int).Add(p.Prev, p.Current),
	}
}

// Equal reports whether p and o hold the same index and priors.
func (p Progress) Equal(o Progress) bool {
	if p.Index != o.Index {
		return false
	}
	return cmpInt(p.Prev, o.Prev) && cmpInt(p.Current, o.Current)
}

func (p Progress) String() string {
	return fmt.Sprintf("%d:(%v,%v)", p.Index, p.Prev, p.Current)
}

func cmpInt(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Cmp(b) == 0
}
