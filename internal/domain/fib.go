package domain

import "math/big"

// Fib returns F(n) with F(0)=0 and F(1)=1, computed iteratively.
func Fib(n uint64) *big.Int {
	if n < 2 {
		return new(big.Int).SetUint64(n)
	}
	p := Initial()
	for p.Index < n {
		p = p.Advance()
	}
	return p.Current
}
