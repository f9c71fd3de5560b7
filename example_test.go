package fibcalc_test

import (
	"context"
	"fmt"
	"os"

	"github.com/bft-labs/fibcalc"
)

func ExampleFib() {
	fmt.Println(fibcalc.Fib(10))
	fmt.Println(fibcalc.Fib(100))
	// Output:
	// 55
	// 354224848179261915075
}

// ExampleCompute shows an interrupted-and-resumed style run: the second
// call picks up the snapshots written by the first.
func ExampleCompute() {
	dir, err := os.MkdirTemp("", "fibcalc-example")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	if _, err := fibcalc.Compute(ctx, 20, fibcalc.WithCheckpointDir(dir)); err != nil {
		fmt.Println(err)
		return
	}

	v, err := fibcalc.Compute(ctx, 30,
		fibcalc.WithCheckpointDir(dir),
		fibcalc.WithFormat("yaml"),
		fibcalc.WithRetention(2),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(v)

	latest, err := fibcalc.LoadLatest(ctx, dir)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(latest.Index, latest.Current)
	// Output:
	// 832040
	// 30 832040
}
