// Package parallel provides the chunked worker fan-out used for the
// embarrassingly parallel array evaluations: grid cells and per-draw target
// log-densities. Work items are independent, so the only synchronization is
// the final WaitGroup join.
package parallel

import (
	"runtime"
	"sync"
)

// ForEach splits [0, n) into contiguous chunks and runs fn(start, end) for
// each chunk across at most workers goroutines. A workers value <= 0 selects
// GOMAXPROCS. Small inputs run inline on the calling goroutine.
//
// fn must not retain or share mutable state across chunks; each chunk writes
// only its own index range.
func ForEach(n, workers int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
