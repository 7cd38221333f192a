package model

import (
	"runtime"
	"sync"
)

// forEachRow calls fn(i) for i in [0, n) split into contiguous chunks, one
// per GOMAXPROCS worker. fn must only write to row i's own output slot.
func forEachRow(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	rowsPerWorker := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
