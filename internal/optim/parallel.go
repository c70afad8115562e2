package optim

import (
	"context"
	"runtime"
	"sync"

	"github.com/san-kum/linksim/internal/geom"
	"github.com/san-kum/linksim/internal/linkage"
)

// EvaluateParallel scores candidates in contiguous chunks, one chunk per
// worker, each worker on its own clone of lk. Scores come back in candidate
// order. workers <= 0 means one per CPU.
func EvaluateParallel(ctx context.Context, lk *linkage.Linkage, obj Objective, candidates [][]float64, init []geom.Point, workers int) ([]float64, error) {
	n := len(candidates)
	scores := make([]float64, n)
	if n == 0 {
		return scores, nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, n)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(lk *linkage.Linkage, start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if ctx.Err() != nil {
					return
				}
				scores[i] = obj(lk, candidates[i], init)
			}
		}(lk.Clone(), start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scores, nil
}
