package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task is one processed input with its result. Err is set when the
// process function failed for this input; other tasks are unaffected.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc processes a single input, typically decoding one game
// file into its record.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool fans inputs out over a fixed number of goroutines. Results come
// back in input order, so decoded records stay aligned with the sorted
// file listing they were read from.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a pool with the given concurrency.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool and returns one Task per
// input, in input order. Cancelling the context stops the pool early;
// tasks never started keep their zero value.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	inputCh := make(chan int, len(inputs))

	var wg sync.WaitGroup

	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{
						Input:  inputs[idx],
						Result: result,
						Err:    err,
					}
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}

enqueue:
	for i := range inputs {
		select {
		case <-ctx.Done():
			break enqueue
		case inputCh <- i:
		}
	}
	close(inputCh)

	wg.Wait()

	failures := 0
	for i := range results {
		if results[i].Err != nil {
			failures++
		}
	}
	log.Debug().
		Int("inputs", len(inputs)).
		Int("failed", failures).
		Int("workers", p.workers).
		Msg("Pool drained")
	return results
}

// Batch splits items into consecutive slices of at most batchSize.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 1
	}
	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
