package concurrency

import (
	"context"
	"errors"
	"sync"
)

// Task is one independent unit of work.
type Task func(ctx context.Context) error

// FanOut runs every task in its own goroutine and waits for all of them.
// Tasks are not cancelled when a sibling fails; the returned error joins
// every failure in task order.
func FanOut(ctx context.Context, tasks ...Task) error {
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		if task == nil {
			continue
		}
		wg.Add(1)
		go func(idx int, fn Task) {
			defer wg.Done()
			errs[idx] = fn(ctx)
		}(i, task)
	}
	wg.Wait()

	return errors.Join(errs...)
}
