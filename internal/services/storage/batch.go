package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

const batchWorkers = 5

// DeleteAll removes keys concurrently and reports every failure in a single
// error. Keys that were deleted are returned either way.
func DeleteAll(ctx context.Context, b Backend, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}

	errs := make([]error, len(keys))

	numWorkers := batchWorkers
	if len(keys) < numWorkers {
		numWorkers = len(keys)
	}

	jobs := make(chan int, len(keys))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				errs[i] = b.Delete(ctx, keys[i])
			}
		}()
	}

	for i := range keys {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failed []string
	deleted := make([]string, 0, len(keys))

	for i, err := range errs {
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", keys[i], err))
		} else {
			deleted = append(deleted, keys[i])
		}
	}

	if len(failed) > 0 {
		return deleted, fmt.Errorf("failed to delete %d files: %s",
			len(failed), strings.Join(failed, "; "))
	}

	return deleted, nil
}
