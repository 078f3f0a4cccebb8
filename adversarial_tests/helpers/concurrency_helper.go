package helpers

import (
	"fmt"
	"runtime"
	"sync"
	"time"
)

// GoroutineSnapshot captures the goroutine count at a point in time
type GoroutineSnapshot struct {
	Count     int
	Timestamp time.Time
}

// TakeGoroutineSnapshot captures current goroutine count
func TakeGoroutineSnapshot() *GoroutineSnapshot {
	return &GoroutineSnapshot{
		Count:     runtime.NumGoroutine(),
		Timestamp: time.Now(),
	}
}

// WaitForGoroutineCleanup waits until the goroutine count is back within
// tolerance of before, forcing GC between checks.
func WaitForGoroutineCleanup(before *GoroutineSnapshot, maxWait time.Duration, tolerance int) error {
	deadline := time.Now().Add(maxWait)
	for {
		current := runtime.NumGoroutine()
		if current-before.Count <= tolerance {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("goroutine leak: started with %d, still %d after %v (tolerance %d)",
				before.Count, current, maxWait, tolerance)
		}
		runtime.GC()
		time.Sleep(50 * time.Millisecond)
	}
}

// CoordinatedStart runs numOps operations that all begin at the same moment
// and returns every error they produced.
func CoordinatedStart(numOps int, op func(id int) error) []error {
	start := make(chan struct{})
	errs := make(chan error, numOps)

	var wg sync.WaitGroup
	wg.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(id int) {
			defer wg.Done()
			<-start
			if err := op(id); err != nil {
				errs <- err
			}
		}(i)
	}

	close(start)
	wg.Wait()
	close(errs)

	var out []error
	for err := range errs {
		out = append(out, err)
	}
	return out
}
