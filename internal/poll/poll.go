// Package poll provides a bounded wall-clock retry loop for operations
// whose result may not be available yet.
package poll

import (
	"context"
	"time"
)

// Probe is a single attempt at an operation. A false result means "not
// yet available" and will be retried; a non-nil error stops the loop
// immediately and is never retried.
type Probe func(ctx context.Context) (bool, error)

// Until invokes probe until it succeeds or timeout of wall-clock time
// has elapsed since the first attempt, suspending for interval between
// attempts. Exhausting the timeout is a normal outcome, reported as
// (false, nil). Cancelling ctx interrupts the wait and returns ctx.Err().
func Until(ctx context.Context, timeout, interval time.Duration, probe Probe) (bool, error) {
	start := time.Now()
	for {
		ok, err := probe(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Since(start) >= timeout {
			return false, nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false, ctx.Err()
		case <-timer.C:
		}
	}
}
