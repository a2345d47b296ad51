// Package coarsetime serves a wall clock refreshed every Resolution.
//
// Sessions stamp every decoded command and compute idle deadlines from it;
// a few milliseconds of skew do not matter there and time.Now is avoided on
// the per-command path.
package coarsetime

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the refresh period of Now.
const Resolution = 50 * time.Millisecond

var (
	current atomic.Int64
	start   sync.Once
)

func run() {
	current.Store(time.Now().UnixNano())
	go func() {
		ticker := time.NewTicker(Resolution)
		for t := range ticker.C {
			current.Store(t.UnixNano())
		}
	}()
}

// Now returns the current time, at most Resolution old.
// The refresh goroutine starts on first use.
func Now() time.Time {
	start.Do(run)
	return time.Unix(0, current.Load())
}

// Deadline returns Now()+d, or the zero time when d <= 0 (no deadline).
func Deadline(d time.Duration) time.Time {
	if d <= 0 {
		return time.Time{}
	}
	return Now().Add(d)
}
