package services

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter is a fixed-window admission counter shared by every outbound
// market data call in the process. It keeps the timestamps of recent calls and
// rejects a new call when the trailing window is already full. Rejected calls
// fail fast; there is no queuing or smoothing.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	now    func() time.Time
	calls  []time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records the attempt and admits it, or returns ErrRateLimited when the
// trailing window already holds limit calls. Check-and-record is a single
// critical section so concurrent callers cannot jointly exceed the budget.
func (l *RateLimiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	i := 0
	for i < len(l.calls) && !l.calls[i].After(cutoff) {
		i++
	}
	l.calls = l.calls[i:]

	if len(l.calls) >= l.limit {
		return fmt.Errorf("%w: %d calls in %s", ErrRateLimited, l.limit, l.window)
	}

	l.calls = append(l.calls, now)
	return nil
}
