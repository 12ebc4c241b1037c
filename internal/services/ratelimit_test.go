package services

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(limit int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	limiter := NewRateLimiter(limit, time.Second)
	limiter.now = clock.now
	return limiter, clock
}

func TestRateLimiter_RejectsBurstOverLimit(t *testing.T) {
	limiter, clock := newTestLimiter(30)

	for i := 0; i < 30; i++ {
		if err := limiter.Allow(); err != nil {
			t.Fatalf("call %d rejected: %v", i+1, err)
		}
		clock.advance(10 * time.Millisecond)
	}

	err := limiter.Allow()
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("call 31 = %v, want ErrRateLimited", err)
	}
}

func TestRateLimiter_AdmitsAfterWindowPasses(t *testing.T) {
	limiter, clock := newTestLimiter(30)

	for i := 0; i < 30; i++ {
		if err := limiter.Allow(); err != nil {
			t.Fatalf("call %d rejected: %v", i+1, err)
		}
	}
	if err := limiter.Allow(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("over-limit call = %v, want ErrRateLimited", err)
	}

	clock.advance(time.Second + time.Millisecond)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("call after window = %v, want admitted", err)
	}
}

func TestRateLimiter_RejectionDoesNotConsumeBudget(t *testing.T) {
	limiter, clock := newTestLimiter(2)

	limiter.Allow()
	limiter.Allow()
	for i := 0; i < 5; i++ {
		if err := limiter.Allow(); !errors.Is(err, ErrRateLimited) {
			t.Fatalf("rejection %d = %v, want ErrRateLimited", i, err)
		}
	}

	clock.advance(time.Second + time.Millisecond)
	if err := limiter.Allow(); err != nil {
		t.Fatalf("rejected calls extended the window: %v", err)
	}
}

func TestRateLimiter_ConcurrentCallersStayUnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(30)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := limiter.Allow(); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if admitted != 30 {
		t.Errorf("admitted = %d, want exactly 30", admitted)
	}
}
