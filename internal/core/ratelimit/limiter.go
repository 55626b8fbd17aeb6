// Package ratelimit provides the sliding-window throttle shared by every
// provider-bound caller (ingestion batches, search queries, chat turns).
//
// The limiter never refuses a request. When the window is full it delays the
// caller until the oldest recorded request ages out, trading latency for
// quota compliance.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter bounds outgoing provider requests to MaxRequests per rolling
// Window. The window is maintained lazily: every public operation prunes
// expired timestamps before reading, so no background timer is needed and
// the limiter stays allocation-free between calls.
//
// Construct one limiter per process and hand it to every pipeline that
// issues quota-consuming requests.
type Limiter struct {
	MaxRequests int
	Window      time.Duration

	// Clock overrides the time source. Defaults to time.Now, whose
	// monotonic reading keeps pruning stable across wall-clock steps.
	Clock func() time.Time

	// Sleep overrides the blocking wait. The default honors context
	// cancellation.
	Sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	stamps []time.Time
}

// Status is a snapshot of the limiter taken under a single prune pass.
type Status struct {
	MaxRequests       int            `json:"max_requests"`
	Window            time.Duration  `json:"time_window"`
	CurrentRequests   int            `json:"current_requests"`
	RemainingRequests int            `json:"remaining_requests"`
	ResetIn           *time.Duration `json:"reset_time,omitempty"`
	CanMakeRequest    bool           `json:"can_make_request"`
}

// New returns a limiter admitting maxRequests per window. Non-positive
// arguments fall back to one request per minute.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{MaxRequests: maxRequests, Window: window}
}

// CanMakeRequest reports whether a request would be admitted right now.
// It prunes expired timestamps but records nothing.
func (l *Limiter) CanMakeRequest() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	return len(l.stamps) < l.MaxRequests
}

// WaitIfNeeded blocks until the window has capacity and returns how long it
// waited. The wait duration is computed in a short critical section; the
// lock is released before sleeping so concurrent callers can keep pruning,
// recording, and reading while this one waits.
func (l *Limiter) WaitIfNeeded(ctx context.Context) (time.Duration, error) {
	l.mu.Lock()
	now := l.now()
	l.prune(now)
	if len(l.stamps) < l.MaxRequests {
		l.mu.Unlock()
		return 0, nil
	}
	wait := l.stamps[0].Add(l.Window).Sub(now)
	l.mu.Unlock()

	if wait <= 0 {
		return 0, nil
	}
	if err := l.doSleep(ctx, wait); err != nil {
		return 0, err
	}
	return wait, nil
}

// RecordRequest appends the current instant to the window. Call it after
// CanMakeRequest or WaitIfNeeded has decided admission is appropriate.
func (l *Limiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stamps = append(l.stamps, l.now())
}

// RemainingRequests returns how many requests the current window still
// admits, never negative.
func (l *Limiter) RemainingRequests() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(l.now())
	remaining := l.MaxRequests - len(l.stamps)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// ResetTime returns the time until the oldest recorded request expires and
// frees one slot. The second result is false when the window is empty.
func (l *Limiter) ResetTime() (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)
	if len(l.stamps) == 0 {
		return 0, false
	}
	reset := l.stamps[0].Add(l.Window).Sub(now)
	if reset < 0 {
		reset = 0
	}
	return reset, true
}

// Status returns a consistent snapshot: all fields derive from one prune
// pass under one lock hold, with no interleaved mutation between sub-reads.
func (l *Limiter) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	st := Status{
		MaxRequests:     l.MaxRequests,
		Window:          l.Window,
		CurrentRequests: len(l.stamps),
	}
	st.RemainingRequests = l.MaxRequests - st.CurrentRequests
	if st.RemainingRequests < 0 {
		st.RemainingRequests = 0
	}
	if len(l.stamps) > 0 {
		reset := l.stamps[0].Add(l.Window).Sub(now)
		if reset < 0 {
			reset = 0
		}
		st.ResetIn = &reset
	}
	st.CanMakeRequest = st.RemainingRequests > 0
	return st
}

// Acquire is the admission contract used by callers: wait for a slot if the
// window is full, then record the request. It returns how long the caller
// waited. The only error is context cancellation during the wait.
//
// Admission is optimistic. Waits are sized to free exactly one slot, and
// each waiter records on waking, so several callers waking from the same
// wait can briefly overshoot MaxRequests. The overshoot is bounded by the
// number of concurrent waiters and averages out across the full window.
func (l *Limiter) Acquire(ctx context.Context) (time.Duration, error) {
	var waited time.Duration
	if !l.CanMakeRequest() {
		d, err := l.WaitIfNeeded(ctx)
		if err != nil {
			return 0, err
		}
		waited = d
	}
	l.RecordRequest()
	return waited, nil
}

// prune drops timestamps at or beyond window age, oldest first. Entries
// exactly at the boundary are expired: the window is half-open,
// (now-Window, now]. Callers must hold mu.
func (l *Limiter) prune(now time.Time) {
	cutoff := now.Add(-l.Window)
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

func (l *Limiter) now() time.Time {
	if l.Clock != nil {
		return l.Clock()
	}
	return time.Now()
}

func (l *Limiter) doSleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
