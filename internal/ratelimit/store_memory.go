package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery bounds how often Allow scans for idle keys.
const sweepEvery = time.Minute

type bucket struct {
	stamps []time.Time
	window time.Duration
}

// InMemory is a single-process sliding window store. Keys whose window has
// fully elapsed are dropped, so memory follows the set of active callers.
type InMemory struct {
	mu        sync.Mutex
	now       func() time.Time
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
}

func (s *InMemory) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{}
		s.buckets[key] = b
	}
	b.window = window
	b.stamps = prune(b.stamps, now.Add(-window))

	if len(b.stamps) >= limit {
		return Result{Allowed: false, Limit: limit, Remaining: 0, ResetAt: b.stamps[0].Add(window)}, nil
	}
	b.stamps = append(b.stamps, now)
	return Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(b.stamps),
		ResetAt:   b.stamps[0].Add(window),
	}, nil
}

// Len reports how many keys are tracked.
func (s *InMemory) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// sweep deletes keys with no stamp left inside their window. Callers hold s.mu.
func (s *InMemory) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	s.lastSweep = now
	for key, b := range s.buckets {
		if len(prune(b.stamps, now.Add(-b.window))) == 0 {
			delete(s.buckets, key)
		}
	}
}

// prune drops timestamps at or before cutoff. Stamps are in insertion order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	return stamps[i:]
}
