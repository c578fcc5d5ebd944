package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

const (
	testLimit  = 3
	testWindow = time.Minute
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	clock time.Time
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.clock = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory()
	s.store.now = func() time.Time { return s.clock }
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) allow(key string) Result {
	res, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	return res
}

func (s *InMemoryStoreSuite) TestAllowUpToLimit() {
	first := s.allow("k")
	s.True(first.Allowed)
	s.Equal(testLimit-1, first.Remaining)
	s.Equal(s.clock.Add(testWindow), first.ResetAt)

	s.allow("k")
	last := s.allow("k")
	s.True(last.Allowed)
	s.Equal(0, last.Remaining)

	denied := s.allow("k")
	s.False(denied.Allowed)
	s.Equal(testLimit, denied.Limit)
}

func (s *InMemoryStoreSuite) TestKeysAreIndependent() {
	for range testLimit {
		s.allow("a")
	}
	s.False(s.allow("a").Allowed)
	s.True(s.allow("b").Allowed)
}

func (s *InMemoryStoreSuite) TestWindowSlides() {
	s.allow("k")
	s.clock = s.clock.Add(30 * time.Second)
	s.allow("k")
	s.allow("k")
	s.False(s.allow("k").Allowed)

	// The first request leaves the window; one slot frees up.
	s.clock = s.clock.Add(30 * time.Second)
	res := s.allow("k")
	s.True(res.Allowed)
	s.Equal(0, res.Remaining)
	s.False(s.allow("k").Allowed)
}

func (s *InMemoryStoreSuite) TestDeniedResetIsOldestPlusWindow() {
	start := s.clock
	for range testLimit {
		s.allow("k")
		s.clock = s.clock.Add(time.Second)
	}
	res := s.allow("k")
	s.False(res.Allowed)
	s.Equal(start.Add(testWindow), res.ResetAt)
	s.Equal(57, res.RetryAfter(s.clock))
}

func (s *InMemoryStoreSuite) TestIdleKeysAreSwept() {
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		s.allow("profile:ip:" + ip)
	}
	s.Equal(3, s.store.Len())

	s.clock = s.clock.Add(45 * time.Second)
	s.allow("profile:ip:10.0.0.1")

	// .2 and .3 have left their window; the sweep interval has passed.
	s.clock = s.clock.Add(50 * time.Second)
	s.allow("profile:ip:10.0.0.4")
	s.Equal(2, s.store.Len())

	res := s.allow("profile:ip:10.0.0.2")
	s.True(res.Allowed)
	s.Equal(testLimit-1, res.Remaining, "swept key starts from an empty window")
	s.Equal(3, s.store.Len())
}

func (s *InMemoryStoreSuite) TestKeyInsideItsWindowSurvivesSweep() {
	long := 2 * sweepEvery
	_, err := s.store.Allow(s.ctx, "export:ops", testLimit, long)
	s.Require().NoError(err)

	s.clock = s.clock.Add(sweepEvery)
	res, err := s.store.Allow(s.ctx, "export:ops", testLimit, long)
	s.Require().NoError(err)
	s.Equal(testLimit-2, res.Remaining, "first request still counted")
	s.Equal(1, s.store.Len())
}

func TestClassEnabled(t *testing.T) {
	assert.True(t, Class{Name: "export", Requests: 1, Window: time.Second}.Enabled())
	assert.False(t, Class{Name: "export", Requests: 0, Window: time.Second}.Enabled())
	assert.False(t, Class{Name: "export", Requests: 1}.Enabled())
}
