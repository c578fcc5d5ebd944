//go:build integration

package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idres/pkg/testutil/containers"
)

func TestRedisStore_SlidingWindow(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	require.NoError(t, rc.FlushAll(ctx))

	clock := time.Now()
	st := NewRedis(rc.Client)
	st.now = func() time.Time { return clock }

	for i := range 3 {
		res, err := st.Allow(ctx, "notify:a", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
		assert.Equal(t, 2-i, res.Remaining)
		clock = clock.Add(time.Second)
	}

	res, err := st.Allow(ctx, "notify:a", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	other, err := st.Allow(ctx, "notify:b", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)

	clock = clock.Add(time.Minute)
	res, err = st.Allow(ctx, "notify:a", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
