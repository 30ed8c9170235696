package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLimiter_BurstThenDeny(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(3, time.Hour)
	defer l.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = l.Allow(ctx, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, ok, "other keys have their own bucket")
}

func TestLocalLimiter_EvictIdle(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(1, time.Minute)
	defer l.Close()

	_, _ = l.Allow(context.Background(), "k")
	l.evictIdle(time.Now().Add(time.Hour))

	_, found := l.visitors.Load("k")
	assert.False(t, found)
}

func TestLocalLimiter_CloseTwice(t *testing.T) {
	t.Parallel()

	l := NewLocalLimiter(1, time.Minute)
	l.Close()
	assert.NotPanics(t, l.Close)
}
