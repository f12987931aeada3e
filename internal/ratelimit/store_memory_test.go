package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	newStore := func(now *time.Time) *InMemoryStore {
		s := NewInMemoryStore()
		s.now = func() time.Time { return *now }
		return s
	}

	t.Run("admits up to the limit then rejects", func(t *testing.T) {
		now := base
		s := newStore(&now)

		for i := range 3 {
			res, err := s.Allow(ctx, "k", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, 2-i, res.Remaining)
			now = now.Add(time.Second)
		}

		res, err := s.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, base.Add(time.Minute), res.ResetAt)
		assert.Equal(t, 57, res.RetryAfter)
	})

	t.Run("window slides", func(t *testing.T) {
		now := base
		s := newStore(&now)

		_, _ = s.Allow(ctx, "k", 1, time.Minute)
		res, _ := s.Allow(ctx, "k", 1, time.Minute)
		assert.False(t, res.Allowed)

		now = base.Add(time.Minute + time.Millisecond)
		res, err := s.Allow(ctx, "k", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("keys are independent", func(t *testing.T) {
		now := base
		s := newStore(&now)

		_, _ = s.Allow(ctx, "a", 1, time.Minute)
		res, err := s.Allow(ctx, "b", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})
}
