// waypoint | 2026
// ttl_test.go

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTL_GetOrCompute(t *testing.T) {
	c := NewTTL[int](10, time.Minute)

	calls := 0
	compute := func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)

	v, err = c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "second read must be served from cache")
}

func TestTTL_ComputeErrorNotCached(t *testing.T) {
	c := NewTTL[string](10, time.Minute)

	calls := 0
	compute := func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "ok", nil
	}

	_, err := c.GetOrCompute(context.Background(), "k", compute)
	require.Error(t, err)

	v, err := c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 2, calls)
}

func TestTTL_Invalidate(t *testing.T) {
	c := NewTTL[int](10, time.Minute)

	calls := 0
	compute := func(ctx context.Context) (int, error) {
		calls++
		return calls, nil
	}

	v, err := c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	c.Invalidate("k")

	v, err = c.GetOrCompute(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "invalidated entry must be recomputed")
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL[int](10, 20*time.Millisecond)

	c.Set("k", 7)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 7, v)

	time.Sleep(50 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok, "entry must expire after the TTL window")
}

func TestTTL_MinimumCapacity(t *testing.T) {
	c := NewTTL[int](0, time.Minute)
	c.Set("a", 1)
	assert.Equal(t, 1, c.Len())
}
