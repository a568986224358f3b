package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "shows", []string{"a", "b"}, time.Minute))

	var got []string
	found, err := c.Get(ctx, "shows", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"a", "b"}, got)

	now = now.Add(time.Minute)
	found, err = c.Get(ctx, "shows", &got)
	require.NoError(t, err)
	assert.False(t, found)
}
