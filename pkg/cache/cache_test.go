package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID    uint    `json:"id"`
	Price float64 `json:"price"`
}

func TestMemoryRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "product:1", item{ID: 1, Price: 2.5}, time.Minute))

	var got item
	assert.True(t, m.Get(ctx, "product:1", &got))
	assert.Equal(t, item{ID: 1, Price: 2.5}, got)

	now = now.Add(2 * time.Minute)
	assert.False(t, m.Get(ctx, "product:1", &got))
}

func TestMemoryDel(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Set(ctx, "product:2", item{ID: 2}, 0))
	require.NoError(t, m.Del(ctx, "product:2", "product:3"))

	var got item
	assert.False(t, m.Get(ctx, "product:2", &got))
}

func TestOpenFallsBackToNop(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: "none"})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, s)

	s, err = Open(ctx, Options{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	s, err = Open(ctx, Options{Driver: "redis", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
	assert.IsType(t, Nop{}, s)
}

func TestMemoryAddNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	added, err := m.Add(ctx, "product:1", item{ID: 1, Price: 1}, time.Minute)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = m.Add(ctx, "product:1", item{ID: 1, Price: 9}, time.Minute)
	require.NoError(t, err)
	assert.False(t, added)

	var got item
	require.True(t, m.Get(ctx, "product:1", &got))
	assert.Equal(t, 1.0, got.Price)
}

func TestMemoryInvalidateBlocksFillsUntilHoldExpires(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Unix(1_700_000_000, 0)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "product:1", item{ID: 1, Price: 1}, time.Minute))
	require.NoError(t, m.Invalidate(ctx, "product:1", 5*time.Second))

	var got item
	assert.False(t, m.Get(ctx, "product:1", &got))

	added, err := m.Add(ctx, "product:1", item{ID: 1, Price: 1}, time.Minute)
	require.NoError(t, err)
	assert.False(t, added, "stale fill must not replace the marker")

	now = now.Add(6 * time.Second)
	added, err = m.Add(ctx, "product:1", item{ID: 1, Price: 2}, time.Minute)
	require.NoError(t, err)
	assert.True(t, added)
	require.True(t, m.Get(ctx, "product:1", &got))
	assert.Equal(t, 2.0, got.Price)
}

type closingStore struct {
	Nop
	closed bool
}

func (c *closingStore) Close() error {
	c.closed = true
	return nil
}

func TestClose(t *testing.T) {
	s := &closingStore{}
	require.NoError(t, Close(s))
	assert.True(t, s.closed)

	assert.NoError(t, Close(NewMemory()))
	assert.NoError(t, Close(Nop{}))
}
