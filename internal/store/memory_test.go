package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryKV_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "directory:taxonomy", "{}", 0))
	v, err := kv.Get(ctx, "directory:taxonomy")
	require.NoError(t, err)
	assert.Equal(t, "{}", v)

	require.NoError(t, kv.Delete(ctx, "directory:taxonomy"))
	_, err = kv.Get(ctx, "directory:taxonomy")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryKV_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	kv := NewMemoryKV()
	kv.now = func() time.Time { return now }

	require.NoError(t, kv.Set(ctx, "k", "v", 10*time.Second))

	now = now.Add(5 * time.Second)
	_, err := kv.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(6 * time.Second)
	_, err = kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
