package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	found, err := m.Get(ctx, "k", &record{})
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, m.Set(ctx, "k", record{Name: "a", Count: 2}))

	var got record
	found, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, record{Name: "a", Count: 2}, got)

	require.NoError(t, m.Remove(ctx, "k"))
	found, err = m.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, found)
}

// flakyStore works until failing is set, then rejects everything.
type flakyStore struct {
	inner   *MemoryStore
	failing bool
}

func (f *flakyStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if f.failing {
		return false, ErrUnavailable
	}
	return f.inner.Get(ctx, key, dest)
}

func (f *flakyStore) Set(ctx context.Context, key string, value any) error {
	if f.failing {
		return ErrUnavailable
	}
	return f.inner.Set(ctx, key, value)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if f.failing {
		return ErrUnavailable
	}
	return f.inner.Remove(ctx, key)
}

func TestFallbackStaysOnDurableWhileHealthy(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{inner: NewMemoryStore()}
	fb := NewFallbackStore(durable, zerolog.Nop())

	require.NoError(t, fb.Set(ctx, "k", "v"))
	require.False(t, fb.Degraded())

	var got string
	found, err := durable.inner.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v", got)
}

func TestFallbackDegradesAndKeepsSessionState(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{inner: NewMemoryStore()}
	fb := NewFallbackStore(durable, zerolog.Nop())

	require.NoError(t, fb.Set(ctx, "before", 1))

	durable.failing = true

	// the failing write degrades but does not surface an error
	require.NoError(t, fb.Set(ctx, "after", 2))
	require.True(t, fb.Degraded())

	// both the pre-degrade and post-degrade values remain readable
	var n int
	found, err := fb.Get(ctx, "before", &n)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 1, n)

	found, err = fb.Get(ctx, "after", &n)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, n)

	// the durable store is not touched once degraded
	durable.failing = false
	require.NoError(t, fb.Set(ctx, "later", 3))
	var unused int
	found, err = durable.inner.Get(ctx, "later", &unused)
	require.NoError(t, err)
	require.False(t, found)
}

func TestFallbackDegradesOnReadFailure(t *testing.T) {
	ctx := context.Background()
	durable := &flakyStore{inner: NewMemoryStore()}
	fb := NewFallbackStore(durable, zerolog.Nop())

	require.NoError(t, fb.Set(ctx, "k", "v"))
	durable.failing = true

	var got string
	found, err := fb.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, found, "mirrored value survives the degrade")
	require.Equal(t, "v", got)
	require.True(t, fb.Degraded())
}

func TestMemoryStoreRejectsUnencodableValue(t *testing.T) {
	m := NewMemoryStore()
	err := m.Set(context.Background(), "k", func() {})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnavailable))
}
