package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docliq/booking-engine/internal/storage"
)

func TestPrefsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	p := LoadPrefs(ctx, store)
	require.Equal(t, DefaultFilters(), p.Filters())

	f := Filters{
		RadiusKm:   25,
		MinRating:  4.5,
		VideoOnly:  true,
		PublicOnly: true,
		Language:   "en",
		Sort:       SortRating,
	}
	require.NoError(t, p.SetFilters(ctx, f))
	require.NoError(t, p.SetQuery(ctx, "cardio"))
	require.NoError(t, p.SetCity(ctx, "Berlin"))

	// a fresh service over the same store restores the exact state
	reloaded := LoadPrefs(ctx, store)
	require.Equal(t, f, reloaded.Filters())
	require.Equal(t, "cardio", reloaded.Query())
	require.Equal(t, "Berlin", reloaded.City())
}

func TestClearFiltersRestoresDefaultsInOneStep(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	p := LoadPrefs(ctx, store)
	require.NoError(t, p.SetFilters(ctx, Filters{RadiusKm: 3, MinRating: 5, VideoOnly: true, Sort: SortDistance}))

	require.NoError(t, p.ClearFilters(ctx))
	require.Equal(t, DefaultFilters(), p.Filters())

	reloaded := LoadPrefs(ctx, store)
	require.Equal(t, DefaultFilters(), reloaded.Filters())
}

func TestPrefsSubscription(t *testing.T) {
	ctx := context.Background()
	p := LoadPrefs(ctx, storage.NewMemoryStore())

	calls := 0
	unsubscribe := p.Subscribe(func() { calls++ })

	require.NoError(t, p.SetQuery(ctx, "derma"))
	require.Equal(t, 1, calls)

	unsubscribe()
	require.NoError(t, p.SetQuery(ctx, "gp"))
	require.Equal(t, 1, calls)
}
