package search

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/docliq/booking-engine/internal/cache"
	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/connectivity"
	"github.com/docliq/booking-engine/internal/directory"
	"github.com/docliq/booking-engine/internal/slots"
	"github.com/docliq/booking-engine/internal/storage"
)

var engineParams = slots.Params{
	Days:     5,
	OpenHour: 9,
	LastHour: 17,
	Cadence:  30 * time.Minute,
}

func newEngine(t *testing.T, doctors []directory.Doctor) (*Engine, *connectivity.ManualSignal, *clock.Fake) {
	t.Helper()
	clk := clock.NewFake(time.Date(2026, 9, 1, 8, 0, 0, 0, time.Local))
	store := storage.NewMemoryStore()
	signal := connectivity.NewManualSignal(true)
	results := cache.NewResultsCache(store, clk, 5*time.Minute, zerolog.Nop())
	dir := directory.NewFixtureProvider(doctors, []directory.PatientProfile{patient()})
	return NewEngine(dir, results, signal, clk, engineParams, zerolog.Nop()), signal, clk
}

func patient() directory.PatientProfile {
	return directory.PatientProfile{ID: "p1", Name: "Pat", Insurance: directory.InsurancePublic}
}

func engineDoctors() []directory.Doctor {
	return []directory.Doctor{
		{ID: "d1", Specialty: "Cardiology", City: "Berlin", DistanceKm: 2, Rating: 4.8, AcceptsPublic: true, SlotMinutes: 30},
		{ID: "d2", Specialty: "Cardiology", City: "Berlin", DistanceKm: 5, Rating: 4.2, AcceptsPublic: true, SlotMinutes: 15},
		{ID: "d3", Specialty: "Dermatology", City: "Berlin", DistanceKm: 1, Rating: 4.0, AcceptsPublic: true, SlotMinutes: 30},
	}
}

func TestOnlineSearchGeneratesSlotsAndCaches(t *testing.T) {
	e, _, _ := newEngine(t, engineDoctors())
	ctx := context.Background()

	res, err := e.Search(ctx, "cardio", "", patient(), DefaultFilters())
	require.NoError(t, err)
	require.False(t, res.FromCache)
	require.False(t, res.Indeterminate)
	require.Len(t, res.Visible, 2)
	for _, d := range res.Visible {
		require.NotEmpty(t, res.SlotsByDoctor[d.ID])
	}
}

func TestOfflineReplayReproducesOnlineRun(t *testing.T) {
	e, signal, _ := newEngine(t, engineDoctors())
	ctx := context.Background()

	online, err := e.Search(ctx, "", "", patient(), DefaultFilters())
	require.NoError(t, err)

	signal.SetOnline(false)
	offline, err := e.Search(ctx, "", "", patient(), DefaultFilters())
	require.NoError(t, err)

	require.True(t, offline.FromCache)
	require.False(t, offline.Indeterminate)
	require.Equal(t, ids(online.Visible), ids(offline.Visible))
	require.Equal(t, online.SlotsByDoctor, offline.SlotsByDoctor)
}

func TestOfflineReplayKeepsInsuranceBlockedDoctors(t *testing.T) {
	private := directory.Doctor{ID: "d4", Specialty: "Cardiology", City: "Berlin", DistanceKm: 3, Rating: 4.1, AcceptsPublic: false, SlotMinutes: 30}
	e, signal, _ := newEngine(t, append(engineDoctors(), private))
	ctx := context.Background()

	f := DefaultFilters()
	f.PublicOnly = true

	online, err := e.Search(ctx, "cardio", "", patient(), f)
	require.NoError(t, err)
	require.Equal(t, []string{"d4"}, ids(online.BlockedByInsurance))

	signal.SetOnline(false)
	offline, err := e.Search(ctx, "cardio", "", patient(), f)
	require.NoError(t, err)

	require.True(t, offline.FromCache)
	require.Equal(t, ids(online.BlockedByInsurance), ids(offline.BlockedByInsurance),
		"the insurance empty-state explanation must survive the replay")
}

func TestOfflineWithoutCacheIsIndeterminate(t *testing.T) {
	e, signal, _ := newEngine(t, engineDoctors())
	ctx := context.Background()

	signal.SetOnline(false)
	res, err := e.Search(ctx, "", "", patient(), DefaultFilters())
	require.NoError(t, err)

	require.True(t, res.Indeterminate, "no cache offline must be distinguishable from no matches")
	require.Empty(t, res.Visible)
}

func TestOfflineWithExpiredCacheIsIndeterminate(t *testing.T) {
	e, signal, clk := newEngine(t, engineDoctors())
	ctx := context.Background()

	_, err := e.Search(ctx, "", "", patient(), DefaultFilters())
	require.NoError(t, err)

	clk.Advance(5*time.Minute + time.Second)
	signal.SetOnline(false)

	res, err := e.Search(ctx, "", "", patient(), DefaultFilters())
	require.NoError(t, err)
	require.True(t, res.Indeterminate)
}

func TestSlotsForDoctorPrefersMatchingWeekCache(t *testing.T) {
	e, _, _ := newEngine(t, engineDoctors())
	ctx := context.Background()

	res, err := e.Search(ctx, "cardio", "", patient(), DefaultFilters())
	require.NoError(t, err)

	d := engineDoctors()[0]
	cached, err := e.SlotsForDoctor(ctx, d, res.WeekStart)
	require.NoError(t, err)
	require.Equal(t, res.SlotsByDoctor[d.ID], cached)

	// a different week regenerates deterministically instead
	nextWeek, err := e.SlotsForDoctor(ctx, d, "2026-09-07")
	require.NoError(t, err)
	regenerated, err := slots.Generate(d.ID, "2026-09-07", slots.Params{
		Days:     engineParams.Days,
		OpenHour: engineParams.OpenHour,
		LastHour: engineParams.LastHour,
		Cadence:  engineParams.Cadence,
		Minutes:  d.SlotMinutes,
	})
	require.NoError(t, err)
	require.Equal(t, regenerated, nextWeek)
}

func TestSoonestSortNeverTreatsMissingAsSoonest(t *testing.T) {
	// one doctor whose generated week is empty must sort after doctors
	// with slots; force that with a tiny window where hashing may yield
	// nothing for some doctor while others have slots
	e, _, _ := newEngine(t, engineDoctors())
	ctx := context.Background()

	f := DefaultFilters()
	f.Sort = SortSoonest
	res, err := e.Search(ctx, "", "", patient(), f)
	require.NoError(t, err)

	seenEmpty := false
	for i, d := range res.Visible {
		if len(res.SlotsByDoctor[d.ID]) == 0 {
			seenEmpty = true
			continue
		}
		require.False(t, seenEmpty, "doctor with slots found after doctor without at index %d", i)
	}
}
