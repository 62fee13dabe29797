package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docliq/booking-engine/internal/directory"
)

func doctor(id, specialty, city string) directory.Doctor {
	return directory.Doctor{
		ID:            id,
		Name:          "Dr. " + id,
		Specialty:     specialty,
		City:          city,
		DistanceKm:    2,
		Rating:        4.5,
		Languages:     []string{"de"},
		AcceptsPublic: true,
	}
}

func TestEmptyQueryAndCityMatchAll(t *testing.T) {
	pool := []directory.Doctor{
		doctor("a", "Cardiology", "Berlin"),
		doctor("b", "Dermatology", "Hamburg"),
	}

	res := FilterDoctors(pool, "", "", directory.InsurancePublic, DefaultFilters())
	require.Len(t, res.Visible, 2)
	require.Empty(t, res.BlockedByInsurance)
}

func TestSubstringSpecialtyMatch(t *testing.T) {
	pool := []directory.Doctor{
		doctor("a", "Cardiology", "Berlin"),
		doctor("b", "Dermatology", "Berlin"),
	}

	res := FilterDoctors(pool, "Cardio", "", directory.InsurancePublic, DefaultFilters())
	require.Len(t, res.Visible, 1)
	require.Equal(t, "a", res.Visible[0].ID)
}

func TestAbbreviationSynonyms(t *testing.T) {
	pool := []directory.Doctor{
		doctor("ent", "Otolaryngology", "Berlin"),
		doctor("gp", "General Practice", "Berlin"),
		doctor("derm", "Dermatology", "Berlin"),
	}

	tests := []struct {
		query string
		want  string
	}{
		{"hno", "ent"},
		{"ENT", "ent"},
		{"gp", "gp"},
		{"derma", "derm"},
	}
	for _, tc := range tests {
		res := FilterDoctors(pool, tc.query, "", directory.InsurancePublic, DefaultFilters())
		require.Len(t, res.Visible, 1, "query %q", tc.query)
		require.Equal(t, tc.want, res.Visible[0].ID, "query %q", tc.query)
	}
}

func TestPublicOnlySplitsBlockedDoctors(t *testing.T) {
	private := doctor("priv", "Cardiology", "Berlin")
	private.AcceptsPublic = false
	pool := []directory.Doctor{doctor("pub", "Cardiology", "Berlin"), private}

	f := DefaultFilters()
	f.PublicOnly = true

	res := FilterDoctors(pool, "", "", directory.InsurancePublic, f)
	require.Len(t, res.Visible, 1)
	require.Equal(t, "pub", res.Visible[0].ID)
	require.Len(t, res.BlockedByInsurance, 1)
	require.Equal(t, "priv", res.BlockedByInsurance[0].ID)
}

func TestPublicOnlyIgnoredForPrivatePatients(t *testing.T) {
	private := doctor("priv", "Cardiology", "Berlin")
	private.AcceptsPublic = false
	pool := []directory.Doctor{private}

	f := DefaultFilters()
	f.PublicOnly = true

	res := FilterDoctors(pool, "", "", directory.InsurancePrivate, f)
	require.Len(t, res.Visible, 1)
	require.Empty(t, res.BlockedByInsurance)
}

func TestNumericAndFlagFilters(t *testing.T) {
	far := doctor("far", "Cardiology", "Berlin")
	far.DistanceKm = 15
	lowRated := doctor("low", "Cardiology", "Berlin")
	lowRated.Rating = 3
	noVideo := doctor("novid", "Cardiology", "Berlin")
	keep := doctor("keep", "Cardiology", "Berlin")
	keep.VideoConsult = true
	keep.Languages = []string{"de", "en"}

	f := DefaultFilters()
	f.MinRating = 4
	f.VideoOnly = true
	f.Language = "en"

	res := FilterDoctors([]directory.Doctor{far, lowRated, noVideo, keep}, "", "", directory.InsurancePublic, f)
	require.Len(t, res.Visible, 1)
	require.Equal(t, "keep", res.Visible[0].ID)
}

func TestCityMatchIsCaseInsensitiveSubstring(t *testing.T) {
	pool := []directory.Doctor{
		doctor("a", "Cardiology", "Berlin"),
		doctor("b", "Cardiology", "Hamburg"),
	}

	res := FilterDoctors(pool, "", "berl", directory.InsurancePublic, DefaultFilters())
	require.Len(t, res.Visible, 1)
	require.Equal(t, "a", res.Visible[0].ID)
}
