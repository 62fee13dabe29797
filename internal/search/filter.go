package search

import (
	"strings"

	"github.com/docliq/booking-engine/internal/directory"
)

// Abbreviation groups: a query matching any member of a group matches a
// specialty matching any other member. Covers the national short forms
// patients actually type.
var specialtySynonyms = [][]string{
	{"gp", "general practice", "family medicine"},
	{"ent", "hno", "otolaryngology", "ear nose throat"},
	{"derma", "dermatology", "skin"},
	{"ortho", "orthopedics"},
	{"gyn", "ob-gyn", "gynecology"},
	{"psych", "psychiatry", "psychotherapy"},
	{"peds", "pediatrics"},
}

// FilterResult separates doctors excluded solely by the public-insurance
// toggle from the visible set, so an empty result can be explained instead
// of rendered as a bare "no matches".
type FilterResult struct {
	Visible            []directory.Doctor
	BlockedByInsurance []directory.Doctor
}

// FilterDoctors applies specialty/city matching and the filter set.
// Empty query and city match everything. Insurance exclusion only applies
// when the searcher holds public insurance and opted into "public only".
func FilterDoctors(all []directory.Doctor, specialtyQuery, city string, insurance directory.InsuranceClass, f Filters) FilterResult {
	insuranceActive := insurance == directory.InsurancePublic && f.PublicOnly

	var res FilterResult
	for _, d := range all {
		if !matchesSpecialty(specialtyQuery, d.Specialty) {
			continue
		}
		if city != "" && !strings.Contains(strings.ToLower(d.City), strings.ToLower(strings.TrimSpace(city))) {
			continue
		}
		if f.RadiusKm > 0 && d.DistanceKm > f.RadiusKm {
			continue
		}
		if d.Rating < f.MinRating {
			continue
		}
		if f.VideoOnly && !d.VideoConsult {
			continue
		}
		if f.Language != "" && !hasLanguage(d, f.Language) {
			continue
		}
		if insuranceActive && !d.AcceptsPublic {
			res.BlockedByInsurance = append(res.BlockedByInsurance, d)
			continue
		}
		res.Visible = append(res.Visible, d)
	}
	return res
}

func matchesSpecialty(query, specialty string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	s := strings.ToLower(specialty)
	if strings.Contains(s, q) {
		return true
	}
	for _, group := range specialtySynonyms {
		if !containsTerm(group, q) {
			continue
		}
		for _, term := range group {
			if strings.Contains(s, term) {
				return true
			}
		}
	}
	return false
}

func containsTerm(group []string, q string) bool {
	for _, term := range group {
		if term == q {
			return true
		}
	}
	return false
}

func hasLanguage(d directory.Doctor, lang string) bool {
	for _, l := range d.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}
