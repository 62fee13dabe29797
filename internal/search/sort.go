package search

import (
	"sort"
	"time"

	"github.com/docliq/booking-engine/internal/directory"
)

// SortDoctors orders doctors in place. "soonest" consults earliest, a map
// from doctor id to the doctor's earliest known slot start; a doctor with
// no entry sorts after one that has a slot, and two doctors without slot
// data fall back to distance ordering.
func SortDoctors(doctors []directory.Doctor, key SortKey, earliest map[string]time.Time) {
	switch key {
	case SortDistance:
		sort.SliceStable(doctors, func(i, j int) bool {
			return doctors[i].DistanceKm < doctors[j].DistanceKm
		})
	case SortRating:
		sort.SliceStable(doctors, func(i, j int) bool {
			return doctors[i].Rating > doctors[j].Rating
		})
	case SortSoonest:
		sort.SliceStable(doctors, func(i, j int) bool {
			ti, iOK := earliest[doctors[i].ID]
			tj, jOK := earliest[doctors[j].ID]
			switch {
			case iOK && jOK:
				if ti.Equal(tj) {
					return doctors[i].DistanceKm < doctors[j].DistanceKm
				}
				return ti.Before(tj)
			case iOK:
				return true
			case jOK:
				return false
			default:
				return doctors[i].DistanceKm < doctors[j].DistanceKm
			}
		})
	}
}
