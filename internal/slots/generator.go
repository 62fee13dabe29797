package slots

import (
	"fmt"
	"hash/fnv"
	"time"
)

type Modality string

const (
	ModalityInPerson Modality = "in_person"
)

// Slot is a bookable interval. Immutable once generated; bookings embed a
// snapshot of the slot rather than referencing it. Start is kept as unix
// seconds so regenerated and cache-decoded slots compare byte for byte.
type Slot struct {
	ID        string   `json:"id"`
	DoctorID  string   `json:"doctor_id"`
	StartUnix int64    `json:"start_unix"`
	Minutes   int      `json:"minutes"` // 15 or 30
	Modality  Modality `json:"modality"`
}

// StartTime returns the slot start in local time.
func (s Slot) StartTime() time.Time {
	return time.Unix(s.StartUnix, 0)
}

// Params describes one generation window. The same Params with the same
// (doctorID, weekStartISO) always yields the same slot list.
type Params struct {
	Days     int           // days covered from the week anchor
	OpenHour int           // first bookable hour, local time
	LastHour int           // slots start strictly before this hour
	Cadence  time.Duration // spacing between candidate starts
	Minutes  int           // duration class of generated slots
}

// WeekStartISO returns the ISO date of the Monday of t's week, the anchor
// every search window and cache entry is keyed on.
func WeekStartISO(t time.Time) string {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week it ends
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return monday.Format("2006-01-02")
}

// SlotID derives the identifier from owning doctor and start instant, which
// is what makes regeneration idempotent.
func SlotID(doctorID string, start time.Time) string {
	return fmt.Sprintf("slot_%s_%d", doctorID, start.Unix())
}

// Generate produces the deterministic slot set for one doctor and week.
// Candidate starts walk each day from OpenHour to LastHour at Cadence
// spacing; whether a candidate is offered comes from a hash of
// (doctorID, start), so independent calls agree byte for byte and the
// offline path can rebuild results without replaying any fetch.
func Generate(doctorID, weekStartISO string, p Params) ([]Slot, error) {
	anchor, err := time.ParseInLocation("2006-01-02", weekStartISO, time.Local)
	if err != nil {
		return nil, fmt.Errorf("parse week anchor %q: %w", weekStartISO, err)
	}

	minutes := p.Minutes
	if minutes != 15 && minutes != 30 {
		minutes = 30
	}

	var out []Slot
	for day := 0; day < p.Days; day++ {
		dayStart := anchor.AddDate(0, 0, day)
		for h := time.Duration(p.OpenHour) * time.Hour; h < time.Duration(p.LastHour)*time.Hour; h += p.Cadence {
			start := dayStart.Add(h)
			if !offered(doctorID, start) {
				continue
			}
			out = append(out, Slot{
				ID:        SlotID(doctorID, start),
				DoctorID:  doctorID,
				StartUnix: start.Unix(),
				Minutes:   minutes,
				Modality:  ModalityInPerson,
			})
		}
	}
	return out, nil
}

// offered thins the grid so different doctors show different availability
// while staying a pure function of its inputs.
func offered(doctorID string, start time.Time) bool {
	h := fnv.New64a()
	_, _ = h.Write([]byte(doctorID))
	_, _ = fmt.Fprintf(h, "|%d", start.Unix())
	return h.Sum64()%10 < 7
}

// Earliest returns the soonest start in ss, or false when ss is empty.
func Earliest(ss []Slot) (time.Time, bool) {
	if len(ss) == 0 {
		return time.Time{}, false
	}
	min := ss[0].StartUnix
	for _, s := range ss[1:] {
		if s.StartUnix < min {
			min = s.StartUnix
		}
	}
	return time.Unix(min, 0), true
}
