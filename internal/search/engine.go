package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/cache"
	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/connectivity"
	"github.com/docliq/booking-engine/internal/directory"
	"github.com/docliq/booking-engine/internal/slots"
)

// Results is one ranked, filtered answer to a search. Indeterminate marks
// the offline-with-no-usable-cache case, which the UI must distinguish
// from a genuine "no matches".
type Results struct {
	WeekStart          string
	Visible            []directory.Doctor
	BlockedByInsurance []directory.Doctor
	SlotsByDoctor      map[string][]slots.Slot
	FromCache          bool
	Indeterminate      bool
}

// Engine produces search results online and replays the cached envelope
// within its TTL when connectivity is gone. Connectivity is an input, not
// an error: the signal picks which path runs.
type Engine struct {
	dir     directory.Provider
	results *cache.ResultsCache
	signal  connectivity.Signal
	clk     clock.Clock
	params  slots.Params
	log     zerolog.Logger
}

func NewEngine(dir directory.Provider, results *cache.ResultsCache, signal connectivity.Signal, clk clock.Clock, params slots.Params, log zerolog.Logger) *Engine {
	return &Engine{
		dir:     dir,
		results: results,
		signal:  signal,
		clk:     clk,
		params:  params,
		log:     log,
	}
}

// Search runs the full pipeline for the current week window. Online it
// filters, generates slots, sorts, and writes the cache envelope; offline
// it reconstructs the prior run from the cache or reports Indeterminate.
func (e *Engine) Search(ctx context.Context, query, city string, patient directory.PatientProfile, f Filters) (*Results, error) {
	weekStart := slots.WeekStartISO(e.clk.Now())

	if !e.signal.Online() {
		return e.replay(ctx, weekStart)
	}

	all, err := e.dir.Doctors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	filtered := FilterDoctors(all, query, city, patient.Insurance, f)

	slotsByDoctor := make(map[string][]slots.Slot, len(filtered.Visible))
	earliest := make(map[string]time.Time, len(filtered.Visible))
	for _, d := range filtered.Visible {
		p := e.params
		p.Minutes = d.SlotMinutes
		ss, err := slots.Generate(d.ID, weekStart, p)
		if err != nil {
			return nil, fmt.Errorf("generate slots for %s: %w", d.ID, err)
		}
		slotsByDoctor[d.ID] = ss
		if t, ok := slots.Earliest(ss); ok {
			earliest[d.ID] = t
		}
	}

	SortDoctors(filtered.Visible, f.Sort, earliest)

	order := make([]string, len(filtered.Visible))
	for i, d := range filtered.Visible {
		order[i] = d.ID
	}
	var blocked []string
	for _, d := range filtered.BlockedByInsurance {
		blocked = append(blocked, d.ID)
	}
	if err := e.results.Write(ctx, cache.ResultsPayload{
		WeekStart:     weekStart,
		DoctorOrder:   order,
		BlockedOrder:  blocked,
		SlotsByDoctor: slotsByDoctor,
	}); err != nil {
		// a failed cache write costs the offline path, not this search
		e.log.Warn().Err(err).Msg("results cache write failed")
	}

	return &Results{
		WeekStart:          weekStart,
		Visible:            filtered.Visible,
		BlockedByInsurance: filtered.BlockedByInsurance,
		SlotsByDoctor:      slotsByDoctor,
	}, nil
}

// replay rebuilds the last online run from the cache envelope. Doctor
// records come from the directory (static reference data); ordering and
// slots come from the payload, so the offline screen matches the online
// one without any fetch.
func (e *Engine) replay(ctx context.Context, weekStart string) (*Results, error) {
	payload, err := e.results.Read(ctx)
	if err != nil {
		return nil, err
	}
	if payload == nil || payload.WeekStart != weekStart {
		return &Results{WeekStart: weekStart, Indeterminate: true}, nil
	}

	return &Results{
		WeekStart:          payload.WeekStart,
		Visible:            e.resolve(ctx, payload.DoctorOrder),
		BlockedByInsurance: e.resolve(ctx, payload.BlockedOrder),
		SlotsByDoctor:      payload.SlotsByDoctor,
		FromCache:          true,
	}, nil
}

// resolve maps cached doctor ids back to directory records, skipping any
// that no longer exist.
func (e *Engine) resolve(ctx context.Context, ids []string) []directory.Doctor {
	out := make([]directory.Doctor, 0, len(ids))
	for _, id := range ids {
		d, err := e.dir.DoctorByID(ctx, id)
		if err != nil {
			e.log.Debug().Str("doctor_id", id).Msg("cached doctor missing from directory, skipping")
			continue
		}
		out = append(out, *d)
	}
	return out
}

// SlotsForDoctor serves the schedule screen: cached slots when the week
// matches, fresh deterministic generation otherwise.
func (e *Engine) SlotsForDoctor(ctx context.Context, d directory.Doctor, weekStartISO string) ([]slots.Slot, error) {
	cached, err := e.results.SlotsForDoctor(ctx, d.ID, weekStartISO)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	p := e.params
	p.Minutes = d.SlotMinutes
	return slots.Generate(d.ID, weekStartISO, p)
}
