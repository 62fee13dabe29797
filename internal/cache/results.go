package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/slots"
	"github.com/docliq/booking-engine/internal/storage"
)

const resultsKey = "cache:results"

// ResultsPayload captures which subset of the directory a prior search
// surfaced: the week anchor, the visible doctor ordering, the doctors held
// back by the insurance toggle, and the slots generated per doctor for
// that week. Doctor ids only; full records stay with the directory so the
// cache never duplicates mutable data.
type ResultsPayload struct {
	WeekStart     string                  `json:"week_start"`
	DoctorOrder   []string                `json:"doctor_order"`
	BlockedOrder  []string                `json:"blocked_order,omitempty"`
	SlotsByDoctor map[string][]slots.Slot `json:"slots_by_doctor"`
}

// ResultsCache stores a single Envelope[ResultsPayload] under one key.
// Absent, expired, and undecodable entries all read as nil, nil; a miss
// is never an error.
type ResultsCache struct {
	store storage.Store
	clk   clock.Clock
	ttl   time.Duration
	log   zerolog.Logger
}

func NewResultsCache(store storage.Store, clk clock.Clock, ttl time.Duration, log zerolog.Logger) *ResultsCache {
	return &ResultsCache{store: store, clk: clk, ttl: ttl, log: log}
}

// Write stamps the payload with the current time and replaces any prior entry.
func (c *ResultsCache) Write(ctx context.Context, payload ResultsPayload) error {
	env := Wrap(payload, c.clk.Now())
	if err := c.store.Set(ctx, resultsKey, env); err != nil {
		return fmt.Errorf("write results cache: %w", err)
	}
	return nil
}

// Read returns the cached payload, or nil when no entry exists, the entry
// expired, or the stored bytes cannot be decoded. Callers treat every nil
// identically: re-fetch or report no cached data.
func (c *ResultsCache) Read(ctx context.Context) (*ResultsPayload, error) {
	var env Envelope[ResultsPayload]
	found, err := c.store.Get(ctx, resultsKey, &env)
	if err != nil {
		// malformed persisted data reads as a miss, not a fault
		c.log.Debug().Err(err).Msg("results cache entry unreadable, treating as miss")
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	if env.Expired(c.clk.Now(), c.ttl) {
		return nil, nil
	}
	payload := env.Payload
	return &payload, nil
}

// SlotsForDoctor returns the cached slot list only when the cached week
// anchor exactly matches the requested one; anything else is nil, forcing
// fresh deterministic generation.
func (c *ResultsCache) SlotsForDoctor(ctx context.Context, doctorID, weekStartISO string) ([]slots.Slot, error) {
	payload, err := c.Read(ctx)
	if err != nil {
		return nil, err
	}
	if payload == nil || payload.WeekStart != weekStartISO {
		return nil, nil
	}
	return payload.SlotsByDoctor[doctorID], nil
}

// Clear drops the cache entry.
func (c *ResultsCache) Clear(ctx context.Context) error {
	return c.store.Remove(ctx, resultsKey)
}
