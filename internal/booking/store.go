package booking

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/storage"
)

const bookingsKey = "bookings"

// Store persists the bookings array under a single key, so every mutation
// is one whole-array write. That single write is what gives the reschedule
// path its atomicity: the replacement append and the predecessor
// cancellation land together or not at all.
type Store struct {
	kv  storage.Store
	clk clock.Clock
	log zerolog.Logger
}

func NewStore(kv storage.Store, clk clock.Clock, log zerolog.Logger) *Store {
	return &Store{kv: kv, clk: clk, log: log}
}

func (s *Store) load(ctx context.Context) ([]Booking, error) {
	var all []Booking
	found, err := s.kv.Get(ctx, bookingsKey, &all)
	if err != nil {
		// malformed persisted data resets to an empty list rather than
		// blocking every booking read
		s.log.Warn().Err(err).Msg("bookings entry unreadable, starting from empty")
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	return all, nil
}

func (s *Store) save(ctx context.Context, all []Booking) error {
	if err := s.kv.Set(ctx, bookingsKey, all); err != nil {
		return fmt.Errorf("persist bookings: %w", err)
	}
	return nil
}

// List returns all bookings with read-time statuses applied. The stored
// records keep their written status.
func (s *Store) List(ctx context.Context) ([]Booking, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	out := make([]Booking, len(all))
	for i, b := range all {
		out[i] = b.presented(now)
	}
	return out, nil
}

// Get returns one booking with its read-time status applied.
func (s *Store) Get(ctx context.Context, id string) (*Booking, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.ID == id {
			b = b.presented(s.clk.Now())
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

// ConfirmedForSlot reports an existing stored-confirmed booking occupying
// the (doctor, slot) pair, the double-booking check.
func (s *Store) ConfirmedForSlot(ctx context.Context, doctorID, slotID string) (*Booking, error) {
	all, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.Status == StatusConfirmed && b.DoctorID == doctorID && b.Slot.ID == slotID {
			return &b, nil
		}
	}
	return nil, nil
}

// Append adds a new booking.
func (s *Store) Append(ctx context.Context, b Booking) error {
	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(all, b))
}

// AppendAndCancel appends the replacement booking and cancels its
// predecessor in one persistence write, replacement first. At no
// observable point is the old booking cancelled without the new one
// confirmed.
func (s *Store) AppendAndCancel(ctx context.Context, replacement Booking, oldID string) error {
	all, err := s.load(ctx)
	if err != nil {
		return err
	}

	all = append(all, replacement)

	idx := -1
	for i := 0; i < len(all)-1; i++ {
		if all[i].ID == oldID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrBookingNotFound
	}
	if all[idx].presented(s.clk.Now()).Status != StatusConfirmed {
		return ErrTerminalStatus
	}
	all[idx].Status = StatusCancelled

	return s.save(ctx, all)
}

// Cancel marks a booking cancelled. Only a stored-confirmed booking whose
// slot has not passed may transition; cancelled and (derived) completed
// are terminal.
func (s *Store) Cancel(ctx context.Context, id string) error {
	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if all[i].ID != id {
			continue
		}
		if all[i].presented(s.clk.Now()).Status != StatusConfirmed {
			return ErrTerminalStatus
		}
		all[i].Status = StatusCancelled
		return s.save(ctx, all)
	}
	return ErrBookingNotFound
}
