package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/docliq/booking-engine/internal/clock"
	"github.com/docliq/booking-engine/internal/directory"
	"github.com/docliq/booking-engine/internal/slots"
	"github.com/docliq/booking-engine/internal/storage"
)

const rescheduleFromKey = "selection:reschedule_from"

// Selection is the typed navigation intent handed from slot selection to
// confirmation. Missing fields are rejected before any state mutation.
type Selection struct {
	Doctor  *directory.Doctor
	Slot    *slots.Slot
	Patient *directory.PatientProfile
	Reason  string
}

// Service turns a selection into a durable booking and sequences the
// reschedule replacement. It assumes a single logical writer; expected
// failures come back as sentinel errors, never panics.
type Service struct {
	store     *Store
	kv        storage.Store
	oracle    AvailabilityOracle
	clk       clock.Clock
	log       zerolog.Logger
	reasonMax int
	inFlight  atomic.Bool
}

func NewService(store *Store, kv storage.Store, oracle AvailabilityOracle, clk clock.Clock, reasonMax int, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		kv:        kv,
		oracle:    oracle,
		clk:       clk,
		log:       log,
		reasonMax: reasonMax,
	}
}

// Confirm validates the selection, checks availability, and persists a new
// confirmed booking. When a staged reschedule marker exists the new booking
// carries the back-reference and the predecessor is cancelled in the same
// write, append first. Re-entry while a confirmation is settling is
// rejected, so a double click cannot create a second booking.
func (s *Service) Confirm(ctx context.Context, sel Selection) (*Booking, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer s.inFlight.Store(false)

	if sel.Doctor == nil || sel.Slot == nil || sel.Patient == nil {
		return nil, ErrMissingSelection
	}
	if s.reasonMax > 0 && utf8.RuneCountInString(sel.Reason) > s.reasonMax {
		return nil, ErrReasonTooLong
	}

	existing, err := s.store.ConfirmedForSlot(ctx, sel.Doctor.ID, sel.Slot.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotUnavailable
	}
	if !s.oracle.SlotAvailable(ctx, sel.Doctor.ID, sel.Slot.ID) {
		return nil, ErrSlotUnavailable
	}

	b := Booking{
		ID:        uuid.NewString(),
		DoctorID:  sel.Doctor.ID,
		PatientID: sel.Patient.ID,
		Slot:      *sel.Slot,
		Status:    StatusConfirmed,
		Code:      newConfirmationCode(),
		Reason:    sel.Reason,
		CreatedAt: s.clk.Now(),
	}

	replaces, err := s.pendingReschedule(ctx)
	if err != nil {
		return nil, err
	}

	if replaces != "" {
		b.ReplacesID = replaces
		if err := s.store.AppendAndCancel(ctx, b, replaces); err != nil {
			return nil, fmt.Errorf("persist reschedule: %w", err)
		}
	} else {
		if err := s.store.Append(ctx, b); err != nil {
			return nil, fmt.Errorf("persist booking: %w", err)
		}
	}

	// markers are cleared only after the combined write succeeded
	if replaces != "" {
		if err := s.kv.Remove(ctx, rescheduleFromKey); err != nil {
			s.log.Warn().Err(err).Msg("clearing reschedule marker failed")
		}
	}

	s.log.Info().
		Str("booking_id", b.ID).
		Str("doctor_id", b.DoctorID).
		Str("slot_id", b.Slot.ID).
		Str("replaces", b.ReplacesID).
		Msg("booking confirmed")

	return &b, nil
}

// Cancel marks a booking cancelled. Callers present an explicit
// confirmation step first; the transition is irreversible.
func (s *Service) Cancel(ctx context.Context, bookingID string) error {
	if err := s.store.Cancel(ctx, bookingID); err != nil {
		return err
	}
	s.log.Info().Str("booking_id", bookingID).Msg("booking cancelled")
	return nil
}

// StageReschedule records the replace-from reference and hands control to
// slot selection. Nothing is mutated here; the eventual Confirm call runs
// the normal path with the marker applied.
func (s *Service) StageReschedule(ctx context.Context, bookingID string) error {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != StatusConfirmed {
		return ErrTerminalStatus
	}
	if err := s.kv.Set(ctx, rescheduleFromKey, bookingID); err != nil {
		return fmt.Errorf("stage reschedule: %w", err)
	}
	return nil
}

// AbandonReschedule drops a staged replace-from marker.
func (s *Service) AbandonReschedule(ctx context.Context) error {
	return s.kv.Remove(ctx, rescheduleFromKey)
}

// PendingReschedule exposes the staged marker for screens that need to
// show "rescheduling" affordances.
func (s *Service) PendingReschedule(ctx context.Context) (string, error) {
	return s.pendingReschedule(ctx)
}

func (s *Service) pendingReschedule(ctx context.Context) (string, error) {
	var id string
	found, err := s.kv.Get(ctx, rescheduleFromKey, &id)
	if err != nil {
		return "", fmt.Errorf("read reschedule marker: %w", err)
	}
	if !found {
		return "", nil
	}
	return id, nil
}

// Bookings lists all bookings with read-time statuses applied.
func (s *Service) Bookings(ctx context.Context) ([]Booking, error) {
	return s.store.List(ctx)
}

// newConfirmationCode builds the human-presentable code: alphabetic prefix
// plus a fixed six-digit suffix. Cosmetic only, no uniqueness guarantee
// beyond looking distinct.
func newConfirmationCode() string {
	var digits [6]byte
	raw := uuid.New()
	for i := range digits {
		digits[i] = '0' + raw[i]%10
	}
	return "APT-" + string(digits[:])
}
