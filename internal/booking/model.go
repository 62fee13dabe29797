package booking

import (
	"errors"
	"time"

	"github.com/docliq/booking-engine/internal/slots"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	// StatusCompleted is derived at read time for a still-confirmed booking
	// whose slot start has passed. It is never written to the store.
	StatusCompleted Status = "completed"
)

var (
	ErrMissingSelection   = errors.New("selection missing")
	ErrReasonTooLong      = errors.New("reason exceeds length limit")
	ErrSlotUnavailable    = errors.New("slot no longer available")
	ErrSubmissionInFlight = errors.New("confirmation already in progress")
	ErrBookingNotFound    = errors.New("booking not found")
	ErrTerminalStatus     = errors.New("booking is in a terminal status")
)

// Booking is an immutable record of a confirmed appointment. It embeds a
// snapshot of the slot it was created against; slots are never stored on
// their own. ReplacesID links a reschedule replacement back to the booking
// it supersedes.
type Booking struct {
	ID         string     `json:"id"`
	DoctorID   string     `json:"doctor_id"`
	PatientID  string     `json:"patient_id"`
	Slot       slots.Slot `json:"slot"`
	Status     Status     `json:"status"`
	Code       string     `json:"code"`
	Reason     string     `json:"reason,omitempty"`
	ReplacesID string     `json:"replaces_booking_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// presented returns the booking as it should be displayed: stored-confirmed
// with a past slot start reads as completed, without a write-back.
func (b Booking) presented(now time.Time) Booking {
	if b.Status == StatusConfirmed && b.Slot.StartTime().Before(now) {
		b.Status = StatusCompleted
	}
	return b
}
