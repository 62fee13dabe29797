package directory

import (
	"context"
	"errors"
)

var (
	ErrDoctorNotFound  = errors.New("doctor not found")
	ErrPatientNotFound = errors.New("patient not found")
)

type InsuranceClass string

const (
	InsurancePublic  InsuranceClass = "public"
	InsurancePrivate InsuranceClass = "private"
)

// Doctor is read-only reference data. Mutable facts (ratings, distance from
// the searcher) are snapshots taken when the record was produced.
type Doctor struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Specialty     string   `json:"specialty"`
	City          string   `json:"city"`
	DistanceKm    float64  `json:"distance_km"`
	Rating        float64  `json:"rating"` // 0..5
	Languages     []string `json:"languages"`
	VideoConsult  bool     `json:"video_consult"`
	AcceptsPublic bool     `json:"accepts_public"`
	SlotMinutes   int      `json:"slot_minutes"` // 15 or 30
}

type PatientProfile struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Insurance InsuranceClass `json:"insurance"`
}

// Provider returns static reference records by id. A mock fixture in this
// repo; a real directory service in production.
type Provider interface {
	Doctors(ctx context.Context) ([]Doctor, error)
	DoctorByID(ctx context.Context, id string) (*Doctor, error)
	PatientByID(ctx context.Context, id string) (*PatientProfile, error)
}
