package directory

import (
	"context"

	"github.com/docliq/booking-engine/internal/storage"
)

const (
	doctorsKey  = "directory:doctors"
	patientsKey = "directory:patients"
)

// FixtureProvider serves records from in-memory slices, optionally loaded
// from the key-value store that cmd/seed fills.
type FixtureProvider struct {
	doctors  []Doctor
	patients map[string]PatientProfile
}

func NewFixtureProvider(doctors []Doctor, patients []PatientProfile) *FixtureProvider {
	byID := make(map[string]PatientProfile, len(patients))
	for _, p := range patients {
		byID[p.ID] = p
	}
	return &FixtureProvider{doctors: doctors, patients: byID}
}

// Load replaces the fixture sets from a seeded store snapshot. Missing
// keys leave the current fixtures untouched.
func (f *FixtureProvider) Load(ctx context.Context, store storage.Store) error {
	var doctors []Doctor
	found, err := store.Get(ctx, doctorsKey, &doctors)
	if err != nil {
		return err
	}
	if found {
		f.doctors = doctors
	}

	var patients []PatientProfile
	found, err = store.Get(ctx, patientsKey, &patients)
	if err != nil {
		return err
	}
	if found {
		byID := make(map[string]PatientProfile, len(patients))
		for _, p := range patients {
			byID[p.ID] = p
		}
		f.patients = byID
	}
	return nil
}

func (f *FixtureProvider) Doctors(_ context.Context) ([]Doctor, error) {
	out := make([]Doctor, len(f.doctors))
	copy(out, f.doctors)
	return out, nil
}

func (f *FixtureProvider) DoctorByID(_ context.Context, id string) (*Doctor, error) {
	for i := range f.doctors {
		if f.doctors[i].ID == id {
			d := f.doctors[i]
			return &d, nil
		}
	}
	return nil, ErrDoctorNotFound
}

func (f *FixtureProvider) PatientByID(_ context.Context, id string) (*PatientProfile, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

// DoctorsKey and PatientsKey are the storage keys cmd/seed writes under.
func DoctorsKey() string  { return doctorsKey }
func PatientsKey() string { return patientsKey }
