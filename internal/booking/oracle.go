package booking

import (
	"context"
	"math/rand"
	"sync"
)

// AvailabilityOracle answers whether a slot can still be taken at confirm
// time, beyond what the local store knows. Production would back this with
// a real check; demos inject synthetic contention to exercise the retry UI.
type AvailabilityOracle interface {
	SlotAvailable(ctx context.Context, doctorID, slotID string) bool
}

type alwaysAvailable struct{}

func (alwaysAvailable) SlotAvailable(context.Context, string, string) bool { return true }

// AlwaysAvailable never reports contention.
func AlwaysAvailable() AvailabilityOracle {
	return alwaysAvailable{}
}

// RandomContention fails a fraction of availability checks, seeded so a
// simulation run is reproducible.
type RandomContention struct {
	mu   sync.Mutex
	rng  *rand.Rand
	rate float64
}

func NewRandomContention(seed int64, rate float64) *RandomContention {
	return &RandomContention{
		rng:  rand.New(rand.NewSource(seed)),
		rate: rate,
	}
}

func (r *RandomContention) SlotAvailable(context.Context, string, string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64() >= r.rate
}
