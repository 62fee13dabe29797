package storage

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// FallbackStore wraps a durable Store and degrades to in-memory operation
// for the remainder of the session the first time the durable store rejects
// an operation. Writes are mirrored to memory while healthy, so the session
// keeps its state across the degrade, losing only durability.
type FallbackStore struct {
	durable  Store
	memory   *MemoryStore
	degraded atomic.Bool
	log      zerolog.Logger
}

func NewFallbackStore(durable Store, log zerolog.Logger) *FallbackStore {
	return &FallbackStore{
		durable: durable,
		memory:  NewMemoryStore(),
		log:     log,
	}
}

// Degraded reports whether the durable store has been abandoned for this session.
func (f *FallbackStore) Degraded() bool {
	return f.degraded.Load()
}

func (f *FallbackStore) degrade(op, key string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.log.Warn().Err(err).Str("op", op).Str("key", key).
			Msg("durable storage rejected operation, continuing in-memory for this session")
	}
}

func (f *FallbackStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	if f.degraded.Load() {
		return f.memory.Get(ctx, key, dest)
	}
	found, err := f.durable.Get(ctx, key, dest)
	if err != nil {
		f.degrade("get", key, err)
		return f.memory.Get(ctx, key, dest)
	}
	if found {
		// keep the mirror warm so a later degrade still sees this value
		_ = f.memory.Set(ctx, key, dest)
	}
	return found, nil
}

func (f *FallbackStore) Set(ctx context.Context, key string, value any) error {
	if err := f.memory.Set(ctx, key, value); err != nil {
		return err
	}
	if f.degraded.Load() {
		return nil
	}
	if err := f.durable.Set(ctx, key, value); err != nil {
		f.degrade("set", key, err)
	}
	return nil
}

func (f *FallbackStore) Remove(ctx context.Context, key string) error {
	if err := f.memory.Remove(ctx, key); err != nil {
		return err
	}
	if f.degraded.Load() {
		return nil
	}
	if err := f.durable.Remove(ctx, key); err != nil {
		f.degrade("remove", key, err)
	}
	return nil
}
