package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/docliq/booking-engine/internal/storage"
)

// Storage keys, one per logical field, namespaced by flow.
const (
	keyFilters = "search:filters"
	keyQuery   = "search:query"
	keyCity    = "search:city"
)

// Prefs is the application-state service for search preferences: it
// initializes from the persisted snapshot, persists on every mutation,
// and notifies subscribers after each change. Dependents receive it by
// injection; there is no ambient global.
type Prefs struct {
	store storage.Store

	mu      sync.Mutex
	filters Filters
	query   string
	city    string
	nextID  int
	subs    map[int]func()
}

// LoadPrefs builds the service from whatever the store holds, falling back
// to defaults field-by-field when a key is absent or unreadable.
func LoadPrefs(ctx context.Context, store storage.Store) *Prefs {
	p := &Prefs{
		store:   store,
		filters: DefaultFilters(),
		subs:    map[int]func(){},
	}

	var f Filters
	if found, err := store.Get(ctx, keyFilters, &f); err == nil && found {
		p.filters = f
	}
	var q string
	if found, err := store.Get(ctx, keyQuery, &q); err == nil && found {
		p.query = q
	}
	var c string
	if found, err := store.Get(ctx, keyCity, &c); err == nil && found {
		p.city = c
	}

	return p
}

func (p *Prefs) Filters() Filters {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filters
}

func (p *Prefs) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

func (p *Prefs) City() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.city
}

func (p *Prefs) SetFilters(ctx context.Context, f Filters) error {
	p.mu.Lock()
	p.filters = f
	p.mu.Unlock()

	if err := p.store.Set(ctx, keyFilters, f); err != nil {
		return fmt.Errorf("persist filters: %w", err)
	}
	p.notify()
	return nil
}

func (p *Prefs) SetQuery(ctx context.Context, q string) error {
	p.mu.Lock()
	p.query = q
	p.mu.Unlock()

	if err := p.store.Set(ctx, keyQuery, q); err != nil {
		return fmt.Errorf("persist query: %w", err)
	}
	p.notify()
	return nil
}

func (p *Prefs) SetCity(ctx context.Context, c string) error {
	p.mu.Lock()
	p.city = c
	p.mu.Unlock()

	if err := p.store.Set(ctx, keyCity, c); err != nil {
		return fmt.Errorf("persist city: %w", err)
	}
	p.notify()
	return nil
}

// ClearFilters restores every filter field to its default in one operation.
func (p *Prefs) ClearFilters(ctx context.Context) error {
	return p.SetFilters(ctx, DefaultFilters())
}

// Subscribe registers fn to run after every mutation; returns unsubscribe.
func (p *Prefs) Subscribe(fn func()) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Prefs) notify() {
	p.mu.Lock()
	fns := make([]func(), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
