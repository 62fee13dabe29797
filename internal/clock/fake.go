package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock for tests. Advance runs any timers
// whose deadline has passed, in deadline order, outside the lock so a
// fired callback may schedule further timers.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*fakeTimer
}

type fakeTimer struct {
	at time.Time
	fn func()
}

func NewFake(start time.Time) *Fake {
	return &Fake{
		now:    start,
		timers: map[int]*fakeTimer{},
	}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fake) AfterFunc(d time.Duration, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextID
	f.nextID++
	f.timers[id] = &fakeTimer{at: f.now.Add(d), fn: fn}

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.timers, id)
	}
}

// Advance moves the clock forward and fires due timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()

	for {
		fn := f.popDue()
		if fn == nil {
			return
		}
		fn()
	}
}

// Set jumps the clock to an absolute instant without firing timers.
// Useful for pure Now-based expiry checks.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func (f *Fake) popDue() func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	type due struct {
		id int
		at time.Time
	}
	var dues []due
	for id, t := range f.timers {
		if !t.at.After(f.now) {
			dues = append(dues, due{id, t.at})
		}
	}
	if len(dues) == 0 {
		return nil
	}
	sort.Slice(dues, func(i, j int) bool { return dues[i].at.Before(dues[j].at) })

	t := f.timers[dues[0].id]
	delete(f.timers, dues[0].id)
	return t.fn
}
