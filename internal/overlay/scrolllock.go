package overlay

import "sync"

// ScrollLocker is the scoped body-scroll resource: Lock fixes the page and
// returns the scroll offset to restore, Unlock releases it. The sheet
// guarantees a held lock is released on every close and unmount path.
type ScrollLocker interface {
	Lock() (offset int)
	Unlock(offset int)
}

// PageLock models a scrollable document body. It records the offset at
// lock time; Unlock puts it back.
type PageLock struct {
	mu     sync.Mutex
	offset int
	locked bool
}

func NewPageLock() *PageLock {
	return &PageLock{}
}

// Scroll sets the current offset; ignored while locked, the way a fixed
// body ignores scroll input.
func (p *PageLock) Scroll(offset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.locked {
		return
	}
	p.offset = offset
}

func (p *PageLock) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

func (p *PageLock) Locked() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locked
}

func (p *PageLock) Lock() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = true
	return p.offset
}

func (p *PageLock) Unlock(offset int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.locked = false
	p.offset = offset
}
