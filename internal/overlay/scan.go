package overlay

import (
	"sync"
	"time"

	"github.com/docliq/booking-engine/internal/clock"
)

type ScanPhase string

const (
	ScanIdle       ScanPhase = "idle"
	ScanInProgress ScanPhase = "scanning"
	ScanSucceeded  ScanPhase = "succeeded"
	ScanFailed     ScanPhase = "failed"
)

// Scan is the simulated biometric flow: idle → scanning → succeeded or
// failed, driven entirely by scheduled timers so tests advance virtual
// time. While scanning, the host sheet blocks dismissal; a success holds
// briefly and then closes the sheet. Cancel aborts a pending phase so a
// stale timer never fires against a dismissed prompt.
type Scan struct {
	mu        sync.Mutex
	clk       clock.Clock
	sheet     *Sheet
	scanDelay time.Duration
	holdDelay time.Duration

	phase       ScanPhase
	cancelTimer func()
}

func NewScan(clk clock.Clock, sheet *Sheet, scanDelay, holdDelay time.Duration) *Scan {
	return &Scan{
		clk:       clk,
		sheet:     sheet,
		scanDelay: scanDelay,
		holdDelay: holdDelay,
		phase:     ScanIdle,
	}
}

func (s *Scan) Phase() ScanPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Start begins a scan whose outcome the caller supplies. No-op unless idle
// or retrying after a failure.
func (s *Scan) Start(willSucceed bool) {
	s.mu.Lock()
	if s.phase == ScanInProgress || s.phase == ScanSucceeded {
		s.mu.Unlock()
		return
	}
	s.phase = ScanInProgress
	s.cancelTimer = s.clk.AfterFunc(s.scanDelay, func() { s.settle(willSucceed) })
	s.mu.Unlock()

	s.sheet.SetBlocking(true)
}

func (s *Scan) settle(ok bool) {
	s.mu.Lock()
	if s.phase != ScanInProgress {
		s.mu.Unlock()
		return
	}
	s.cancelTimer = nil
	if ok {
		s.phase = ScanSucceeded
		s.cancelTimer = s.clk.AfterFunc(s.holdDelay, s.finishSuccess)
	} else {
		s.phase = ScanFailed
	}
	s.mu.Unlock()

	s.sheet.SetBlocking(false)
}

func (s *Scan) finishSuccess() {
	s.mu.Lock()
	if s.phase != ScanSucceeded {
		s.mu.Unlock()
		return
	}
	s.cancelTimer = nil
	s.mu.Unlock()

	s.sheet.Close()
}

// Cancel aborts whatever phase is pending and returns the flow to idle.
// Called on unmount and on early dismissal once blocking has cleared.
func (s *Scan) Cancel() {
	s.mu.Lock()
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
	wasScanning := s.phase == ScanInProgress
	s.phase = ScanIdle
	s.mu.Unlock()

	if wasScanning {
		s.sheet.SetBlocking(false)
	}
}
