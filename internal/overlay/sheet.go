package overlay

import (
	"sync"
	"time"

	"github.com/docliq/booking-engine/internal/clock"
)

type Variant string

const (
	VariantBottomSheet Variant = "bottom_sheet"
	VariantDialog      Variant = "dialog"
	VariantFullScreen  Variant = "full_screen"
)

type Phase string

const (
	PhaseClosed  Phase = "closed"
	PhaseOpen    Phase = "open"
	PhaseClosing Phase = "closing" // exit animation running, still mounted
)

// Options are presentational parameters; variants share one state machine.
type Options struct {
	Variant         Variant
	InitialFocus    string // element id; empty means first focusable
	DisableEscape   bool
	DisableBackdrop bool
	NoScrollLock    bool
	ExitDuration    time.Duration
	ShowHandle      *bool  // nil means variant default
	OnClosed        func() // runs once fully unmounted
}

// Sheet is the overlay state machine behind bottom sheets, dialogs, and
// full-screen takeovers. The caller owns the logical open boolean through
// Open/Close; the sheet owns staying mounted through the exit transition,
// the focus capture/trap/restore contract, and the scroll-lock resource.
type Sheet struct {
	mu      sync.Mutex
	opts    Options
	surface FocusSurface
	locker  ScrollLocker
	clk     clock.Clock

	phase      Phase
	blocking   bool
	prevFocus  string
	lockHeld   bool
	lockOffset int
	cancelExit func()
}

func New(surface FocusSurface, locker ScrollLocker, clk clock.Clock, opts Options) *Sheet {
	if opts.Variant == "" {
		opts.Variant = VariantBottomSheet
	}
	return &Sheet{
		opts:    opts,
		surface: surface,
		locker:  locker,
		clk:     clk,
		phase:   PhaseClosed,
	}
}

func (s *Sheet) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// IsOpen reports the logical open state.
func (s *Sheet) IsOpen() bool {
	return s.Phase() == PhaseOpen
}

// Mounted reports whether the overlay still needs rendering, which holds
// through the exit transition.
func (s *Sheet) Mounted() bool {
	return s.Phase() != PhaseClosed
}

// HandleVisible: drag handle shown by default on bottom sheets only.
func (s *Sheet) HandleVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opts.ShowHandle != nil {
		return *s.opts.ShowHandle
	}
	return s.opts.Variant == VariantBottomSheet
}

// Open captures the currently focused element, acquires the scroll lock,
// and moves focus into the overlay.
func (s *Sheet) Open() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseOpen {
		return
	}
	if s.cancelExit != nil {
		// reopened mid-exit: keep the mount, drop the pending unmount
		s.cancelExit()
		s.cancelExit = nil
	}

	if s.phase == PhaseClosed {
		s.prevFocus = s.surface.ActiveElement()
	}
	if !s.opts.NoScrollLock && !s.lockHeld {
		s.lockOffset = s.locker.Lock()
		s.lockHeld = true
	}
	s.phase = PhaseOpen

	target := s.opts.InitialFocus
	if target == "" {
		target = firstFocusable(s.surface)
	}
	if target != "" {
		s.surface.Focus(target)
	}
}

// Close is the single close handler every dismissal path converges on:
// escape, backdrop, and programmatic close all land here. Focus is
// restored and the scroll lock released immediately; the overlay stays
// mounted until the exit timer fires.
func (s *Sheet) Close() {
	s.mu.Lock()
	if s.phase != PhaseOpen {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseClosing
	s.releaseLocked()
	s.restoreFocus()

	// zero-duration exits still go through the timer so the cancellation
	// path stays uniform
	s.cancelExit = s.clk.AfterFunc(s.opts.ExitDuration, s.finishClose)
	s.mu.Unlock()
}

func (s *Sheet) finishClose() {
	s.mu.Lock()
	if s.phase != PhaseClosing {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseClosed
	s.cancelExit = nil
	done := s.opts.OnClosed
	s.mu.Unlock()

	if done != nil {
		done()
	}
}

// PressEscape dismisses unless escape is disabled or blocking is active.
func (s *Sheet) PressEscape() {
	s.mu.Lock()
	blocked := s.opts.DisableEscape || s.blocking || s.phase != PhaseOpen
	s.mu.Unlock()
	if blocked {
		return
	}
	s.Close()
}

// ClickBackdrop dismisses unless backdrop close is disabled or blocking.
func (s *Sheet) ClickBackdrop() {
	s.mu.Lock()
	blocked := s.opts.DisableBackdrop || s.blocking || s.phase != PhaseOpen
	s.mu.Unlock()
	if blocked {
		return
	}
	s.Close()
}

// PressTab cycles focus within the overlay, wrapping at both ends.
func (s *Sheet) PressTab(shift bool) {
	s.mu.Lock()
	open := s.phase == PhaseOpen
	s.mu.Unlock()
	if !open {
		return
	}
	advanceFocus(s.surface, shift)
}

// SetBlocking suppresses escape and backdrop dismissal while an in-flight
// operation (e.g. a biometric scan) must not be interrupted.
func (s *Sheet) SetBlocking(blocking bool) {
	s.mu.Lock()
	s.blocking = blocking
	s.mu.Unlock()
}

func (s *Sheet) Blocking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocking
}

// Unmount tears the overlay down abnormally: pending timers are cancelled
// and the scroll lock is released even when no orderly close ran.
func (s *Sheet) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelExit != nil {
		s.cancelExit()
		s.cancelExit = nil
	}
	if s.phase == PhaseOpen {
		s.restoreFocus()
	}
	s.releaseLocked()
	s.phase = PhaseClosed
}

// restoreFocus returns focus to the element captured at open time. Nothing
// focused back then means nothing to restore. Caller holds s.mu.
func (s *Sheet) restoreFocus() {
	if s.prevFocus != "" {
		s.surface.Focus(s.prevFocus)
	}
}

// releaseLocked drops the scroll lock if held. Caller holds s.mu.
func (s *Sheet) releaseLocked() {
	if s.lockHeld {
		s.locker.Unlock(s.lockOffset)
		s.lockHeld = false
	}
}
