package core

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/illarion/doorlock/internal/clock"
)

// Store is the persistence collaborator. Absence of a key means never set or reset.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// ControlKey is a non-digit keypad key
type ControlKey string

const (
	KeyEnter     ControlKey = "Enter"
	KeyEscape    ControlKey = "Escape"
	KeyBackspace ControlKey = "Backspace"
)

// State is a snapshot of the lock for presentation
type State struct {
	Unlocked          bool
	Input             string
	AttemptCount      int
	LockedOut         bool
	LockoutUntil      time.Time // zero when not locked out
	LockoutRemaining  int       // whole seconds
	ShowError         bool
	LastAttemptFailed bool
	RemainingAttempts int
	PINLength         int
}

// Option configures a Controller
type Option func(*Controller)

// WithWarnings sets where persistence warnings are written (default stderr)
func WithWarnings(w io.Writer) Option {
	return func(c *Controller) {
		if w != nil {
			c.warn = w
		}
	}
}

// Controller owns the lock state. All operations are safe for concurrent use;
// each runs to completion before the next, including timer callbacks.
type Controller struct {
	cfg   Config
	store Store
	clock clock.Clock
	warn  io.Writer

	mu        sync.Mutex
	unlocked  bool
	input     string
	attempts  int
	lockedOut bool
	until     time.Time
	remaining int
	showError bool
	failed    bool

	countdown    clock.Timer
	countdownGen uint64
	errorTimer   clock.Timer
	errorGen     uint64
	submitTimer  clock.Timer
	submitGen    uint64
	closed       bool

	listeners map[int]func(State)
	nextID    int
}

// New creates a controller and restores persisted state from store
func New(cfg Config, store Store, clk clock.Clock, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if clk == nil {
		clk = clock.Real{}
	}

	c := &Controller{
		cfg:       cfg,
		store:     store,
		clock:     clk,
		warn:      os.Stderr,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.mu.Lock()
	c.restore()
	c.mu.Unlock()
	return c, nil
}

// restore loads persisted fields. Caller holds mu.
func (c *Controller) restore() {
	keys := c.cfg.Keys

	if v, ok := c.store.Get(keys.UnlockState); ok && v == UnlockedMarker {
		c.unlocked = true
	}

	if v, ok := c.store.Get(keys.AttemptCount); ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.attempts = n
		}
	}

	v, ok := c.store.Get(keys.LockoutUntil)
	if !ok {
		return
	}

	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// Unreadable deadline reads as absent
		c.erase(keys.LockoutUntil)
		return
	}

	now := c.clock.Now()
	if !time.UnixMilli(ms).After(now) {
		// Lockout expired while offline
		c.erase(keys.LockoutUntil)
		c.erase(keys.AttemptCount)
		c.attempts = 0
		return
	}

	c.until = time.UnixMilli(ms)
	c.lockedOut = true
	if c.attempts < c.cfg.MaxAttempts {
		c.attempts = c.cfg.MaxAttempts
	}
	if c.unlocked {
		c.unlocked = false
		c.erase(keys.UnlockState)
	}
	c.startCountdown(ceilSeconds(c.until.Sub(now)))
}

// Close stops all timers. The controller must not be used afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopCountdown()
	c.stopErrorTimer()
	c.stopSubmit()
}

// State returns a snapshot of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// RemainingAttempts returns how many failures are left before lockout
func (c *Controller) RemainingAttempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remainingAttempts()
}

func (c *Controller) remainingAttempts() int {
	return max(0, c.cfg.MaxAttempts-c.attempts)
}

func (c *Controller) snapshot() State {
	return State{
		Unlocked:          c.unlocked,
		Input:             c.input,
		AttemptCount:      c.attempts,
		LockedOut:         c.lockedOut,
		LockoutUntil:      c.until,
		LockoutRemaining:  c.remaining,
		ShowError:         c.showError,
		LastAttemptFailed: c.failed,
		RemainingAttempts: c.remainingAttempts(),
		PINLength:         c.cfg.PINLength,
	}
}

// Subscribe registers f to receive a snapshot after every state change.
// f runs outside the controller lock and may call back into the controller.
func (c *Controller) Subscribe(f func(State)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = f
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// update runs fn under the lock and notifies subscribers when fn reports a change
func (c *Controller) update(fn func() bool) {
	c.mu.Lock()
	if c.closed || !fn() {
		c.mu.Unlock()
		return
	}
	s := c.snapshot()
	listeners := make([]func(State), 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(s)
	}
}

// UpdateInput replaces the pending input with candidate when it is all digits
// and no longer than the PIN. Anything else is rejected whole, as is any
// write during lockout. Reports whether candidate was accepted.
func (c *Controller) UpdateInput(candidate string) bool {
	accepted := false
	c.update(func() bool {
		accepted = c.setInput(candidate)
		return accepted
	})
	return accepted
}

func (c *Controller) setInput(candidate string) bool {
	if c.lockedOut || !c.validInput(candidate) {
		return false
	}
	c.input = candidate
	return true
}

func (c *Controller) validInput(s string) bool {
	if len(s) > c.cfg.PINLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Verify checks the pending input against the PIN
func (c *Controller) Verify() {
	c.update(func() bool {
		return c.verify(c.input)
	})
}

// VerifyPIN checks candidate against the PIN instead of the pending input
func (c *Controller) VerifyPIN(candidate string) {
	c.update(func() bool {
		return c.verify(candidate)
	})
}

func (c *Controller) verify(candidate string) bool {
	if c.lockedOut {
		return false
	}
	// Any outcome supersedes a pending auto-submit
	c.stopSubmit()
	if c.unlocked {
		changed := c.input != ""
		c.input = ""
		return changed
	}

	keys := c.cfg.Keys
	c.input = ""

	if c.cfg.matches(candidate) {
		c.unlocked = true
		c.showError = false
		c.failed = false
		c.attempts = 0
		c.stopErrorTimer()
		c.persist(keys.UnlockState, UnlockedMarker)
		c.erase(keys.AttemptCount)
		return true
	}

	c.attempts++
	c.showError = true
	c.failed = true
	c.persist(keys.AttemptCount, strconv.Itoa(c.attempts))

	if c.attempts >= c.cfg.MaxAttempts {
		c.until = c.clock.Now().Add(c.cfg.LockoutDuration)
		c.lockedOut = true
		c.persist(keys.LockoutUntil, strconv.FormatInt(c.until.UnixMilli(), 10))
		c.startCountdown(c.cfg.lockoutSeconds())
	}

	c.scheduleErrorClear()
	return true
}

// Lock returns the door to the locked state. Attempt and lockout state are untouched.
func (c *Controller) Lock() {
	c.update(func() bool {
		changed := c.unlocked || c.input != "" || c.showError || c.failed
		c.unlocked = false
		c.input = ""
		c.showError = false
		c.failed = false
		c.stopErrorTimer()
		c.erase(c.cfg.Keys.UnlockState)
		return changed
	})
}

// ClearInput empties the pending input unless locked out
func (c *Controller) ClearInput() {
	c.update(func() bool {
		if c.lockedOut || c.input == "" {
			return false
		}
		c.input = ""
		return true
	})
}

// HandleControlKey applies a keypad control key.
// Enter verifies only a complete PIN; Escape clears; Backspace drops one digit.
func (c *Controller) HandleControlKey(key ControlKey) {
	switch key {
	case KeyEnter:
		c.update(func() bool {
			if len(c.input) != c.cfg.PINLength {
				return false
			}
			return c.verify(c.input)
		})
	case KeyEscape:
		c.ClearInput()
	case KeyBackspace:
		c.Backspace()
	}
}

func (c *Controller) persist(key, value string) {
	if err := c.store.Set(key, value); err != nil {
		fmt.Fprintf(c.warn, "warning: failed to persist %s: %v\n", key, err)
	}
}

func (c *Controller) erase(key string) {
	if err := c.store.Remove(key); err != nil {
		fmt.Fprintf(c.warn, "warning: failed to erase %s: %v\n", key, err)
	}
}

// startCountdown replaces any running countdown. Caller holds mu.
func (c *Controller) startCountdown(seconds int) {
	c.stopCountdown()
	c.remaining = seconds
	if seconds <= 0 {
		c.expireLockout()
		return
	}
	gen := c.countdownGen
	c.countdown = c.clock.Every(time.Second, func() {
		c.update(func() bool {
			return c.tick(gen)
		})
	})
}

func (c *Controller) stopCountdown() {
	c.countdownGen++
	if c.countdown != nil {
		c.countdown.Stop()
		c.countdown = nil
	}
}

func (c *Controller) tick(gen uint64) bool {
	if gen != c.countdownGen || !c.lockedOut {
		return false
	}
	if c.remaining <= 1 {
		c.expireLockout()
		return true
	}
	c.remaining--
	return true
}

// expireLockout ends the lockout and resets the attempt counter. Caller holds mu.
func (c *Controller) expireLockout() {
	c.stopCountdown()
	c.lockedOut = false
	c.until = time.Time{}
	c.attempts = 0
	c.remaining = 0
	c.erase(c.cfg.Keys.LockoutUntil)
	c.erase(c.cfg.Keys.AttemptCount)
}

func (c *Controller) scheduleErrorClear() {
	c.stopErrorTimer()
	gen := c.errorGen
	c.errorTimer = c.clock.After(c.cfg.ErrorFlash, func() {
		c.update(func() bool {
			if gen != c.errorGen || (!c.showError && !c.failed) {
				return false
			}
			c.showError = false
			c.failed = false
			c.errorTimer = nil
			return true
		})
	})
}

func (c *Controller) stopErrorTimer() {
	c.errorGen++
	if c.errorTimer != nil {
		c.errorTimer.Stop()
		c.errorTimer = nil
	}
}
