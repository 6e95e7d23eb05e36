package clock

import (
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop cancels the callback. Calling Stop more than once is allowed.
	Stop()
}

// Clock provides the current time and schedules callbacks
type Clock interface {
	Now() time.Time
	// Every calls f every d until the returned Timer is stopped
	Every(d time.Duration, f func()) Timer
	// After calls f once after d unless the returned Timer is stopped first
	After(d time.Duration, f func()) Timer
}

// Real is a Clock backed by the time package. Callbacks run on their own goroutines.
type Real struct{}

// Now returns the wall-clock time
func (Real) Now() time.Time {
	return time.Now()
}

// Every starts a ticker calling f every d
func (Real) Every(d time.Duration, f func()) Timer {
	t := &tickerTimer{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				f()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// After schedules f once after d
func (Real) After(d time.Duration, f func()) Timer {
	return afterTimer{time.AfterFunc(d, f)}
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

type afterTimer struct {
	t *time.Timer
}

func (a afterTimer) Stop() {
	a.t.Stop()
}
