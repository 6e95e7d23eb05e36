package clock

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestFakeEvery(t *testing.T) {
	c := NewFake(time.Unix(1000, 0))

	var ticks int
	timer := c.Every(time.Second, func() { ticks++ })

	c.Advance(3500 * time.Millisecond)
	if ticks != 3 {
		t.Errorf("Expected 3 ticks, got %d", ticks)
	}

	timer.Stop()
	c.Advance(5 * time.Second)
	if ticks != 3 {
		t.Errorf("Stopped timer kept firing: %d ticks", ticks)
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
}

func TestFakeAfterFiresOnce(t *testing.T) {
	start := time.Unix(1000, 0)
	c := NewFake(start)

	var firedAt time.Time
	calls := 0
	c.After(600*time.Millisecond, func() {
		calls++
		firedAt = c.Now()
	})

	c.Advance(500 * time.Millisecond)
	if calls != 0 {
		t.Fatal("Timer fired early")
	}
	c.Advance(time.Second)
	if calls != 1 {
		t.Fatalf("Expected 1 call, got %d", calls)
	}
	if want := start.Add(600 * time.Millisecond); !firedAt.Equal(want) {
		t.Errorf("Callback saw now=%v, want %v", firedAt, want)
	}
	if got := c.Now(); !got.Equal(start.Add(1500 * time.Millisecond)) {
		t.Errorf("Clock ended at %v", got)
	}
}

func TestFakeCallbackCanStopItself(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	var timer Timer
	ticks := 0
	timer = c.Every(time.Second, func() {
		ticks++
		if ticks == 2 {
			timer.Stop()
		}
	})

	c.Advance(10 * time.Second)
	if ticks != 2 {
		t.Errorf("Expected 2 ticks, got %d", ticks)
	}
}

func TestFakeOrdering(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	var order []string
	c.After(2*time.Second, func() { order = append(order, "b") })
	c.After(time.Second, func() {
		order = append(order, "a")
		// scheduled from inside a callback, still due within this Advance
		c.After(500*time.Millisecond, func() { order = append(order, "a2") })
	})

	c.Advance(3 * time.Second)
	want := []string{"a", "a2", "b"}
	if len(order) != len(want) {
		t.Fatalf("Got order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Got order %v, want %v", order, want)
		}
	}
}

func TestRealAfterAndStop(t *testing.T) {
	var fired atomic.Bool
	done := make(chan struct{})
	Real{}.After(10*time.Millisecond, func() {
		fired.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("After callback never fired")
	}
	if !fired.Load() {
		t.Error("Expected callback to run")
	}

	var ticks atomic.Int32
	timer := Real{}.Every(5*time.Millisecond, func() { ticks.Add(1) })
	timer.Stop()
	timer.Stop()
	time.Sleep(30 * time.Millisecond)
	if n := ticks.Load(); n > 1 {
		t.Errorf("Ticker kept running after Stop: %d ticks", n)
	}
}
