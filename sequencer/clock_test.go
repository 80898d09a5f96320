package sequencer

import (
	"sync"
	"testing"
	"time"
)

// manualClock fires tickers only when Advance is called
type manualClock struct {
	mu      sync.Mutex
	now     time.Duration
	tickers []*manualTicker
}

type manualTicker struct {
	clock   *manualClock
	period  time.Duration
	next    time.Duration
	fn      func()
	stopped bool
}

func (c *manualClock) Every(d time.Duration, fn func()) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, period: d, next: c.now + d, fn: fn}
	c.tickers = append(c.tickers, t)
	return t
}

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}

// Advance moves time forward by d, firing due tickers in time order.
// Callbacks run without the clock lock so they may stop and create tickers.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var due *manualTicker
		for _, t := range c.tickers {
			if t.stopped || t.next > target {
				continue
			}
			if due == nil || t.next < due.next {
				due = t
			}
		}
		if due == nil {
			break
		}
		c.now = due.next
		due.next += due.period
		c.mu.Unlock()
		due.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// live returns the periods of tickers that have not been stopped
func (c *manualClock) live() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []time.Duration
	for _, t := range c.tickers {
		if !t.stopped {
			out = append(out, t.period)
		}
	}
	return out
}

func TestRealClockTicksUntilStopped(t *testing.T) {
	ticks := make(chan struct{}, 16)
	tk := RealClock.Every(5*time.Millisecond, func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})
	for i := 0; i < 2; i++ {
		select {
		case <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d never arrived", i)
		}
	}
	tk.Stop()
	tk.Stop() // second stop must not panic
}
