package sequencer

import (
	"sync"
	"time"
)

// Clock creates repeating tickers
type Clock interface {
	// Every calls fn every d until the returned Ticker is stopped
	Every(d time.Duration, fn func()) Ticker
}

// Ticker is a running repeating timer. Stop must not block: it is called
// from inside tick callbacks.
type Ticker interface {
	Stop()
}

// RealClock ticks on wall-clock time
var RealClock Clock = realClock{}

type realClock struct{}

func (realClock) Every(d time.Duration, fn func()) Ticker {
	t := &realTicker{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.loop(fn)
	return t
}

type realTicker struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *realTicker) loop(fn func()) {
	defer t.ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			fn()
		}
	}
}

func (t *realTicker) Stop() {
	t.once.Do(func() { close(t.stop) })
}
