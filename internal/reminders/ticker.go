package reminders

import "time"

// Ticker is the periodic trigger driving Run.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// ManualTicker fires only when Fire is called.
type ManualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() { close(m.stopped) }

// Fire delivers one tick and blocks until the loop receives it.
func (m *ManualTicker) Fire(at time.Time) { m.ch <- at }

// Stopped is closed once Stop has been called.
func (m *ManualTicker) Stopped() <-chan struct{} { return m.stopped }
