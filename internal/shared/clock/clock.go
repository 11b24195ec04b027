// Package clock injects time so background workers and tests don't depend
// on wall-clock timing directly.
package clock

import "time"

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
	NewTicker(d time.Duration) Ticker
}

type real struct{}

func Real() Clock { return real{} }

func (real) Now() time.Time                       { return time.Now() }
func (real) After(d time.Duration) <-chan time.Time { return time.After(d) }
func (real) NewTicker(d time.Duration) Ticker       { return &realTicker{t: time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Manual is a fake Clock for tests: Now() is fixed until Advance is called,
// and tickers fire when the fake time crosses their period.
type Manual struct {
	now     time.Time
	tickers []*manualTicker
}

func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time { return m.now }

func (m *Manual) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- m.now.Add(d)
	return ch
}

func (m *Manual) NewTicker(d time.Duration) Ticker {
	t := &manualTicker{period: d, ch: make(chan time.Time, 1), next: m.now.Add(d)}
	m.tickers = append(m.tickers, t)
	return t
}

// Advance moves the fake clock forward and fires any ticker whose period
// has elapsed.
func (m *Manual) Advance(d time.Duration) {
	m.now = m.now.Add(d)
	for _, t := range m.tickers {
		if t.stopped {
			continue
		}
		for !t.next.After(m.now) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

type manualTicker struct {
	period  time.Duration
	next    time.Time
	ch      chan time.Time
	stopped bool
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped = true }
