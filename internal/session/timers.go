package session

import (
	"time"

	"github.com/verte-zerg/typeflow/internal/model"
)

const tickInterval = time.Second

// timerGroup owns the repeating tasks of one running period. A group is
// acquired when a session starts running and released exactly once when it
// stops, whichever path stops it.
type timerGroup struct {
	tickers []Ticker
}

func (g *timerGroup) add(t Ticker) {
	g.tickers = append(g.tickers, t)
}

func (g *timerGroup) release() {
	for _, t := range g.tickers {
		t.Stop()
	}
	g.tickers = nil
}

// acquireTimersLocked starts the countdown (time mode) and the WPM sampler.
func (s *Session) acquireTimersLocked() {
	if s.timers != nil {
		s.timers.release()
	}
	g := &timerGroup{}
	s.timers = g
	if s.settings.Mode == model.ModeTime {
		g.add(s.clock.Every(tickInterval, func() { s.onCountdown(g) }))
	}
	g.add(s.clock.Every(tickInterval, func() { s.onSample(g) }))
}

// releaseTimersLocked stops the current group, if any. Ticks from a released
// group are ignored by the handlers below.
func (s *Session) releaseTimersLocked() {
	if s.timers == nil {
		return
	}
	s.timers.release()
	s.timers = nil
}

func (s *Session) onCountdown(g *timerGroup) {
	snap, changed := func() (Snapshot, bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timers != g || s.state != StateRunning {
			return Snapshot{}, false
		}
		s.timeLeft--
		if s.timeLeft <= 0 {
			s.timeLeft = 0
			s.finishLocked()
		}
		return s.snapshotLocked(), true
	}()
	if changed {
		s.notify(snap)
	}
}

func (s *Session) onSample(g *timerGroup) {
	snap, changed := func() (Snapshot, bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.timers != g || s.state != StateRunning {
			return Snapshot{}, false
		}
		if !s.sampleLocked() {
			return Snapshot{}, false
		}
		return s.snapshotLocked(), true
	}()
	if changed {
		s.notify(snap)
	}
}
