// Package session implements the typing session state machine.
//
// A Session moves from idle to running on the first non-empty input and from
// running to finished when the countdown expires (time mode) or the whole
// target text has been typed (words mode). Reset is the only way back to
// idle. Inputs are full strings ("everything typed so far"), not deltas.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/typeflow/internal/generator"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/stats"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// TextSource produces target texts.
type TextSource interface {
	Generate(count int, difficulty model.Difficulty) string
}

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	Settings   model.Settings
	State      State
	Target     string
	Characters []model.Character
	Input      string
	Cursor     int
	TimeLeft   int
	Elapsed    time.Duration
	Stats      model.Stats
	WPMHistory []model.WPMSample
}

// Finished reports whether the snapshot was taken after completion.
func (s Snapshot) Finished() bool {
	return s.State == StateFinished
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the clock used for timing and timers.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithTextSource sets the generator of target texts.
func WithTextSource(src TextSource) Option {
	return func(s *Session) { s.source = src }
}

// WithObserver registers fn to receive a snapshot after every state change.
// fn runs without the session lock held and may call back into the Session.
func WithObserver(fn func(Snapshot)) Option {
	return func(s *Session) { s.observer = fn }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// Session is a single typing attempt. It is safe for concurrent use; all
// mutations are serialized.
type Session struct {
	mu       sync.Mutex
	clock    Clock
	source   TextSource
	observer func(Snapshot)
	logger   *slog.Logger

	settings  model.Settings
	state     State
	target    []rune
	chars     []model.Character
	input     []rune
	startedAt time.Time
	elapsed   time.Duration
	timeLeft  int
	stats     model.Stats
	history   []model.WPMSample
	timers    *timerGroup
}

// New creates an idle session for settings. Settings are assumed valid.
func New(settings model.Settings, opts ...Option) *Session {
	s := &Session{settings: settings}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = RealClock()
	}
	if s.source == nil {
		s.source = generator.New()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.mu.Lock()
	s.resetLocked()
	s.mu.Unlock()
	return s
}

// Input applies the full current input. It is ignored once finished.
func (s *Session) Input(input string) {
	s.update(func() bool { return s.inputLocked([]rune(input)) })
}

// Reset discards the attempt and starts over with a fresh text.
func (s *Session) Reset() {
	s.update(func() bool {
		s.resetLocked()
		return true
	})
}

// ResetWith is Reset with new settings.
func (s *Session) ResetWith(settings model.Settings) {
	s.update(func() bool {
		s.settings = settings
		s.resetLocked()
		return true
	})
}

// Finalize ends a running session early. Characters not yet reached are
// marked missed. It does nothing unless the session is running.
func (s *Session) Finalize() {
	s.update(func() bool {
		if s.state != StateRunning {
			return false
		}
		s.finishLocked()
		return true
	})
}

// Close stops any running timers without changing the visible state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseTimersLocked()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snap Snapshot
	if changed {
		snap = s.snapshotLocked()
	}
	s.mu.Unlock()
	if changed {
		s.notify(snap)
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.observer != nil {
		s.observer(snap)
	}
}

func (s *Session) resetLocked() {
	s.releaseTimersLocked()
	text := s.source.Generate(generator.WordCount(s.settings), s.settings.Difficulty)
	s.target = []rune(text)
	s.chars = make([]model.Character, len(s.target))
	for i, r := range s.target {
		s.chars[i] = model.Character{Char: r, Status: model.StatusPending}
	}
	s.input = nil
	s.state = StateIdle
	s.startedAt = time.Time{}
	s.elapsed = 0
	s.timeLeft = 0
	if s.settings.Mode == model.ModeTime {
		s.timeLeft = s.settings.Duration
	}
	s.stats = model.Stats{}
	s.history = nil
	s.logger.Debug("session reset",
		"mode", s.settings.Mode,
		"duration", s.settings.Duration,
		"difficulty", s.settings.Difficulty,
		"chars", len(s.target))
}

func (s *Session) inputLocked(input []rune) bool {
	switch s.state {
	case StateFinished:
		return false
	case StateIdle:
		if len(input) == 0 {
			return false
		}
		s.startLocked()
	}

	// Input past the end of the text is inert.
	if len(input) > len(s.target) {
		input = input[:len(s.target)]
	}
	s.input = append(s.input[:0], input...)
	for i := range s.chars {
		switch {
		case i >= len(input):
			s.chars[i].Status = model.StatusPending
		case input[i] == s.target[i]:
			s.chars[i].Status = model.StatusCorrect
		default:
			s.chars[i].Status = model.StatusIncorrect
		}
	}
	s.elapsed = s.clock.Now().Sub(s.startedAt)
	s.stats = stats.Compute(s.chars, s.elapsed)

	if s.settings.Mode == model.ModeWords && len(s.input) == len(s.target) {
		s.finishLocked()
	}
	return true
}

func (s *Session) startLocked() {
	s.state = StateRunning
	s.startedAt = s.clock.Now()
	s.acquireTimersLocked()
	s.logger.Debug("session started", "mode", s.settings.Mode)
}

// finishLocked is the single exit from running. It releases the timers,
// freezes elapsed time and marks unreached characters missed.
func (s *Session) finishLocked() {
	s.releaseTimersLocked()
	s.state = StateFinished
	s.elapsed = s.clock.Now().Sub(s.startedAt)
	for i := len(s.input); i < len(s.chars); i++ {
		s.chars[i].Status = model.StatusMissed
	}
	s.stats = stats.Compute(s.chars, s.elapsed)
	s.logger.Debug("session finished",
		"wpm", s.stats.WPM,
		"accuracy", s.stats.Accuracy,
		"elapsed", s.elapsed)
}

// sampleLocked appends a WPM sample for the current instant. Samples whose
// elapsed time does not exceed the previous one are dropped.
func (s *Session) sampleLocked() bool {
	elapsed := s.clock.Now().Sub(s.startedAt)
	secs := elapsed.Seconds()
	if n := len(s.history); n > 0 && secs <= s.history[n-1].Elapsed {
		return false
	}
	wpm := stats.Compute(s.chars, elapsed).WPM
	s.history = append(s.history, model.WPMSample{Elapsed: secs, WPM: wpm})
	return true
}

func (s *Session) snapshotLocked() Snapshot {
	chars := make([]model.Character, len(s.chars))
	copy(chars, s.chars)
	history := make([]model.WPMSample, len(s.history))
	copy(history, s.history)
	elapsed := s.elapsed
	if s.state == StateRunning {
		elapsed = s.clock.Now().Sub(s.startedAt)
	}
	return Snapshot{
		Settings:   s.settings,
		State:      s.state,
		Target:     string(s.target),
		Characters: chars,
		Input:      string(s.input),
		Cursor:     len(s.input),
		TimeLeft:   s.timeLeft,
		Elapsed:    elapsed,
		Stats:      s.stats,
		WPMHistory: history,
	}
}
