// Package replay drives a typing session from a recorded input script.
package replay

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/generator"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/result"
	"github.com/verte-zerg/typeflow/internal/session"
	"github.com/verte-zerg/typeflow/internal/wordlist"
)

// Offset is a time offset from the start of a script, written as a Go
// duration string such as "1.5s".
type Offset time.Duration

// UnmarshalText parses a duration string.
func (o *Offset) UnmarshalText(text []byte) error {
	d, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid offset %q: %w", text, err)
	}
	*o = Offset(d)
	return nil
}

// Duration returns the offset as a time.Duration.
func (o Offset) Duration() time.Duration { return time.Duration(o) }

// Event is one recorded action. Reset runs before Input when both are set.
type Event struct {
	At    Offset  `toml:"at"`
	Input *string `toml:"input"`
	Reset bool    `toml:"reset"`
}

// Script is a recorded typing run.
type Script struct {
	Mode       *string `toml:"mode"`
	Duration   *int    `toml:"duration"`
	Difficulty *string `toml:"difficulty"`
	Seed       *int64  `toml:"seed"`
	Text       *string `toml:"text"`
	Until      *Offset `toml:"until"`
	Events     []Event `toml:"event"`
}

// Load reads and validates a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, fmt.Errorf("failed to decode script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown script key %q", undecoded[0].String())
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that events are ordered and each one does something.
func (s *Script) Validate() error {
	var last time.Duration
	for i, ev := range s.Events {
		at := ev.At.Duration()
		if at < 0 {
			return fmt.Errorf("event %d: negative offset %s", i+1, at)
		}
		if at < last {
			return fmt.Errorf("event %d: offset %s is before previous offset %s", i+1, at, last)
		}
		if ev.Input == nil && !ev.Reset {
			return fmt.Errorf("event %d: needs input or reset", i+1)
		}
		last = at
	}
	if s.Until != nil && s.Until.Duration() < last {
		return fmt.Errorf("until %s is before the last event at %s", s.Until.Duration(), last)
	}
	if s.Text != nil && *s.Text == "" {
		return fmt.Errorf("text is empty")
	}
	return nil
}

// Apply overlays the script's settings onto base.
func (s *Script) Apply(base model.Settings) (model.Settings, error) {
	out := base
	if s.Mode != nil {
		mode, err := model.ParseMode(*s.Mode)
		if err != nil {
			return base, err
		}
		out.Mode = mode
	}
	if s.Duration != nil {
		out.Duration = *s.Duration
	}
	if s.Difficulty != nil {
		d, err := model.ParseDifficulty(*s.Difficulty)
		if err != nil {
			return base, err
		}
		out.Difficulty = d
	}
	return out, nil
}

// Options tune a replay run.
type Options struct {
	// Words replaces the built-in word list for generated text.
	Words []string
	// Finalize ends a session that is still running after the last event.
	Finalize bool
	Logger   *slog.Logger
	// Now stamps the projected result. Defaults to time.Now.
	Now func() time.Time
	// Observer receives every snapshot the session publishes.
	Observer func(session.Snapshot)
}

// Outcome is the end state of a replay. Result is nil unless the session
// finished.
type Outcome struct {
	Snapshot session.Snapshot
	Result   *model.Result
}

// Run replays the script against a session built from settings overlaid
// with the script's own settings. Time is simulated with a manual clock, so
// runs are deterministic for a fixed text or seed.
func Run(s *Script, settings model.Settings, opts Options) (Outcome, error) {
	settings, err := s.Apply(settings)
	if err != nil {
		return Outcome{}, err
	}
	if err := config.ValidateSettings(settings); err != nil {
		return Outcome{}, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	start := now()
	clock := session.NewManualClock(start)
	sessOpts := []session.Option{
		session.WithClock(clock),
		session.WithTextSource(textSource(s, opts.Words)),
		session.WithLogger(logger),
	}
	if opts.Observer != nil {
		sessOpts = append(sessOpts, session.WithObserver(opts.Observer))
	}
	sess := session.New(settings, sessOpts...)
	defer sess.Close()

	for _, ev := range s.Events {
		clock.Set(start.Add(ev.At.Duration()))
		if ev.Reset {
			sess.Reset()
		}
		if ev.Input != nil {
			sess.Input(*ev.Input)
		}
	}
	if s.Until != nil {
		clock.Set(start.Add(s.Until.Duration()))
	}
	if opts.Finalize {
		sess.Finalize()
	}

	snap := sess.Snapshot()
	out := Outcome{Snapshot: snap}
	if snap.Finished() {
		r := result.Project(snap, now())
		out.Result = &r
	}
	logger.Debug("replay finished",
		"events", len(s.Events),
		"state", snap.State.String(),
		"wpm", snap.Stats.WPM)
	return out, nil
}

func textSource(s *Script, words []string) session.TextSource {
	if s.Text != nil {
		return generator.Fixed(*s.Text)
	}
	if len(words) == 0 {
		words = wordlist.Default()
	}
	seed := time.Now().UnixNano()
	if s.Seed != nil {
		seed = *s.Seed
	}
	return generator.NewWithWords(words, rand.NewSource(seed))
}
