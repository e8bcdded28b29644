package config

import (
	"fmt"

	"github.com/verte-zerg/typeflow/internal/model"
)

// Defaults for a test when neither flags nor the config file set them.
const (
	DefaultMode       = model.ModeTime
	DefaultDuration   = 30
	DefaultDifficulty = model.DifficultyEasy
)

// DurationPresets lists the suggested durations per mode.
var DurationPresets = map[model.Mode][]int{
	model.ModeTime:  {15, 30, 60},
	model.ModeWords: {10, 50, 100},
}

// DefaultSettings returns the built-in test settings.
func DefaultSettings() model.Settings {
	return model.Settings{
		Mode:       DefaultMode,
		Duration:   DefaultDuration,
		Difficulty: DefaultDifficulty,
	}
}

// ValidateSettings rejects settings a session cannot run with.
func ValidateSettings(s model.Settings) error {
	if mode, err := model.ParseMode(string(s.Mode)); err != nil || mode != s.Mode {
		return fmt.Errorf("unknown mode %q (expected time or words)", s.Mode)
	}
	if d, err := model.ParseDifficulty(string(s.Difficulty)); err != nil || d != s.Difficulty {
		return fmt.Errorf("unknown difficulty %q (expected easy, medium or hard)", s.Difficulty)
	}
	if s.Duration <= 0 {
		unit := "seconds"
		if s.Mode == model.ModeWords {
			unit = "words"
		}
		return fmt.Errorf("duration must be a positive number of %s, got %d", unit, s.Duration)
	}
	return nil
}
