// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how a session ends.
type Mode string

const (
	// ModeTime ends the session when the countdown reaches zero.
	ModeTime Mode = "time"
	// ModeWords ends the session when the whole text has been typed.
	ModeWords Mode = "words"
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeTime:
		return ModeTime, nil
	case ModeWords:
		return ModeWords, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected time or words)", s)
	}
}

// Difficulty controls which words the generator picks.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty converts user input into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(s))) {
	case DifficultyEasy:
		return DifficultyEasy, nil
	case DifficultyMedium:
		return DifficultyMedium, nil
	case DifficultyHard:
		return DifficultyHard, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (expected easy, medium or hard)", s)
	}
}

// Settings defines a typing test configuration. Duration is seconds in time
// mode and a word count in words mode.
type Settings struct {
	Mode       Mode       `json:"mode"`
	Duration   int        `json:"duration"`
	Difficulty Difficulty `json:"difficulty"`
}

// CharStatus is the scoring state of one target character.
type CharStatus uint8

const (
	StatusPending CharStatus = iota
	StatusCorrect
	StatusIncorrect
	StatusMissed
)

func (s CharStatus) String() string {
	switch s {
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	case StatusMissed:
		return "missed"
	default:
		return "pending"
	}
}

// Character is one unit of the target text.
type Character struct {
	Char   rune
	Status CharStatus
}

// WPMSample is one point of the per-second WPM series.
type WPMSample struct {
	Elapsed float64 `json:"time"`
	WPM     int     `json:"wpm"`
}

// Stats holds derived session statistics. TotalTime is in seconds.
type Stats struct {
	WPM       int     `json:"wpm"`
	Accuracy  int     `json:"accuracy"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Missed    int     `json:"missed"`
	TotalTime float64 `json:"totalTime"`
	CharCount int     `json:"charCount"`
}

// Result is the frozen outcome of a completed session.
type Result struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"timestamp"`
	Settings  Settings  `json:"settings"`
	Stats
	WPMHistory []WPMSample `json:"wpmHistory"`
}

// UserProfile identifies the owner of stored results.
type UserProfile struct {
	UserID      string
	DisplayName string
	Email       string
	CreatedAt   time.Time
}

// UserStats holds running aggregates over a user's results.
type UserStats struct {
	TotalTests      int
	BestWPM         int
	AverageWPM      int
	AverageAccuracy int
	TotalTime       float64
	LastTestAt      *time.Time
}

// HistoryConfig defines filters for listing stored results.
type HistoryConfig struct {
	UserID string
	Mode   Mode
	Since  *time.Time
	Last   int
}
