// Package wordlist provides word list filtering helpers.
package wordlist

import (
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/verte-zerg/typeflow/internal/model"
)

// FilterFunc returns true when a word should be kept.
type FilterFunc func(string) bool

// FilterForDifficulty returns the word filter for a difficulty level.
func FilterForDifficulty(d model.Difficulty) FilterFunc {
	switch d {
	case model.DifficultyEasy:
		return lengthBetween(1, 5)
	case model.DifficultyMedium:
		return lengthBetween(3, 8)
	case model.DifficultyHard:
		return lengthBetween(5, 0)
	default:
		return func(string) bool { return true }
	}
}

// Filter returns the words accepted by keep. When nothing passes, the input
// list is returned unchanged so generation never runs dry.
func Filter(words []string, keep FilterFunc) []string {
	filtered := lo.Filter(words, func(word string, _ int) bool {
		return keep(word)
	})
	if len(filtered) == 0 {
		return words
	}
	return filtered
}

// lengthBetween keeps words with min..max runes; max <= 0 means unbounded.
func lengthBetween(minLen, maxLen int) FilterFunc {
	return func(word string) bool {
		n := utf8.RuneCountInString(word)
		if n < minLen {
			return false
		}
		return maxLen <= 0 || n <= maxLen
	}
}
