// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/wordlist"
)

// TimeModeWords is the word count generated for time mode, where the clock
// rather than the text decides when the session ends.
const TimeModeWords = 200

const hardCapsPct = 0.3

// Generator produces randomized typing text.
type Generator struct {
	rnd   *rand.Rand
	words []string
}

// New returns a Generator over the built-in word list seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Generator over the built-in word list using src.
func NewWithSource(src rand.Source) *Generator {
	return NewWithWords(wordlist.Default(), src)
}

// NewWithWords returns a Generator over a custom word list.
func NewWithWords(words []string, src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src), words: words}
}

// WordCount returns the number of words to generate for the settings.
func WordCount(s model.Settings) int {
	if s.Mode == model.ModeWords {
		return s.Duration
	}
	return TimeModeWords
}

// Generate returns count words for the difficulty joined by single spaces.
func (g *Generator) Generate(count int, difficulty model.Difficulty) string {
	if count <= 0 || len(g.words) == 0 {
		return ""
	}
	pool := wordlist.Filter(g.words, wordlist.FilterForDifficulty(difficulty))
	capsPct := 0.0
	if difficulty == model.DifficultyHard {
		capsPct = hardCapsPct
	}
	result := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word := pool[g.rnd.Intn(len(pool))]
		word = applyCaps(g.rnd, word, capsPct)
		result = append(result, word)
	}
	return strings.Join(result, " ")
}

// Fixed is a text source that always returns the same text.
type Fixed string

// Generate implements the session text source.
func (f Fixed) Generate(int, model.Difficulty) string {
	return string(f)
}

func applyCaps(rnd *rand.Rand, word string, capsPct float64) string {
	if capsPct <= 0 {
		return word
	}
	if rnd.Float64() > capsPct {
		return word
	}
	runes := []rune(word)
	if len(runes) == 0 {
		return word
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
