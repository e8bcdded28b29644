package stats

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typeflow/internal/model"
)

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	missedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C3A3B")).Strikethrough(true)
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

const wrongSpace = '•'

type styledRune struct {
	s       string
	width   int
	isSpace bool
}

// RenderText renders the target text colored by character status and
// wrapped on spaces at width. cursor < 0 disables the cursor and current
// word highlight. Without color the plain target is returned, wrapped.
func RenderText(chars []model.Character, cursor, width int, useColor bool) string {
	return wrapStyledRunes(buildStyledRunes(chars, cursor, useColor), width)
}

func buildStyledRunes(chars []model.Character, cursor int, useColor bool) []styledRune {
	var current *wordRange
	if cursor >= 0 {
		current = wordForCursor(findWords(chars), cursor)
	}

	out := make([]styledRune, 0, len(chars))
	for i, c := range chars {
		displayed := c.Char
		style := pendingStyle
		switch c.Status {
		case model.StatusCorrect:
			style = correctStyle
		case model.StatusIncorrect:
			style = incorrectStyle
			if c.Char == ' ' {
				displayed = wrongSpace
			}
		case model.StatusMissed:
			style = missedStyle
		default:
			if c.Char != ' ' && current != nil && i >= current.start && i < current.end {
				style = currentWordStyle
			}
		}
		if i == cursor {
			style = style.Underline(true)
		}
		s := string(displayed)
		if useColor {
			s = style.Render(s)
		}
		out = append(out, styledRune{
			s:       s,
			width:   runewidth.RuneWidth(displayed),
			isSpace: c.Char == ' ',
		})
	}
	return out
}

type wordRange struct {
	start int
	end   int
}

func findWords(chars []model.Character) []wordRange {
	words := []wordRange{}
	start := -1
	for i, c := range chars {
		if c.Char == ' ' {
			if start != -1 {
				words = append(words, wordRange{start: start, end: i})
				start = -1
			}
			continue
		}
		if start == -1 {
			start = i
		}
	}
	if start != -1 {
		words = append(words, wordRange{start: start, end: len(chars)})
	}
	return words
}

// wordForCursor returns the word containing cursor, or the next word when
// the cursor sits on a space.
func wordForCursor(words []wordRange, cursor int) *wordRange {
	if len(words) == 0 {
		return nil
	}
	for i, w := range words {
		if cursor < w.end {
			return &words[i]
		}
	}
	return &words[len(words)-1]
}

func renderStyledRunes(runes []styledRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteString(item.s)
	}
	return b.String()
}

func wrapStyledRunes(runes []styledRune, width int) string {
	if width <= 0 {
		return renderStyledRunes(runes)
	}
	var out strings.Builder
	line := make([]styledRune, 0, len(runes))
	lineWidth := 0
	lastSpace := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpace >= 0 {
				out.WriteString(renderStyledRunes(line[:lastSpace]))
				out.WriteRune('\n')
				line = append([]styledRune{}, line[lastSpace+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpace = lastSpaceIndex(line)
			} else {
				out.WriteString(renderStyledRunes(line))
				out.WriteRune('\n')
				line = line[:0]
				lineWidth = 0
				lastSpace = -1
				if item.isSpace {
					i++
				}
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpace = len(line) - 1
		}
		i++
	}
	out.WriteString(renderStyledRunes(line))
	return out.String()
}

func lineWidthOf(line []styledRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []styledRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
