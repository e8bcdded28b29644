// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/typeflow/internal/model"
)

const sparkChars = " .:-=+*#%@"

// charsPerWord is the standard word length used for WPM.
const charsPerWord = 5.0

// Compute derives statistics from character statuses and elapsed time.
func Compute(chars []model.Character, elapsed time.Duration) model.Stats {
	counts := lo.CountValuesBy(chars, func(c model.Character) model.CharStatus {
		return c.Status
	})
	correct := counts[model.StatusCorrect]
	incorrect := counts[model.StatusIncorrect]
	missed := counts[model.StatusMissed]
	total := correct + incorrect + missed
	return model.Stats{
		WPM:       WPM(correct, elapsed),
		Accuracy:  Accuracy(correct, total),
		Correct:   correct,
		Incorrect: incorrect,
		Missed:    missed,
		TotalTime: elapsed.Seconds(),
		CharCount: total,
	}
}

// WPM returns round((correct/5)/minutes), or 0 when no time has elapsed.
func WPM(correct int, elapsed time.Duration) int {
	minutes := elapsed.Minutes()
	if minutes <= 0 || correct <= 0 {
		return 0
	}
	return int(math.Round((float64(correct) / charsPerWord) / minutes))
}

// Accuracy returns round(100*correct/total), or 0 when total is 0.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// HistoryValues extracts the WPM values of a sample series.
func HistoryValues(history []model.WPMSample) []float64 {
	return lo.Map(history, func(s model.WPMSample, _ int) float64 {
		return float64(s.WPM)
	})
}
