package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hako/durafmt"

	"github.com/verte-zerg/typeflow/internal/model"
)

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(0, 2)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	valueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// RenderResult prints a result summary followed by its WPM chart.
func RenderResult(w io.Writer, r model.Result, useColor bool) error {
	render := func(s lipgloss.Style, v string) string {
		if !useColor {
			return v
		}
		return s.Render(v)
	}
	rows := [][2]string{
		{"WPM", render(valueStyle, fmt.Sprintf("%d", r.WPM))},
		{"Accuracy", render(valueStyle, fmt.Sprintf("%d%%", r.Accuracy))},
		{"Time", render(valueStyle, fmt.Sprintf("%ds", int(math.Round(r.TotalTime))))},
		{"Characters", render(valueStyle, fmt.Sprintf("%d", r.CharCount))},
		{"Correct", render(goodStyle, fmt.Sprintf("%d", r.Correct))},
		{"Incorrect", render(badStyle, fmt.Sprintf("%d", r.Incorrect))},
		{"Missed", render(labelStyle, fmt.Sprintf("%d", r.Missed))},
		{"Test", fmt.Sprintf("%s %d · %s", r.Settings.Mode, r.Settings.Duration, r.Settings.Difficulty)},
	}
	lines := []string{render(titleStyle, "Test Complete!"), ""}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("%s %s", render(labelStyle, fmt.Sprintf("%-11s", row[0]+":")), row[1]))
	}
	body := strings.Join(lines, "\n")
	if useColor {
		body = boxStyle.Render(body)
	}
	if _, err := fmt.Fprintln(w, body); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "id %s · %s\n\n", r.ID, r.CreatedAt.Local().Format(time.DateTime)); err != nil {
		return err
	}
	return RenderWPMChart(w, r.WPMHistory, 0, 0, useColor)
}

// RenderHistory prints stored results as a table, newest first, followed by
// a WPM trend line oldest to newest.
func RenderHistory(w io.Writer, results []model.Result, window int) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	tbl := table{
		headers:    []string{"Date", "Test", "WPM", "Acc", "Time", "ID"},
		rightAlign: map[int]bool{2: true, 3: true, 4: true},
	}
	for _, r := range results {
		tbl.rows = append(tbl.rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%s %d %s", r.Settings.Mode, r.Settings.Duration, r.Settings.Difficulty),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			fmt.Sprintf("%.0fs", r.TotalTime),
			shortID(r.ID),
		})
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if len(results) < 2 {
		return nil
	}
	wpms := make([]float64, len(results))
	for i, r := range results {
		wpms[len(results)-1-i] = float64(r.WPM)
	}
	_, err := fmt.Fprintf(w, "\nTrend (avg of %d): %s\n", max(window, 1), Sparkline(MovingAverage(wpms, window)))
	return err
}

// RenderUserStats prints a user's aggregate statistics.
func RenderUserStats(w io.Writer, userID string, us model.UserStats) error {
	total := durafmt.Parse(time.Duration(us.TotalTime * float64(time.Second))).
		LimitToUnit("hours").
		LimitFirstN(2)
	last := "never"
	if us.LastTestAt != nil {
		last = us.LastTestAt.Local().Format(time.DateTime)
	}
	tbl := table{rows: [][]string{
		{"User", userID},
		{"Tests", fmt.Sprintf("%d", us.TotalTests)},
		{"Best WPM", fmt.Sprintf("%d", us.BestWPM)},
		{"Avg WPM", fmt.Sprintf("%d", us.AverageWPM)},
		{"Avg Accuracy", fmt.Sprintf("%d%%", us.AverageAccuracy)},
		{"Time typed", total.String()},
		{"Last test", last},
	}}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
