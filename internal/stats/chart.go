package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"golang.org/x/term"

	"github.com/verte-zerg/typeflow/internal/model"
)

const (
	defaultChartHeight  = 8
	minChartWidth       = 10
	terminalWidthBackup = 80
	brailleBase         = 0x2800
)

var chartLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))

// RenderWPMChart draws WPM over elapsed time as a braille line chart.
// A width or height of zero picks a size from the terminal.
func RenderWPMChart(w io.Writer, history []model.WPMSample, width, height int, useColor bool) error {
	if len(history) < 2 {
		_, err := fmt.Fprintln(w, "Not enough samples for a WPM chart.")
		return err
	}
	if height <= 0 {
		height = defaultChartHeight
	}

	top := max(1, int(lo.Max(HistoryValues(history))))
	labels := chartLabels(top, height)
	labelWidth := len(strconv.Itoa(top))
	if width <= 0 {
		width = ChartWidthFor(TerminalWidth(), labelWidth)
	}
	width = max(width, minChartWidth)

	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	dotRows := height * 4
	prevX, prevY := -1, -1
	for x, v := range resampleByTime(history, width) {
		py := int(math.Round((1 - v/float64(top)) * float64(dotRows-1)))
		py = max(0, min(py, dotRows-1))
		px := x * 2
		if prevX < 0 {
			setDot(cells, px, py)
		} else {
			bresenham(prevX, prevY, px, py, func(dx, dy int) { setDot(cells, dx, dy) })
		}
		prevX, prevY = px, py
	}

	if _, err := fmt.Fprintln(w, "WPM over time"); err != nil {
		return err
	}
	for y, row := range cells {
		var line strings.Builder
		for _, mask := range row {
			line.WriteRune(rune(brailleBase + int(mask)))
		}
		plot := line.String()
		if useColor {
			plot = chartLineStyle.Render(plot)
		}
		if _, err := fmt.Fprintf(w, "%*s │%s\n", labelWidth, labels[y], plot); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%*s └%s\n", labelWidth, "", strings.Repeat("─", width)); err != nil {
		return err
	}
	first := fmt.Sprintf("%.0fs", history[0].Elapsed)
	last := fmt.Sprintf("%.0fs", history[len(history)-1].Elapsed)
	gap := max(1, width-len(first)-len(last))
	_, err := fmt.Fprintf(w, "%*s  %s%s%s\n", labelWidth, "", first, strings.Repeat(" ", gap), last)
	return err
}

// ChartWidthFor returns the plot width that fits next to a y-axis label of
// labelWidth runes within totalWidth columns.
func ChartWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		return minChartWidth
	}
	return max(totalWidth-labelWidth-2, minChartWidth)
}

func chartLabels(top, height int) []string {
	labels := make([]string, height)
	labels[0] = strconv.Itoa(top)
	if height > 2 {
		labels[height/2] = strconv.Itoa(top / 2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

// resampleByTime interpolates WPM at width evenly spaced instants between the
// first and last sample.
func resampleByTime(history []model.WPMSample, width int) []float64 {
	out := make([]float64, width)
	start := history[0].Elapsed
	span := history[len(history)-1].Elapsed - start
	j := 0
	for x := range out {
		t := start
		if width > 1 {
			t += span * float64(x) / float64(width-1)
		}
		for j < len(history)-2 && history[j+1].Elapsed < t {
			j++
		}
		a, b := history[j], history[j+1]
		frac := 0.0
		if b.Elapsed > a.Elapsed {
			frac = (t - a.Elapsed) / (b.Elapsed - a.Elapsed)
		}
		frac = math.Max(0, math.Min(1, frac))
		out[x] = float64(a.WPM) + (float64(b.WPM)-float64(a.WPM))*frac
	}
	return out
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// Dot bit layout of a braille cell, indexed by [x][y].
var brailleBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if y < 0 || x < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= brailleBits[x%2][y%4]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// UseColor reports whether colored output should be written to w.
func UseColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
