package store

import (
	"math"

	"github.com/verte-zerg/typeflow/internal/model"
)

// FoldUserStats returns prev updated with one more result. Averages are
// rounded running means over all folded results.
func FoldUserStats(prev model.UserStats, r model.Result) model.UserStats {
	n := float64(prev.TotalTests)
	next := model.UserStats{
		TotalTests:      prev.TotalTests + 1,
		BestWPM:         max(prev.BestWPM, r.WPM),
		AverageWPM:      int(math.Round((float64(prev.AverageWPM)*n + float64(r.WPM)) / (n + 1))),
		AverageAccuracy: int(math.Round((float64(prev.AverageAccuracy)*n + float64(r.Accuracy)) / (n + 1))),
		TotalTime:       prev.TotalTime + r.TotalTime,
	}
	last := r.CreatedAt
	next.LastTestAt = &last
	return next
}
