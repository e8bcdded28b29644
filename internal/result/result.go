// Package result freezes finished sessions into immutable results.
package result

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/session"
)

// Project builds a Result from a session snapshot. Every call mints a new id
// and stamps it with now; the snapshot's slices are copied.
func Project(snap session.Snapshot, now time.Time) model.Result {
	history := make([]model.WPMSample, len(snap.WPMHistory))
	copy(history, snap.WPMHistory)
	return model.Result{
		ID:         uuid.NewString(),
		CreatedAt:  now,
		Settings:   snap.Settings,
		Stats:      snap.Stats,
		WPMHistory: history,
	}
}
