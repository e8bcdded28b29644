package result

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/session"
)

func finishedSnapshot() session.Snapshot {
	return session.Snapshot{
		Settings: model.Settings{Mode: model.ModeWords, Duration: 2, Difficulty: model.DifficultyEasy},
		State:    session.StateFinished,
		Target:   "cat dog",
		Stats: model.Stats{
			WPM: 42, Accuracy: 100, Correct: 7, TotalTime: 2, CharCount: 7,
		},
		WPMHistory: []model.WPMSample{{Elapsed: 1, WPM: 36}, {Elapsed: 2, WPM: 42}},
	}
}

func TestProjectCopiesState(t *testing.T) {
	snap := finishedSnapshot()
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	r := Project(snap, now)

	if r.Stats != snap.Stats {
		t.Fatalf("stats not copied: %+v", r.Stats)
	}
	if r.Settings != snap.Settings {
		t.Fatalf("settings not copied: %+v", r.Settings)
	}
	if !r.CreatedAt.Equal(now) {
		t.Fatalf("unexpected timestamp %s", r.CreatedAt)
	}
	if _, err := uuid.Parse(r.ID); err != nil {
		t.Fatalf("id is not a uuid: %q", r.ID)
	}

	snap.WPMHistory[0].WPM = 999
	if r.WPMHistory[0].WPM != 36 {
		t.Fatalf("result must not alias snapshot history")
	}
}

func TestProjectMintsNewIDs(t *testing.T) {
	snap := finishedSnapshot()
	now := time.Now()
	a := Project(snap, now)
	b := Project(snap, now)
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q twice", a.ID)
	}
}
