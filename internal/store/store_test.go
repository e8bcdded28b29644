package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeflow/internal/model"
)

var base = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typeflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return st
}

func sampleResult(id string, at time.Time, mode model.Mode, wpm, acc int) model.Result {
	return model.Result{
		ID:        id,
		CreatedAt: at,
		Settings:  model.Settings{Mode: mode, Duration: 30, Difficulty: model.DifficultyEasy},
		Stats: model.Stats{
			WPM: wpm, Accuracy: acc, Correct: 100, Incorrect: 3, Missed: 1, TotalTime: 30, CharCount: 104,
		},
		WPMHistory: []model.WPMSample{{Elapsed: 1, WPM: wpm - 5}, {Elapsed: 2, WPM: wpm}},
	}
}

func TestFoldUserStats(t *testing.T) {
	first := FoldUserStats(model.UserStats{}, sampleResult("a", base, model.ModeTime, 40, 90))
	assert.Equal(t, 1, first.TotalTests)
	assert.Equal(t, 40, first.BestWPM)
	assert.Equal(t, 40, first.AverageWPM)
	assert.Equal(t, 90, first.AverageAccuracy)
	assert.InDelta(t, 30.0, first.TotalTime, 1e-9)
	require.NotNil(t, first.LastTestAt)
	assert.True(t, first.LastTestAt.Equal(base))

	second := FoldUserStats(first, sampleResult("b", base.Add(time.Minute), model.ModeTime, 61, 95))
	assert.Equal(t, 2, second.TotalTests)
	assert.Equal(t, 61, second.BestWPM)
	// (40 + 61) / 2 = 50.5 rounds half away from zero.
	assert.Equal(t, 51, second.AverageWPM)
	assert.Equal(t, 93, second.AverageAccuracy)
	assert.InDelta(t, 60.0, second.TotalTime, 1e-9)

	third := FoldUserStats(second, sampleResult("c", base.Add(2*time.Minute), model.ModeTime, 20, 80))
	assert.Equal(t, 61, third.BestWPM)
	assert.Equal(t, 41, third.AverageWPM)
}

func TestSaveResultCreatesProfileAndFolds(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r1", base, model.ModeTime, 40, 90)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r2", base.Add(time.Minute), model.ModeTime, 60, 100)))

	us, err := st.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, us.TotalTests)
	assert.Equal(t, 60, us.BestWPM)
	assert.Equal(t, 50, us.AverageWPM)
	assert.Equal(t, 95, us.AverageAccuracy)
	require.NotNil(t, us.LastTestAt)
	assert.True(t, us.LastTestAt.Equal(base.Add(time.Minute)))

	p, err := st.GetUserProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.UserID)
}

func TestSaveResultDuplicateIDRollsBack(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r1", base, model.ModeTime, 40, 90)))
	require.Error(t, st.SaveResult(ctx, "alice", sampleResult("r1", base.Add(time.Minute), model.ModeTime, 80, 90)))

	us, err := st.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, us.TotalTests)
	assert.Equal(t, 40, us.BestWPM)
}

func TestUserProfileUpsert(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.CreateUserProfile(ctx, model.UserProfile{UserID: "bob", DisplayName: "Bob", CreatedAt: base}))
	require.NoError(t, st.SaveResult(ctx, "bob", sampleResult("r1", base, model.ModeWords, 30, 88)))
	require.NoError(t, st.CreateUserProfile(ctx, model.UserProfile{UserID: "bob", Email: "bob@example.com"}))

	p, err := st.GetUserProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.DisplayName)
	assert.Equal(t, "bob@example.com", p.Email)
	assert.True(t, p.CreatedAt.Equal(base))

	us, err := st.GetUserStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, us.TotalTests)
}

func TestUnknownUser(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	_, err := st.GetUserStats(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = st.GetUserProfile(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFreshProfileHasNoLastTest(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.CreateUserProfile(ctx, model.UserProfile{UserID: "carol"}))
	us, err := st.GetUserStats(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, 0, us.TotalTests)
	assert.Nil(t, us.LastTestAt)
}

func TestListResultsFilters(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r1", base, model.ModeTime, 40, 90)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r2", base.Add(time.Hour), model.ModeWords, 50, 92)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("r3", base.Add(2*time.Hour), model.ModeTime, 55, 97)))
	require.NoError(t, st.SaveResult(ctx, "bob", sampleResult("r4", base.Add(3*time.Hour), model.ModeTime, 70, 99)))

	all, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r2", "r1"}, ids(all))
	assert.Equal(t, []model.WPMSample{{Elapsed: 1, WPM: 50}, {Elapsed: 2, WPM: 55}}, all[0].WPMHistory)
	assert.Equal(t, model.ModeTime, all[0].Settings.Mode)
	assert.Equal(t, 30, all[0].Settings.Duration)

	timed, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice", Mode: model.ModeTime})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids(timed))

	since := base.Add(90 * time.Minute)
	recent, err := st.ListResults(ctx, model.HistoryConfig{Since: &since})
	require.NoError(t, err)
	assert.Equal(t, []string{"r4", "r3"}, ids(recent))

	last, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice", Last: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"r3"}, ids(last))

	none, err := st.ListResults(ctx, model.HistoryConfig{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetResultByPrefix(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("abc123", base, model.ModeTime, 40, 90)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("abd456", base.Add(time.Minute), model.ModeTime, 45, 91)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("ab", base.Add(2*time.Minute), model.ModeTime, 50, 92)))

	r, err := st.GetResult(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc123", r.ID)
	assert.True(t, r.CreatedAt.Equal(base))

	exact, err := st.GetResult(ctx, "ab")
	require.NoError(t, err)
	assert.Equal(t, "ab", exact.ID)

	_, err = st.GetResult(ctx, "a")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = st.GetResult(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = st.GetResult(ctx, "a%")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func ids(results []model.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestListResultsOrdersWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	second := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("older", second, model.ModeTime, 40, 90)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("newer", second.Add(500*time.Millisecond), model.ModeTime, 45, 92)))
	require.NoError(t, st.SaveResult(ctx, "alice", sampleResult("newest", second.Add(500*time.Millisecond+123*time.Nanosecond), model.ModeTime, 50, 94)))

	all, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "newer", "older"}, ids(all))
	assert.True(t, all[1].CreatedAt.Equal(second.Add(500*time.Millisecond)))

	since, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice", Since: &second})
	require.NoError(t, err)
	assert.Len(t, since, 3)

	after := second.Add(time.Millisecond)
	later, err := st.ListResults(ctx, model.HistoryConfig{UserID: "alice", Since: &after})
	require.NoError(t, err)
	assert.Equal(t, []string{"newest", "newer"}, ids(later))
}

func TestFormatTimeIsFixedWidth(t *testing.T) {
	whole := formatTime(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	half := formatTime(time.Date(2026, 10, 18, 12, 0, 0, 5e8, time.UTC))
	assert.Len(t, half, len(whole))
	assert.Less(t, whole, half)

	parsed, err := time.Parse(time.RFC3339Nano, half)
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, time.Duration(parsed.Nanosecond()))
}
