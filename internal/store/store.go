// Package store handles SQLite persistence of results and user aggregates.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typeflow/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrNotFound is returned when a user or result does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps SQLite access for results and user profiles.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			total_tests INTEGER NOT NULL DEFAULT 0,
			best_wpm INTEGER NOT NULL DEFAULT 0,
			average_wpm INTEGER NOT NULL DEFAULT 0,
			average_accuracy INTEGER NOT NULL DEFAULT 0,
			total_time REAL NOT NULL DEFAULT 0,
			last_test_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			duration INTEGER NOT NULL,
			difficulty TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			missed INTEGER NOT NULL,
			total_time REAL NOT NULL,
			char_count INTEGER NOT NULL,
			wpm_history TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_user_created ON results(user_id, created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateUserProfile inserts a profile with zeroed aggregates. An existing
// profile keeps its aggregates; non-empty name and email are updated.
func (s *Store) CreateUserProfile(ctx context.Context, p model.UserProfile) error {
	if p.UserID == "" {
		return fmt.Errorf("user id is empty")
	}
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, display_name, email, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			display_name = CASE WHEN excluded.display_name <> '' THEN excluded.display_name ELSE users.display_name END,
			email = CASE WHEN excluded.email <> '' THEN excluded.email ELSE users.email END`,
		p.UserID, p.DisplayName, p.Email, formatTime(createdAt))
	return err
}

// GetUserProfile returns the profile for userID.
func (s *Store) GetUserProfile(ctx context.Context, userID string) (model.UserProfile, error) {
	var p model.UserProfile
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, display_name, email, created_at FROM users WHERE id = ?`, userID).
		Scan(&p.UserID, &p.DisplayName, &p.Email, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserProfile{}, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}
	if err != nil {
		return model.UserProfile{}, err
	}
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return model.UserProfile{}, err
	}
	return p, nil
}

// SaveResult stores a result for userID and folds it into the user's
// aggregates in one transaction. A missing profile is created.
func (s *Store) SaveResult(ctx context.Context, userID string, r model.Result) (err error) {
	if userID == "" {
		return fmt.Errorf("user id is empty")
	}
	history, err := json.Marshal(r.WPMHistory)
	if err != nil {
		return fmt.Errorf("failed to encode wpm history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO results (id, user_id, created_at, mode, duration, difficulty, wpm, accuracy, correct, incorrect, missed, total_time, char_count, wpm_history)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		userID,
		formatTime(r.CreatedAt),
		string(r.Settings.Mode),
		r.Settings.Duration,
		string(r.Settings.Difficulty),
		r.WPM,
		r.Accuracy,
		r.Correct,
		r.Incorrect,
		r.Missed,
		r.TotalTime,
		r.CharCount,
		string(history),
	); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, created_at) VALUES (?, ?)`,
		userID, formatTime(r.CreatedAt)); err != nil {
		return err
	}
	prev, err := scanUserStats(tx.QueryRowContext(ctx, userStatsQuery, userID))
	if err != nil {
		return err
	}
	next := FoldUserStats(prev, r)
	if _, err = tx.ExecContext(ctx,
		`UPDATE users SET total_tests = ?, best_wpm = ?, average_wpm = ?, average_accuracy = ?, total_time = ?, last_test_at = ?
		 WHERE id = ?`,
		next.TotalTests, next.BestWPM, next.AverageWPM, next.AverageAccuracy, next.TotalTime,
		formatTime(*next.LastTestAt), userID); err != nil {
		return err
	}
	return tx.Commit()
}

const userStatsQuery = `SELECT total_tests, best_wpm, average_wpm, average_accuracy, total_time, last_test_at
	FROM users WHERE id = ?`

// GetUserStats returns the running aggregates for userID.
func (s *Store) GetUserStats(ctx context.Context, userID string) (model.UserStats, error) {
	us, err := scanUserStats(s.db.QueryRowContext(ctx, userStatsQuery, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.UserStats{}, fmt.Errorf("user %q: %w", userID, ErrNotFound)
	}
	return us, err
}

func scanUserStats(row *sql.Row) (model.UserStats, error) {
	var us model.UserStats
	var last sql.NullString
	if err := row.Scan(&us.TotalTests, &us.BestWPM, &us.AverageWPM, &us.AverageAccuracy, &us.TotalTime, &last); err != nil {
		return model.UserStats{}, err
	}
	if last.Valid {
		parsed, err := time.Parse(time.RFC3339Nano, last.String)
		if err != nil {
			return model.UserStats{}, err
		}
		us.LastTestAt = &parsed
	}
	return us, nil
}

const resultColumns = `id, created_at, mode, duration, difficulty, wpm, accuracy, correct, incorrect, missed, total_time, char_count, wpm_history`

// ListResults returns results matching cfg, newest first.
func (s *Store) ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.UserID != "" {
		clauses = append(clauses, "user_id = ?")
		args = append(args, cfg.UserID)
	}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(cfg.Mode))
	}
	if cfg.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT %s FROM results WHERE %s ORDER BY created_at DESC`,
		resultColumns, strings.Join(clauses, " AND "))
	if cfg.Last > 0 {
		query += " LIMIT ?"
		args = append(args, cfg.Last)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetResult returns the result whose id equals or starts with id. A prefix
// matching more than one result is an error.
func (s *Store) GetResult(ctx context.Context, id string) (model.Result, error) {
	if id == "" {
		return model.Result{}, fmt.Errorf("result id is empty")
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM results WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`, resultColumns),
		id, escapeLike(id)+"%")
	if err != nil {
		return model.Result{}, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var found []model.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return model.Result{}, err
		}
		if r.ID == id {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return model.Result{}, err
	}
	switch len(found) {
	case 0:
		return model.Result{}, fmt.Errorf("result %q: %w", id, ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return model.Result{}, fmt.Errorf("result id %q is ambiguous", id)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (model.Result, error) {
	var r model.Result
	var createdAt, mode, difficulty, history string
	if err := row.Scan(&r.ID, &createdAt, &mode, &r.Settings.Duration, &difficulty,
		&r.WPM, &r.Accuracy, &r.Correct, &r.Incorrect, &r.Missed, &r.TotalTime, &r.CharCount, &history); err != nil {
		return model.Result{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Result{}, err
	}
	r.CreatedAt = parsed
	r.Settings.Mode = model.Mode(mode)
	r.Settings.Difficulty = model.Difficulty(difficulty)
	if err := json.Unmarshal([]byte(history), &r.WPMHistory); err != nil {
		return model.Result{}, fmt.Errorf("failed to decode wpm history for %s: %w", r.ID, err)
	}
	return r, nil
}

// timeLayout has a fixed-width fraction so text ordering matches time
// ordering. time.RFC3339Nano parses it back.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime stores times in UTC with timeLayout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
