package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/model"
)

const catDogScript = `
mode = "words"
duration = 2
text = "cat dog"

[[event]]
at = "0s"
input = "cat"

[[event]]
at = "3s"
input = "cat dog"
`

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", defaultConfigTemplate())
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Test.Mode)
	assert.Nil(t, cfg.User.ID)
	assert.Nil(t, cfg.Log.File)
}

func TestHistoryConfig(t *testing.T) {
	cfg, err := historyConfig("alice", "2026-10-01", "words", 5)
	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.UserID)
	assert.Equal(t, model.ModeWords, cfg.Mode)
	assert.Equal(t, 5, cfg.Last)
	require.NotNil(t, cfg.Since)
	assert.True(t, cfg.Since.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.Local)))

	_, err = historyConfig("", "", "sprint", 0)
	assert.Error(t, err)
	_, err = historyConfig("", "2026-13-45", "", 0)
	assert.Error(t, err)
	_, err = historyConfig("", "", "", -1)
	assert.Error(t, err)
}

func TestTextCommandUsesSeedAndConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.toml", "[test]\nmode = \"words\"\nduration = 10\n")

	first, err := runCLI(t, "text", "--config", cfgPath, "--seed", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(first), 10)

	second, err := runCLI(t, "text", "--config", cfgPath, "--seed", "3")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	short, err := runCLI(t, "text", "--config", cfgPath, "--seed", "3", "--duration", "4")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(short), 4)
}

func TestTextCommandRejectsBadSettings(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.toml")
	_, err := runCLI(t, "text", "--config", cfgPath, "--duration", "0")
	assert.Error(t, err)
	_, err = runCLI(t, "text", "--config", cfgPath, "--mode", "sprint")
	assert.Error(t, err)
}

func TestReplaySavesAndHistoryLists(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "absent.toml")
	dbPath := filepath.Join(dir, "typeflow.db")
	script := writeFile(t, dir, "run.toml", catDogScript)
	common := []string{"--config", cfgPath, "--db", dbPath, "--user", "alice"}

	out, err := runCLI(t, append([]string{"replay", script}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Test Complete!")
	assert.Contains(t, out, "words 2 · easy")

	out, err = runCLI(t, append([]string{"history"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "words 2 easy")
	assert.Contains(t, out, "100%")

	out, err = runCLI(t, append([]string{"stats"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Regexp(t, `Tests\s+1`, out)
}

func TestReplayNoSave(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "absent.toml")
	dbPath := filepath.Join(dir, "typeflow.db")
	script := writeFile(t, dir, "run.toml", catDogScript)

	_, err := runCLI(t, "replay", script, "--config", cfgPath, "--db", dbPath, "--user", "bob", "--no-save")
	require.NoError(t, err)

	out, err := runCLI(t, "stats", "--config", cfgPath, "--db", dbPath, "--user", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "No results saved for bob yet.")
}

func TestReplayUnfinishedSession(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "absent.toml")
	script := writeFile(t, dir, "run.toml", "text = \"cat dog\"\nmode = \"words\"\n\n[[event]]\nat = \"0s\"\ninput = \"ca\"\n")

	_, err := runCLI(t, "replay", script, "--config", cfgPath, "--no-save")
	assert.True(t, errors.Is(err, errNotFinished))

	out, err := runCLI(t, "replay", script, "--config", cfgPath, "--no-save", "--finalize", "--show-text")
	require.NoError(t, err)
	assert.Contains(t, out, "cat dog")
	assert.Contains(t, out, "Test Complete!")
}

func TestStatsRequiresUser(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "absent.toml")
	_, err := runCLI(t, "stats", "--config", cfgPath)
	assert.ErrorContains(t, err, "no user configured")
}

func TestReplayScriptSettingsOverrideFlags(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "absent.toml")
	script := writeFile(t, dir, "run.toml", catDogScript)

	out, err := runCLI(t, "replay", script, "--config", cfgPath, "--no-save", "--duration", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "words 2 · easy")

	bare := writeFile(t, dir, "bare.toml", "text = \"cat\"\n\n[[event]]\nat = \"0s\"\ninput = \"c\"\n")
	_, err = runCLI(t, "replay", bare, "--config", cfgPath, "--no-save", "--duration", "0")
	assert.ErrorContains(t, err, "duration")
}

func TestHistoryRequiresUser(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "absent.toml")
	_, err := runCLI(t, "history", "--config", cfgPath, "--db", filepath.Join(dir, "typeflow.db"))
	assert.ErrorContains(t, err, "no user configured")
}
