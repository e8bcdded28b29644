package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/generator"
	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/replay"
	"github.com/verte-zerg/typeflow/internal/stats"
	"github.com/verte-zerg/typeflow/internal/wordlist"
)

var (
	testMode       string
	testDuration   int
	testDifficulty string
	testWordList   string
	testSeed       int64

	replayNoSave   bool
	replayFinalize bool
	replayShowText bool
)

var errNotFinished = errors.New("session did not finish")

func addTestFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&testMode, "mode", string(config.DefaultMode), "test mode: time or words")
	cmd.Flags().IntVar(&testDuration, "duration", config.DefaultDuration,
		fmt.Sprintf("seconds in time mode %v, words in words mode %v",
			config.DurationPresets[model.ModeTime], config.DurationPresets[model.ModeWords]))
	cmd.Flags().StringVar(&testDifficulty, "difficulty", string(config.DefaultDifficulty), "difficulty: easy, medium or hard")
	cmd.Flags().StringVar(&testWordList, "wordlist", "", "word list file, one word per line (default: built-in)")
}

// resolveSettings layers flags over the [test] config section over defaults.
// The result is not validated: replay scripts may still override it.
func resolveSettings(cmd *cobra.Command, fileCfg config.FileConfig) (model.Settings, error) {
	applyStringConfig(cmd, "mode", &testMode, fileCfg.Test.Mode)
	applyIntConfig(cmd, "duration", &testDuration, fileCfg.Test.Duration)
	applyStringConfig(cmd, "difficulty", &testDifficulty, fileCfg.Test.Difficulty)
	applyStringConfig(cmd, "wordlist", &testWordList, fileCfg.Test.WordList)

	mode, err := model.ParseMode(testMode)
	if err != nil {
		return model.Settings{}, fmt.Errorf("invalid --mode: %w", err)
	}
	difficulty, err := model.ParseDifficulty(testDifficulty)
	if err != nil {
		return model.Settings{}, fmt.Errorf("invalid --difficulty: %w", err)
	}
	return model.Settings{Mode: mode, Duration: testDuration, Difficulty: difficulty}, nil
}

func loadWordList() ([]string, error) {
	if strings.TrimSpace(testWordList) == "" {
		return wordlist.Default(), nil
	}
	words, err := wordlist.LoadWords(testWordList)
	if err != nil {
		return nil, fmt.Errorf("failed to load word list %s: %w", testWordList, err)
	}
	return words, nil
}

func newTextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "text",
		Short: "Print a generated test text",
		Args:  cobra.NoArgs,
		RunE:  runTextCmd,
	}
	addTestFlags(cmd)
	cmd.Flags().Int64Var(&testSeed, "seed", 0, "generator seed (default: random)")
	return cmd
}

func runTextCmd(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	settings, err := resolveSettings(cmd, app.fileCfg)
	if err != nil {
		return err
	}
	if err := config.ValidateSettings(settings); err != nil {
		return err
	}
	words, err := loadWordList()
	if err != nil {
		return err
	}
	seed := time.Now().UnixNano()
	if cmd.Flags().Changed("seed") {
		seed = testSeed
	}
	gen := generator.NewWithWords(words, rand.NewSource(seed))
	text := gen.Generate(generator.WordCount(settings), settings.Difficulty)
	app.logger.Debug("generated text", "words", generator.WordCount(settings), "seed", seed)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), text); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Run a recorded input script through a typing session",
		Args:  cobra.ExactArgs(1),
		RunE:  runReplayCmd,
	}
	addTestFlags(cmd)
	cmd.Flags().BoolVar(&replayNoSave, "no-save", false, "do not save the result")
	cmd.Flags().BoolVar(&replayFinalize, "finalize", false, "end the session after the last event if it is still running")
	cmd.Flags().BoolVar(&replayShowText, "show-text", false, "print the target text colored by character status")
	return cmd
}

func runReplayCmd(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	script, err := replay.Load(args[0])
	if err != nil {
		return err
	}
	settings, err := resolveSettings(cmd, app.fileCfg)
	if err != nil {
		return err
	}
	words, err := loadWordList()
	if err != nil {
		return err
	}

	out, err := replay.Run(script, settings, replay.Options{
		Words:    words,
		Finalize: replayFinalize,
		Logger:   app.logger,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	useColor := stats.UseColor(w)
	if replayShowText {
		text := stats.RenderText(out.Snapshot.Characters, -1, stats.TerminalWidth(), useColor)
		if _, err := fmt.Fprintf(w, "%s\n\n", text); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if out.Result == nil {
		logErrf("Session is %s after the last event; pass --finalize to end it.\n", out.Snapshot.State)
		return errNotFinished
	}
	if err := stats.RenderResult(w, *out.Result, useColor); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if replayNoSave {
		return nil
	}
	if app.userID == "" {
		app.logger.Info("no user configured, result not saved", "result", out.Result.ID)
		return nil
	}
	st, err := app.openStore()
	if err != nil {
		app.logger.Warn("result not saved", "result", out.Result.ID, "err", err)
		return err
	}
	defer closeStore(st)
	if err := st.SaveResult(context.Background(), app.userID, *out.Result); err != nil {
		app.logger.Warn("result not saved", "result", out.Result.ID, "err", err)
		return fmt.Errorf("failed to save result: %w", err)
	}
	app.logger.Info("result saved", "user", app.userID, "result", out.Result.ID)
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
