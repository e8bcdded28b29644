package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/model"
	"github.com/verte-zerg/typeflow/internal/stats"
	"github.com/verte-zerg/typeflow/internal/store"
)

const (
	defaultHistoryLast = 20
	trendWindow        = 5
)

var (
	historySince string
	historyLast  int
	historyMode  string
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate stats for the current user",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()
	if err := app.requireUser(); err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	us, err := st.GetUserStats(context.Background(), app.userID)
	if errors.Is(err, store.ErrNotFound) {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "No results saved for %s yet.\n", app.userID); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load stats: %w", err)
	}
	if err := stats.RenderUserStats(cmd.OutOrStdout(), app.userID, us); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent results for the current user",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "only results at or after this date (e.g. 2026-10-01, \"Oct 1 2026\")")
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N results (0 for all)")
	cmd.Flags().StringVar(&historyMode, "mode", "", "mode filter: time or words")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()
	if err := app.requireUser(); err != nil {
		return err
	}

	cfg, err := historyConfig(app.userID, historySince, historyMode, historyLast)
	if err != nil {
		return err
	}

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	results, err := st.ListResults(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if err := stats.RenderHistory(cmd.OutOrStdout(), results, trendWindow); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func historyConfig(userID, since, mode string, last int) (model.HistoryConfig, error) {
	cfg := model.HistoryConfig{UserID: userID}
	if last < 0 {
		return cfg, fmt.Errorf("--last must be >= 0")
	}
	cfg.Last = last
	if strings.TrimSpace(mode) != "" {
		m, err := model.ParseMode(mode)
		if err != nil {
			return cfg, fmt.Errorf("invalid --mode: %w", err)
		}
		cfg.Mode = m
	}
	if strings.TrimSpace(since) != "" {
		parsed, err := dateparse.ParseIn(strings.TrimSpace(since), time.Local)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Since = &parsed
	}
	return cfg, nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one saved result with its WPM chart",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	r, err := st.GetResult(context.Background(), args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if err := stats.RenderResult(w, r, stats.UseColor(w)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
