// Package main provides the CLI entrypoint for typeflow.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/config"
	"github.com/verte-zerg/typeflow/internal/logging"
	"github.com/verte-zerg/typeflow/internal/store"
)

var (
	rootUser     string
	rootConfig   string
	rootDB       string
	rootLogLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typeflow",
		Short:         "Typing test engine",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&rootUser, "user", "", "user id results are saved for (default: [user] id)")
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "config file path (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&rootDB, "db", "", "SQLite database path (default: XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newTextCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// appContext carries what every command resolves once at startup.
type appContext struct {
	fileCfg   config.FileConfig
	logger    *slog.Logger
	logCloser io.Closer
	userID    string
	dbPath    string
}

func newAppContext(cmd *cobra.Command) (*appContext, error) {
	cfgPath := rootConfig
	if cfgPath == "" {
		cfgPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logLevel := ""
	if fileCfg.Log.Level != nil {
		logLevel = *fileCfg.Log.Level
	}
	if cmd.Flags().Changed("log-level") {
		logLevel = rootLogLevel
	}
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	logFile := ""
	if fileCfg.Log.File != nil {
		logFile = strings.TrimSpace(*fileCfg.Log.File)
		if logFile == "default" {
			logFile = config.DefaultLogPath()
		}
	}
	logger, closer := logging.New(logFile, level, cmd.ErrOrStderr())

	userID := rootUser
	if !cmd.Flags().Changed("user") && fileCfg.User.ID != nil {
		userID = *fileCfg.User.ID
	}
	dbPath := rootDB
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}

	return &appContext{
		fileCfg:   fileCfg,
		logger:    logger,
		logCloser: closer,
		userID:    strings.TrimSpace(userID),
		dbPath:    dbPath,
	}, nil
}

func (a *appContext) openStore() (*store.Store, error) {
	st, err := store.Open(a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func (a *appContext) requireUser() error {
	if a.userID == "" {
		return fmt.Errorf("no user configured: pass --user or set [user] id in the config file")
	}
	return nil
}

func (a *appContext) close() {
	if cerr := a.logCloser.Close(); cerr != nil {
		logErrf("failed to close log file: %v\n", cerr)
	}
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
