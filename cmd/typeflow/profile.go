package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/typeflow/internal/model"
)

var (
	profileName  string
	profileEmail string
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Create or update the current user's profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileCmd,
	}
	cmd.Flags().StringVar(&profileName, "name", "", "display name (default: [user] name)")
	cmd.Flags().StringVar(&profileEmail, "email", "", "email (default: [user] email)")
	return cmd
}

func runProfileCmd(cmd *cobra.Command, _ []string) error {
	app, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer app.close()
	if err := app.requireUser(); err != nil {
		return err
	}
	applyStringConfig(cmd, "name", &profileName, app.fileCfg.User.Name)
	applyStringConfig(cmd, "email", &profileEmail, app.fileCfg.User.Email)

	st, err := app.openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx := context.Background()
	if err := st.CreateUserProfile(ctx, model.UserProfile{
		UserID:      app.userID,
		DisplayName: profileName,
		Email:       profileEmail,
		CreatedAt:   time.Now(),
	}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	p, err := st.GetUserProfile(ctx, app.userID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	app.logger.Debug("profile saved", "user", p.UserID)

	w := cmd.OutOrStdout()
	lines := []string{
		fmt.Sprintf("User:    %s", p.UserID),
		fmt.Sprintf("Name:    %s", p.DisplayName),
		fmt.Sprintf("Email:   %s", p.Email),
		fmt.Sprintf("Created: %s", p.CreatedAt.Local().Format(time.DateTime)),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
