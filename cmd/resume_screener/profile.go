package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/observability"
)

var profileJSON bool

var profileCmd = &cobra.Command{
	Use:   "profile <email>",
	Short: "Show the accumulated skill profile of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "Print the profile as JSON")
	rootCmd.AddCommand(profileCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	user, err := database.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user registered under %s", email)
	}

	profile, err := database.Get(ctx, user.ID)
	if err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%s has no skill profile yet", email)
	}

	if profileJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintProfile(profile)
	return nil
}
