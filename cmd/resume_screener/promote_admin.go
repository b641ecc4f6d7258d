package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/db"
)

var demoteAdmin bool

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <email>",
	Short: "Grant (or with --demote, revoke) the admin role",
	Long: "Grant the admin role to the user registered under email. The user must log in " +
		"again for the new role to appear in their token.",
	Args: cobra.ExactArgs(1),
	RunE: runPromoteAdmin,
}

func init() {
	promoteAdminCmd.Flags().BoolVar(&demoteAdmin, "demote", false, "Revoke the admin role instead")
	rootCmd.AddCommand(promoteAdminCmd)
}

func runPromoteAdmin(cmd *cobra.Command, args []string) error {
	email := strings.TrimSpace(args[0])
	if email == "" {
		return fmt.Errorf("email is required")
	}
	role := db.RoleAdmin
	if demoteAdmin {
		role = db.RoleUser
	}

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

	if err := database.SetRoleByEmail(ctx, email, role); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, role)
	return nil
}
