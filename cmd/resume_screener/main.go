// Package main provides the entry point for the Resume Screener API server
// and its admin commands.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "resume_screener",
	Short: "Resume Screener HTTP API Server",
	Long: "Resume Screener scores uploaded resumes against a job description with Gemini, " +
		"accumulates each user's skills and lets admins search candidates by skill.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (default ./config.yaml if present)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads configuration and requires a database URL, which every
// subcommand needs.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg, nil
}
