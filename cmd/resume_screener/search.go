package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-screener/internal/db"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/profiles"
)

var (
	searchSkills string
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank stored candidates by skill and print them as JSON",
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchSkills, "skills", "s", "", "Comma-separated skills to search for (required)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "Print at most n candidates (0 prints all)")
	searchCmd.Flags().StringVar(&searchFormat, "format", "json", "Output format: json or text")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	query := profiles.ParseSkillQuery(searchSkills)
	if len(query) == 0 {
		return fmt.Errorf("at least one skill is required (use --skills)")
	}
	if searchLimit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	if searchFormat != "json" && searchFormat != "text" {
		return fmt.Errorf("unknown --format %q (want json or text)", searchFormat)
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

	svc := profiles.NewService(database, database,
		profiles.WithLookupConcurrency(cfg.Search.LookupConcurrency))
	matches, err := svc.Search(ctx, query)
	if err != nil {
		return err
	}
	if searchFormat == "text" {
		observability.NewPrinter(cmd.OutOrStdout()).WithMaxItems(searchLimit).PrintCandidates(query, matches)
		return nil
	}
	return printMatches(cmd, matches, searchLimit)
}

func printMatches(cmd *cobra.Command, matches []profiles.CandidateMatch, limit int) error {
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(matches)
}
