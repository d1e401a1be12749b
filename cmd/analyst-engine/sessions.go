// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/analyst-engine/internal/archive"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archived workflow runs",
	Long: `Sessions lists completed runs from the session archive, most recent
first: when it ran, the question, the confidence, and the summary.`,
	RunE: runSessions,
}

func runSessions(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	cfg := assistantConfig()
	if cfg.Archive.DBPath == "" {
		return fmt.Errorf("session archive disabled: set archive.db_path in config")
	}

	store, err := archive.Open(cfg.Archive.DBPath)
	if err != nil {
		return fmt.Errorf("opening session archive: %w", err)
	}
	defer store.Close()

	sessions, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No archived sessions.")
		return nil
	}

	for _, s := range sessions {
		summary := s.Summary
		if len(summary) > 120 {
			summary = summary[:117] + "..."
		}
		fmt.Printf("[%d] %s  (confidence %.2f)\n", s.ID, s.CreatedAt.Format("2006-01-02 15:04"), s.Confidence)
		fmt.Printf("  Q: %s\n", s.Query)
		fmt.Printf("  A: %s\n\n", summary)
	}
	return nil
}

func init() {
	sessionsCmd.Flags().Int("limit", 10, "maximum number of sessions to list")

	rootCmd.AddCommand(sessionsCmd)
}
