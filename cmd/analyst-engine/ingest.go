// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/analyst-engine/internal/corpus"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Load documents into the corpus database",
	Long: `Ingest reads .txt and .md files from a directory, splits them into
passages on blank lines, and indexes them in the corpus SQLite database
with FTS5. Re-ingesting a file replaces its indexed passages.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := assistantConfig()

	store, err := corpus.Open(cfg.Retrieval)
	if err != nil {
		return fmt.Errorf("opening corpus: %w", err)
	}
	defer store.Close()

	summary, err := store.IngestDir(context.Background(), args[0], os.Stdout)
	if err != nil {
		return err
	}

	fmt.Printf("Ingested %d document(s), %d passage(s) (%d replaced)\n",
		summary.Ingested, summary.Passages, summary.Replaced)
	if summary.Failed > 0 {
		return fmt.Errorf("%d document(s) failed ingestion", summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
