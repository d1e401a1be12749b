// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/analyst-engine/internal/archive"
	"github.com/pdiddy/analyst-engine/internal/assistant"
	"github.com/pdiddy/analyst-engine/internal/corpus"
	"github.com/pdiddy/analyst-engine/internal/llm"
	"github.com/pdiddy/analyst-engine/internal/memory"
	"github.com/pdiddy/analyst-engine/internal/tavily"
	"github.com/pdiddy/analyst-engine/internal/verify"
	"github.com/pdiddy/analyst-engine/internal/workflow"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question through the analysis pipeline",
	Long: `Ask runs a single question through the full pipeline and prints the
summary, confidence, and the step-by-step log. Conversation memory is
read before the run and updated after it, so consecutive asks build on
each other the same way a chat session does.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, cleanup, err := buildAssistant()
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := a.Process(context.Background(), question)
	if err != nil {
		return err
	}

	printResult(os.Stdout, result)
	return nil
}

// printResult writes one workflow result in the CLI's standard layout.
func printResult(w *os.File, result *types.WorkflowResult) {
	fmt.Fprintln(w, result.Summary)
	fmt.Fprintf(w, "\nConfidence: %.2f\n", result.Confidence)

	verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
	if verbose && len(result.WorkflowSteps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for _, step := range result.WorkflowSteps {
			fmt.Fprintf(w, "  %s\n", step)
		}
	}
}

// buildAssistant wires the corpus, memory, archive, and API clients into
// an assistant. The returned cleanup closes the underlying databases.
func buildAssistant() (*assistant.Assistant, func(), error) {
	cfg := assistantConfig()

	if cfg.AI.APIKey == "" {
		return nil, nil, fmt.Errorf("no OpenAI API key: set .secrets/%s or ai.api_key in config", "openai-api-key")
	}

	store, err := corpus.Open(cfg.Retrieval)
	if err != nil {
		return nil, nil, fmt.Errorf("opening corpus: %w", err)
	}

	mem, err := memory.Open(cfg.Memory.Dir)
	if err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("opening memory store: %w", err)
	}

	var sessions *archive.Store
	if cfg.Archive.DBPath != "" {
		sessions, err = archive.Open(cfg.Archive.DBPath)
		if err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("opening session archive: %w", err)
		}
	}

	httpClient := &http.Client{Timeout: cfg.Search.Timeout}

	completer := &llm.Client{Config: cfg.AI, HTTPClient: httpClient}

	verifier := &verify.Verifier{MaxResults: cfg.Search.MaxResults}
	if cfg.Search.APIKey != "" {
		verifier.Search = &tavily.Client{
			APIKey:     cfg.Search.APIKey,
			HTTPClient: httpClient,
			MaxRetries: cfg.AI.MaxRetries,
		}
	} else {
		fmt.Fprintln(os.Stderr, "No Tavily API key: web verification disabled")
	}

	engine := &workflow.Engine{
		Retriever: store,
		Completer: completer,
		Verifier:  verifier,
		Company:   cfg.Workflow.Company,
	}

	a := &assistant.Assistant{
		Memory:     mem,
		Engine:     engine,
		Archive:    sessions,
		RunTimeout: cfg.Workflow.RunTimeout,
	}

	cleanup := func() {
		store.Close()
		if sessions != nil {
			sessions.Close()
		}
	}
	return a, cleanup, nil
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "print the workflow step log after the answer")

	rootCmd.AddCommand(askCmd)
}
