// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assistant is the caller around the workflow engine: it answers
// memory questions directly, classifies topics, harvests preferences, and
// updates the tiered memory store before and after each run.
// Implements: prd006-assistant (R1-R4).
package assistant

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pdiddy/analyst-engine/internal/archive"
	"github.com/pdiddy/analyst-engine/internal/memory"
	"github.com/pdiddy/analyst-engine/internal/workflow"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

// defaultRunTimeout is the wall-clock budget for a whole run. An expired
// run is discarded, partial step log included; nothing is salvaged (R4.2).
const defaultRunTimeout = 120 * time.Second

// memoryKeywords short-circuit a query to conversation history instead of
// running the engine (R1.1).
var memoryKeywords = []string{
	"previous question",
	"what did i ask",
	"last question",
	"earlier",
	"before",
}

// topicKeywords classify queries for behavior tracking. Order fixes the
// priority when a query matches more than one topic (R2.1).
var topicKeywords = []struct {
	topic    string
	keywords []string
}{
	{"financial", []string{"profit", "revenue", "margin", "income", "financial"}},
	{"aerospace", []string{"aerospace", "aviation", "aircraft"}},
	{"segment", []string{"segment", "division", "business unit"}},
	{"comparison", []string{"compare", "versus", "vs", "difference", "yoy"}},
}

// Assistant ties the engine, the memory store, and the optional session
// archive together for one user.
type Assistant struct {
	Memory *memory.Store
	Engine *workflow.Engine

	// Archive records completed runs when non-nil. Archive failures are
	// warnings, never run failures.
	Archive *archive.Store

	// RunTimeout bounds one whole run. Zero means defaultRunTimeout.
	RunTimeout time.Duration
}

// Process answers one user query. Memory questions are served from the
// short-term window without a run; everything else goes through the
// engine with memory updated on both sides of the run.
func (a *Assistant) Process(ctx context.Context, query string) (*types.WorkflowResult, error) {
	if isMemoryQuery(query) {
		return a.answerFromMemory(), nil
	}

	if err := a.Memory.AddShortTerm("user", query); err != nil {
		return nil, fmt.Errorf("recording query: %w", err)
	}
	contextSummary := a.Memory.ContextSummary()

	topic := classifyTopic(query)
	if err := a.Memory.TrackBehavior(query, topic); err != nil {
		return nil, fmt.Errorf("tracking behavior: %w", err)
	}
	a.harvestPreferences(query)

	timeout := a.RunTimeout
	if timeout <= 0 {
		timeout = defaultRunTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := a.Engine.Run(runCtx, query, contextSummary)
	if err != nil {
		return nil, err
	}

	if err := a.Memory.AddShortTerm("assistant", result.Summary); err != nil {
		return nil, fmt.Errorf("recording summary: %w", err)
	}

	if a.Archive != nil {
		if err := a.Archive.Record(ctx, query, result); err != nil {
			fmt.Fprintf(os.Stderr, "warning: session archive failed: %v\n", err)
		}
	}

	return result, nil
}

// isMemoryQuery reports whether the query asks about conversation history.
func isMemoryQuery(query string) bool {
	queryLower := strings.ToLower(query)
	for _, kw := range memoryKeywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

// answerFromMemory builds a history response without running the engine
// (R1.2). The memory store is not mutated: asking about the conversation is
// not part of it.
func (a *Assistant) answerFromMemory() *types.WorkflowResult {
	previous := a.Memory.PreviousQuestion()
	history := a.Memory.RecentHistory(5)

	summary := fmt.Sprintf("Your previous question was: '%s'. ", previous)
	if len(history) > 2 {
		summary += fmt.Sprintf("We've had %d exchanges in this session. ", len(history)/2)
		summary += "Would you like me to elaborate on any of our previous discussions?"
	}

	return &types.WorkflowResult{
		Summary:       summary,
		WorkflowSteps: []string{"Retrieved conversation history"},
		Validation: types.ValidationResult{
			IsValid:    true,
			Confidence: 1.0,
		},
		Confidence: 1.0,
	}
}

// classifyTopic assigns a query to the first matching topic, defaulting to
// "general".
func classifyTopic(query string) string {
	queryLower := strings.ToLower(query)
	for _, entry := range topicKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(queryLower, kw) {
				return entry.topic
			}
		}
	}
	return "general"
}

// harvestPreferences mines a query for durable signals and stores them in
// long-term memory (R3). Failed writes warn rather than abort: preference
// capture is best-effort.
func (a *Assistant) harvestPreferences(query string) {
	queryLower := strings.ToLower(query)

	update := func(key, value string) {
		if err := a.Memory.UpdateLongTerm(key, value); err != nil {
			fmt.Fprintf(os.Stderr, "warning: updating long-term memory: %v\n", err)
		}
	}

	if containsAny(queryLower, "investment", "thesis", "analyzing") {
		update(types.KeyResearchThemes, "investment_analysis")
		update(types.KeyExpertiseLevel, "advanced")
	}
	if strings.Contains(queryLower, "cloud software") || strings.Contains(queryLower, "saas") {
		update(types.KeyResearchThemes, "cloud_software")
	}
	if strings.Contains(queryLower, "aerospace") {
		update(types.KeyResearchThemes, "aerospace")
	}

	if containsAny(queryLower, "detailed", "comprehensive", "in-depth") {
		update(types.KeyExpertiseLevel, "advanced")
	} else if containsAny(queryLower, "simple", "basic", "overview") {
		update(types.KeyExpertiseLevel, "beginner")
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
