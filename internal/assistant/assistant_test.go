// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assistant

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/analyst-engine/internal/archive"
	"github.com/pdiddy/analyst-engine/internal/memory"
	"github.com/pdiddy/analyst-engine/internal/verify"
	"github.com/pdiddy/analyst-engine/internal/workflow"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

// --- mocks ---

type stubCompleter struct {
	calls int
	delay time.Duration
}

func (c *stubCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.calls++
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.delay):
		}
	}
	if strings.Contains(prompt, "Summarizer Agent") {
		return "The final answer.", nil
	}
	// Planner and validator prompts both get unparseable text, exercising
	// the engine's fallbacks.
	return "plain text", nil
}

type stubRetriever struct{}

func (stubRetriever) Query(_ context.Context, _ string) (types.RetrievedAnswer, error) {
	return types.RetrievedAnswer{Answer: "A retrieved passage.", SourceCount: 1}, nil
}

func testAssistant(t *testing.T, completer *stubCompleter) *Assistant {
	t.Helper()
	mem, err := memory.Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &Assistant{
		Memory: mem,
		Engine: &workflow.Engine{
			Retriever: stubRetriever{},
			Completer: completer,
			Verifier:  &verify.Verifier{},
		},
	}
}

// --- memory short-circuit ---

func TestProcessMemoryQuestion(t *testing.T) {
	completer := &stubCompleter{}
	a := testAssistant(t, completer)

	a.Memory.AddShortTerm("user", "How did margins develop?")
	a.Memory.AddShortTerm("assistant", "They grew.")

	result, err := a.Process(context.Background(), "What did I ask before?")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if completer.calls != 0 {
		t.Errorf("engine ran %d completions, want none for a memory question", completer.calls)
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", result.Confidence)
	}
	if len(result.WorkflowSteps) != 1 || result.WorkflowSteps[0] != "Retrieved conversation history" {
		t.Errorf("WorkflowSteps = %v", result.WorkflowSteps)
	}
	if !strings.Contains(result.Summary, "How did margins develop?") {
		t.Errorf("Summary = %q, want it to quote the previous question", result.Summary)
	}

	// The memory question itself is not recorded.
	if len(a.Memory.RecentHistory(0)) != 2 {
		t.Errorf("memory grew to %d entries, want unchanged 2", len(a.Memory.RecentHistory(0)))
	}
}

func TestProcessMemoryQuestionEmptyHistory(t *testing.T) {
	a := testAssistant(t, &stubCompleter{})

	result, err := a.Process(context.Background(), "what was my previous question?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result.Summary, "No previous question found") {
		t.Errorf("Summary = %q, want the sentinel", result.Summary)
	}
}

func TestIsMemoryQuery(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"What did I ask about margins?", true},
		{"Repeat my LAST QUESTION please", true},
		{"You mentioned something earlier", true},
		{"How did Aerospace revenue develop?", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isMemoryQuery(tt.query); got != tt.want {
			t.Errorf("isMemoryQuery(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

// --- normal processing ---

func TestProcessRecordsConversation(t *testing.T) {
	a := testAssistant(t, &stubCompleter{})

	result, err := a.Process(context.Background(), "How did segment margins develop?")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Summary != "The final answer." {
		t.Errorf("Summary = %q", result.Summary)
	}

	history := a.Memory.RecentHistory(0)
	if len(history) != 2 {
		t.Fatalf("got %d memory entries, want query + summary", len(history))
	}
	if history[0].Role != "user" || history[0].Content != "How did segment margins develop?" {
		t.Errorf("history[0] = %+v", history[0])
	}
	if history[1].Role != "assistant" || history[1].Content != "The final answer." {
		t.Errorf("history[1] = %+v", history[1])
	}

	b := a.Memory.Behavioral()
	if b.InteractionCount != 1 {
		t.Errorf("InteractionCount = %d, want 1", b.InteractionCount)
	}
	if len(b.CommonTopics) != 1 || b.CommonTopics[0] != "financial" {
		t.Errorf("CommonTopics = %v, want [financial]", b.CommonTopics)
	}
}

func TestProcessRunTimeout(t *testing.T) {
	completer := &stubCompleter{delay: time.Second}
	a := testAssistant(t, completer)
	a.RunTimeout = 20 * time.Millisecond

	_, err := a.Process(context.Background(), "How did revenue develop?")
	if err == nil {
		t.Fatal("expected the run budget to expire")
	}
}

func TestProcessArchivesRun(t *testing.T) {
	a := testAssistant(t, &stubCompleter{})

	store, err := archive.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	a.Archive = store

	if _, err := a.Process(context.Background(), "How did revenue develop?"); err != nil {
		t.Fatal(err)
	}

	sessions, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d archived sessions, want 1", len(sessions))
	}
	if sessions[0].Query != "How did revenue develop?" {
		t.Errorf("archived query = %q", sessions[0].Query)
	}
	if sessions[0].Summary != "The final answer." {
		t.Errorf("archived summary = %q", sessions[0].Summary)
	}
}

// --- topic classification ---

func TestClassifyTopic(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"What was the profit margin?", "financial"},
		{"Aviation order backlog outlook", "aerospace"},
		{"Break down the results per business unit", "segment"},
		{"Compare this quarter versus last", "comparison"},
		{"Who is on the board of directors?", "general"},
		// Priority: financial keywords win over later categories.
		{"Compare segment revenue", "financial"},
	}
	for _, tt := range tests {
		if got := classifyTopic(tt.query); got != tt.want {
			t.Errorf("classifyTopic(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// --- preference harvesting ---

func TestHarvestPreferences(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		wantThemes     []string
		wantExpertise  string
	}{
		{
			name:          "investment analysis signals",
			query:         "I'm analyzing this for my investment thesis",
			wantThemes:    []string{"investment_analysis"},
			wantExpertise: "advanced",
		},
		{
			name:          "depth signals advanced",
			query:         "Give me a detailed comprehensive breakdown",
			wantThemes:    nil,
			wantExpertise: "advanced",
		},
		{
			name:          "simplicity signals beginner",
			query:         "Just a simple overview please",
			wantThemes:    nil,
			wantExpertise: "beginner",
		},
		{
			name:          "aerospace theme",
			query:         "Focus on the aerospace business",
			wantThemes:    []string{"aerospace"},
			wantExpertise: "intermediate",
		},
		{
			name:          "saas theme",
			query:         "How does their SaaS offering compare?",
			wantThemes:    []string{"cloud_software"},
			wantExpertise: "intermediate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := testAssistant(t, &stubCompleter{})
			a.harvestPreferences(tt.query)

			lt := a.Memory.LongTerm()
			if len(lt.ResearchThemes) != len(tt.wantThemes) {
				t.Fatalf("ResearchThemes = %v, want %v", lt.ResearchThemes, tt.wantThemes)
			}
			for i, want := range tt.wantThemes {
				if lt.ResearchThemes[i] != want {
					t.Errorf("theme[%d] = %q, want %q", i, lt.ResearchThemes[i], want)
				}
			}
			if lt.ExpertiseLevel != tt.wantExpertise {
				t.Errorf("ExpertiseLevel = %q, want %q", lt.ExpertiseLevel, tt.wantExpertise)
			}
		})
	}
}
