// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

// --- short-term window ---

func TestAddShortTermWindow(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 15; i++ {
		if err := s.AddShortTerm("user", fmt.Sprintf("question %d", i)); err != nil {
			t.Fatalf("AddShortTerm: %v", err)
		}
	}

	history := s.RecentHistory(0)
	if len(history) != 10 {
		t.Fatalf("window holds %d entries, want 10", len(history))
	}
	// Oldest entries evicted first: the window starts at question 5.
	if history[0].Content != "question 5" {
		t.Errorf("oldest entry = %q, want %q", history[0].Content, "question 5")
	}
	if history[9].Content != "question 14" {
		t.Errorf("newest entry = %q, want %q", history[9].Content, "question 14")
	}
}

func TestAddShortTermTimestamps(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.AddShortTerm("user", "hello"); err != nil {
		t.Fatal(err)
	}
	history := s.RecentHistory(1)
	if !history[0].Timestamp.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", history[0].Timestamp, fixed)
	}
}

// --- long-term updates ---

func TestUpdateLongTermDedup(t *testing.T) {
	s := openTestStore(t)

	for _, theme := range []string{"aerospace", "margins", "aerospace"} {
		if err := s.UpdateLongTerm(types.KeyResearchThemes, theme); err != nil {
			t.Fatal(err)
		}
	}

	lt := s.LongTerm()
	if len(lt.ResearchThemes) != 2 {
		t.Fatalf("ResearchThemes = %v, want 2 unique entries", lt.ResearchThemes)
	}
	if lt.ResearchThemes[0] != "aerospace" || lt.ResearchThemes[1] != "margins" {
		t.Errorf("ResearchThemes = %v, want insertion order preserved", lt.ResearchThemes)
	}
}

func TestUpdateLongTermScalarOverwrite(t *testing.T) {
	s := openTestStore(t)

	if s.LongTerm().ExpertiseLevel != "intermediate" {
		t.Errorf("default ExpertiseLevel = %q, want intermediate", s.LongTerm().ExpertiseLevel)
	}

	if err := s.UpdateLongTerm(types.KeyExpertiseLevel, "advanced"); err != nil {
		t.Fatal(err)
	}
	if s.LongTerm().ExpertiseLevel != "advanced" {
		t.Errorf("ExpertiseLevel = %q, want advanced", s.LongTerm().ExpertiseLevel)
	}
}

func TestUpdateLongTermUnknownKeyIgnored(t *testing.T) {
	s := openTestStore(t)

	if err := s.UpdateLongTerm("favorite_color", "green"); err != nil {
		t.Fatalf("unknown key should not error: %v", err)
	}

	lt := s.LongTerm()
	if len(lt.ResearchThemes) != 0 || len(lt.KeyEntities) != 0 {
		t.Errorf("unknown key mutated the store: %+v", lt)
	}
	// The ignored update must not touch disk either.
	if _, err := os.Stat(filepath.Join(s.dir, longTermFile)); !os.IsNotExist(err) {
		t.Error("ignored update should not persist any section")
	}
}

// --- behavioral tracking ---

func TestTrackBehavior(t *testing.T) {
	s := openTestStore(t)

	longQuery := strings.Repeat("q", 150)
	if err := s.TrackBehavior(longQuery, "financial"); err != nil {
		t.Fatal(err)
	}
	if err := s.TrackBehavior("segment outlook", "segment"); err != nil {
		t.Fatal(err)
	}
	if err := s.TrackBehavior("margins again", "financial"); err != nil {
		t.Fatal(err)
	}

	b := s.Behavioral()
	if b.InteractionCount != 3 {
		t.Errorf("InteractionCount = %d, want 3", b.InteractionCount)
	}
	if len(b.QueryPatterns) != 3 {
		t.Fatalf("QueryPatterns = %d, want 3", len(b.QueryPatterns))
	}
	if len(b.QueryPatterns[0].Query) != 100 {
		t.Errorf("pattern query length = %d, want truncated to 100", len(b.QueryPatterns[0].Query))
	}
	if len(b.CommonTopics) != 2 {
		t.Errorf("CommonTopics = %v, want topic recorded once", b.CommonTopics)
	}
	if b.PreferredDepth != "detailed" {
		t.Errorf("PreferredDepth = %q, want default detailed", b.PreferredDepth)
	}
}

// --- context summary ---

func TestContextSummary(t *testing.T) {
	s := openTestStore(t)

	// Empty store still reports the expertise level.
	if got := s.ContextSummary(); got != "Expertise level: intermediate" {
		t.Errorf("empty summary = %q", got)
	}

	for i := 0; i < 4; i++ {
		s.AddShortTerm("user", fmt.Sprintf("question %d", i))
		s.AddShortTerm("assistant", fmt.Sprintf("answer %d", i))
	}
	s.UpdateLongTerm(types.KeyResearchThemes, "aerospace")
	s.TrackBehavior("question", "financial")

	summary := s.ContextSummary()

	// Only the last three turns appear, relabeled.
	if !strings.Contains(summary, "Recent conversation: Assistant: answer 2 | User: question 3 | Assistant: answer 3") {
		t.Errorf("summary missing last three turns: %q", summary)
	}
	if !strings.Contains(summary, "User research themes: aerospace") {
		t.Errorf("summary missing themes: %q", summary)
	}
	if !strings.Contains(summary, "Common topics: financial") {
		t.Errorf("summary missing topics: %q", summary)
	}
	if !strings.HasSuffix(summary, "Expertise level: intermediate") {
		t.Errorf("summary should end with expertise level: %q", summary)
	}
}

func TestContextSummaryTruncatesTurns(t *testing.T) {
	s := openTestStore(t)
	s.AddShortTerm("user", strings.Repeat("x", 250))

	summary := s.ContextSummary()
	if !strings.Contains(summary, "User: "+strings.Repeat("x", 100)) {
		t.Errorf("summary should carry the turn truncated to 100: %q", summary)
	}
	if strings.Contains(summary, strings.Repeat("x", 101)) {
		t.Error("turn content exceeded the 100-character cap")
	}
}

// --- previous question ---

func TestPreviousQuestion(t *testing.T) {
	s := openTestStore(t)

	if got := s.PreviousQuestion(); got != "No previous question found" {
		t.Errorf("empty store = %q, want the sentinel", got)
	}

	s.AddShortTerm("user", "first question")
	s.AddShortTerm("assistant", "an answer")
	s.AddShortTerm("user", "second question")
	s.AddShortTerm("assistant", "another answer")

	if got := s.PreviousQuestion(); got != "second question" {
		t.Errorf("PreviousQuestion = %q, want the newest user turn", got)
	}
}

// --- persistence ---

func TestReopenPersistence(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	s.AddShortTerm("user", "persisted question")
	s.UpdateLongTerm(types.KeyKeyEntities, "Honeywell")
	s.TrackBehavior("persisted question", "financial")

	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	history := reopened.RecentHistory(0)
	if len(history) != 1 || history[0].Content != "persisted question" {
		t.Errorf("short-term not persisted: %+v", history)
	}
	if entities := reopened.LongTerm().KeyEntities; len(entities) != 1 || entities[0] != "Honeywell" {
		t.Errorf("long-term not persisted: %v", entities)
	}
	if reopened.Behavioral().InteractionCount != 1 {
		t.Errorf("behavioral not persisted: %+v", reopened.Behavioral())
	}
}

func TestOpenCorruptSectionResets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, longTermFile), []byte("{not yaml: ["), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open should tolerate a corrupt section: %v", err)
	}
	if s.LongTerm().ExpertiseLevel != "intermediate" {
		t.Errorf("corrupt section should reset to the default, got %+v", s.LongTerm())
	}
}

func TestClearShortTerm(t *testing.T) {
	s := openTestStore(t)
	s.AddShortTerm("user", "question")
	s.UpdateLongTerm(types.KeyResearchThemes, "aerospace")

	if err := s.ClearShortTerm(); err != nil {
		t.Fatal(err)
	}

	if len(s.RecentHistory(0)) != 0 {
		t.Error("short-term window should be empty")
	}
	// The other sections survive a clear.
	if themes := s.LongTerm().ResearchThemes; len(themes) != 1 {
		t.Errorf("long-term should survive ClearShortTerm: %v", themes)
	}
}
