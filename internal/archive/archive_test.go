// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)

	result := &types.WorkflowResult{
		Summary:       "Aerospace led the quarter.",
		WorkflowSteps: []string{"Planning query decomposition", "Summary complete"},
		Confidence:    0.85,
	}
	if err := s.Record(context.Background(), "How did Aerospace do?", result); err != nil {
		t.Fatalf("Record: %v", err)
	}

	sessions, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}

	sess := sessions[0]
	if sess.Query != "How did Aerospace do?" {
		t.Errorf("Query = %q", sess.Query)
	}
	if sess.Summary != "Aerospace led the quarter." {
		t.Errorf("Summary = %q", sess.Summary)
	}
	if sess.Confidence != 0.85 {
		t.Errorf("Confidence = %v", sess.Confidence)
	}
	if len(sess.Steps) != 2 || sess.Steps[0] != "Planning query decomposition" {
		t.Errorf("Steps = %v", sess.Steps)
	}
	if time.Since(sess.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want recent", sess.CreatedAt)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 3; i++ {
		result := &types.WorkflowResult{Summary: fmt.Sprintf("summary %d", i)}
		if err := s.Record(context.Background(), fmt.Sprintf("question %d", i), result); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := s.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want the limit of 2", len(sessions))
	}
	if sessions[0].Query != "question 2" || sessions[1].Query != "question 1" {
		t.Errorf("order = [%q, %q], want newest first", sessions[0].Query, sessions[1].Query)
	}
}

func TestRecentDefaultLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 12; i++ {
		if err := s.Record(context.Background(), "q", &types.WorkflowResult{}); err != nil {
			t.Fatal(err)
		}
	}

	sessions, err := s.Recent(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 10 {
		t.Errorf("got %d sessions, want the default limit of 10", len(sessions))
	}
}

func TestRecentEmpty(t *testing.T) {
	s := openTestStore(t)
	sessions, err := s.Recent(context.Background(), 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want none", len(sessions))
	}
}
