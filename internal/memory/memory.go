// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package memory persists the assistant's tiered memory: a short-term
// conversation window, closed-schema long-term preferences, and behavioral
// counters. Implements: prd004-memory (R1-R5).
//
// Each section lives in its own YAML document under the store directory and
// is rewritten wholesale on every mutating call, via a temp file and rename
// so a crash never leaves a half-written section. The store is single-writer,
// single-process state; callers coordinate their own concurrency.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

const (
	shortTermFile  = "short_term.yaml"
	longTermFile   = "long_term.yaml"
	behavioralFile = "behavioral.yaml"

	// shortTermWindow is the fixed size of the short-term window. The
	// oldest entries are evicted first (R1.2).
	shortTermWindow = 10

	// patternQueryLimit truncates recorded query patterns (R3.2).
	patternQueryLimit = 100

	// noPreviousQuestion is the sentinel returned when the window holds
	// no user turn (R5.2).
	noPreviousQuestion = "No previous question found"
)

// Store is the tiered memory store. All reads are served from memory; every
// mutating call persists the sections back to disk.
type Store struct {
	dir        string
	shortTerm  []types.ShortTermEntry
	longTerm   types.LongTermMemory
	behavioral types.BehavioralMemory

	// now is the clock used for entry timestamps. Tests substitute it.
	now func() time.Time
}

// Open loads the three memory sections from dir, creating the directory if
// needed. A missing section file yields the built-in default. An unreadable
// or corrupt file also yields the default: recall is best-effort, and the
// damaged file is overwritten on the next mutating call (R4.3; decision
// recorded in DESIGN.md).
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}

	s := &Store{
		dir:        dir,
		longTerm:   types.DefaultLongTerm(),
		behavioral: types.DefaultBehavioral(),
		now:        time.Now,
	}

	loadSection(filepath.Join(dir, shortTermFile), &s.shortTerm)
	loadSection(filepath.Join(dir, longTermFile), &s.longTerm)
	loadSection(filepath.Join(dir, behavioralFile), &s.behavioral)

	return s, nil
}

// loadSection reads a YAML section document into v. Missing files are
// silent; unreadable or unparsable files warn on stderr and leave v at its
// default.
func loadSection(path string, v any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: could not read %s: %v\n", path, err)
		}
		return
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		fmt.Fprintf(os.Stderr, "warning: resetting corrupt memory section %s: %v\n", path, err)
	}
}

// saveAll rewrites all three section documents (R4.1).
func (s *Store) saveAll() error {
	if err := writeSection(filepath.Join(s.dir, shortTermFile), s.shortTerm); err != nil {
		return err
	}
	if err := writeSection(filepath.Join(s.dir, longTermFile), s.longTerm); err != nil {
		return err
	}
	return writeSection(filepath.Join(s.dir, behavioralFile), s.behavioral)
}

// writeSection marshals v to YAML and atomically replaces path (R4.2).
func writeSection(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// AddShortTerm appends a timestamped conversation turn and trims the window
// to the ten most recent entries, oldest first out (R1.1-R1.2).
func (s *Store) AddShortTerm(role, content string) error {
	s.shortTerm = append(s.shortTerm, types.ShortTermEntry{
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
	})
	if len(s.shortTerm) > shortTermWindow {
		s.shortTerm = s.shortTerm[len(s.shortTerm)-shortTermWindow:]
	}
	return s.saveAll()
}

// UpdateLongTerm applies a value to a long-term key. List-valued keys append
// with equality dedup; scalar keys overwrite; unknown keys are silently
// ignored — the schema is closed (R2.1-R2.3).
func (s *Store) UpdateLongTerm(key, value string) error {
	switch key {
	case types.KeyResearchThemes:
		s.longTerm.ResearchThemes = appendUnique(s.longTerm.ResearchThemes, value)
	case types.KeyKeyEntities:
		s.longTerm.KeyEntities = appendUnique(s.longTerm.KeyEntities, value)
	case types.KeyExpertiseLevel:
		s.longTerm.ExpertiseLevel = value
	default:
		return nil
	}
	return s.saveAll()
}

// TrackBehavior increments the interaction counter, records a truncated
// query pattern, and registers the topic if new (R3.1-R3.3).
func (s *Store) TrackBehavior(query, topic string) error {
	s.behavioral.InteractionCount++
	s.behavioral.QueryPatterns = append(s.behavioral.QueryPatterns, types.QueryPattern{
		Query:     truncate(query, patternQueryLimit),
		Topic:     topic,
		Timestamp: s.now().UTC(),
	})
	s.behavioral.CommonTopics = appendUnique(s.behavioral.CommonTopics, topic)
	return s.saveAll()
}

// ContextSummary builds the deterministic context string handed to the Plan
// stage: recent turns, top research themes, common topics, and expertise
// level, joined with " | " (R5.1).
func (s *Store) ContextSummary() string {
	var parts []string

	if len(s.shortTerm) > 0 {
		recent := s.shortTerm
		if len(recent) > 3 {
			recent = recent[len(recent)-3:]
		}
		var history []string
		for _, entry := range recent {
			role := "Assistant"
			if entry.Role == "user" {
				role = "User"
			}
			history = append(history, role+": "+truncate(entry.Content, 100))
		}
		parts = append(parts, "Recent conversation: "+strings.Join(history, " | "))
	}

	if len(s.longTerm.ResearchThemes) > 0 {
		parts = append(parts, "User research themes: "+strings.Join(firstN(s.longTerm.ResearchThemes, 3), ", "))
	}
	if len(s.behavioral.CommonTopics) > 0 {
		parts = append(parts, "Common topics: "+strings.Join(firstN(s.behavioral.CommonTopics, 3), ", "))
	}

	level := s.longTerm.ExpertiseLevel
	if level == "" {
		level = "intermediate"
	}
	parts = append(parts, "Expertise level: "+level)

	return strings.Join(parts, " | ")
}

// PreviousQuestion returns the most recent user turn, scanning newest first,
// or a sentinel when none exists (R5.2).
func (s *Store) PreviousQuestion() string {
	for i := len(s.shortTerm) - 1; i >= 0; i-- {
		if s.shortTerm[i].Role == "user" {
			return s.shortTerm[i].Content
		}
	}
	return noPreviousQuestion
}

// RecentHistory returns up to limit most recent conversation turns in order.
func (s *Store) RecentHistory(limit int) []types.ShortTermEntry {
	if limit <= 0 || limit > len(s.shortTerm) {
		limit = len(s.shortTerm)
	}
	out := make([]types.ShortTermEntry, limit)
	copy(out, s.shortTerm[len(s.shortTerm)-limit:])
	return out
}

// ClearShortTerm empties the conversation window. Long-term and behavioral
// sections are untouched.
func (s *Store) ClearShortTerm() error {
	s.shortTerm = nil
	return s.saveAll()
}

// LongTerm returns a snapshot of the long-term section.
func (s *Store) LongTerm() types.LongTermMemory {
	lt := s.longTerm
	lt.ResearchThemes = append([]string(nil), lt.ResearchThemes...)
	lt.KeyEntities = append([]string(nil), lt.KeyEntities...)
	return lt
}

// Behavioral returns a snapshot of the behavioral section.
func (s *Store) Behavioral() types.BehavioralMemory {
	b := s.behavioral
	b.QueryPatterns = append([]types.QueryPattern(nil), b.QueryPatterns...)
	b.CommonTopics = append([]string(nil), b.CommonTopics...)
	return b
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}

func firstN(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
