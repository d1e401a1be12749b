// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ShortTermEntry is one conversation turn in the short-term window.
// Per prd004-memory R1.1.
type ShortTermEntry struct {
	// Role is "user" or "assistant".
	Role string `json:"role" yaml:"role"`

	// Content is the turn's text.
	Content string `json:"content" yaml:"content"`

	// Timestamp records when the turn was added.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Long-term memory keys accepted by the store. The schema is closed:
// updates to any other key are silently ignored. Per prd004-memory R2.3.
const (
	KeyResearchThemes = "research_themes"
	KeyKeyEntities    = "key_entities"
	KeyExpertiseLevel = "expertise_level"
)

// LongTermMemory is the closed-schema store of durable user preferences.
// List-valued fields never contain duplicates. Per prd004-memory R2.
type LongTermMemory struct {
	// UserPreferences holds free-form preference pairs.
	UserPreferences map[string]string `json:"user_preferences" yaml:"user_preferences"`

	// ResearchThemes accumulates recurring research topics, deduplicated.
	ResearchThemes []string `json:"research_themes" yaml:"research_themes"`

	// KeyEntities accumulates companies and entities of interest, deduplicated.
	KeyEntities []string `json:"key_entities" yaml:"key_entities"`

	// ExpertiseLevel is the inferred user level: beginner, intermediate,
	// or advanced.
	ExpertiseLevel string `json:"expertise_level" yaml:"expertise_level"`
}

// DefaultLongTerm returns the built-in long-term memory used when no stored
// document exists.
func DefaultLongTerm() LongTermMemory {
	return LongTermMemory{
		UserPreferences: map[string]string{},
		ExpertiseLevel:  "intermediate",
	}
}

// QueryPattern is one behavioral record of a processed query.
type QueryPattern struct {
	// Query is the query text, truncated to 100 characters.
	Query string `json:"query" yaml:"query"`

	// Topic is the classified topic.
	Topic string `json:"topic" yaml:"topic"`

	// Timestamp records when the query was processed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// BehavioralMemory holds interaction counters and usage patterns.
// Per prd004-memory R3.
type BehavioralMemory struct {
	// QueryPatterns is the append-only record of processed queries.
	QueryPatterns []QueryPattern `json:"query_patterns" yaml:"query_patterns"`

	// InteractionCount counts processed queries.
	InteractionCount int `json:"interaction_count" yaml:"interaction_count"`

	// PreferredDepth is the preferred answer depth.
	PreferredDepth string `json:"preferred_depth" yaml:"preferred_depth"`

	// CommonTopics lists seen topics, each at most once, in first-seen order.
	CommonTopics []string `json:"common_topics" yaml:"common_topics"`
}

// DefaultBehavioral returns the built-in behavioral memory used when no
// stored document exists.
func DefaultBehavioral() BehavioralMemory {
	return BehavioralMemory{
		PreferredDepth: "detailed",
	}
}
