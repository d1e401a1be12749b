// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "analyst-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call a chat
// completion API.
type AIConfig struct {
	// Model is the model identifier (e.g. "gpt-4-turbo-preview").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the completion API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of retry attempts on rate limiting (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// WorkflowConfig holds settings for the analysis engine.
// Per prd001-workflow R5.
type WorkflowConfig struct {
	// Company is the company name prefixed to web verification queries
	// (default "Honeywell").
	Company string `json:"company" yaml:"company"`

	// RunTimeout is the wall-clock budget for a whole run (default 120s).
	// An expired run is discarded, step log included.
	RunTimeout time.Duration `json:"run_timeout" yaml:"run_timeout"`
}

// RetrievalConfig holds settings for the document corpus.
// Per prd005-corpus R1.
type RetrievalConfig struct {
	// DBPath is the path of the corpus SQLite database.
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxPassages is the number of passages joined into one answer
	// (default 5).
	MaxPassages int `json:"max_passages" yaml:"max_passages"`
}

// MemoryConfig holds settings for the tiered memory store.
// Per prd004-memory R4.
type MemoryConfig struct {
	// Dir is the directory holding the three memory section documents.
	Dir string `json:"dir" yaml:"dir"`
}

// SearchConfig holds settings for the web search capability.
// Per prd003-verification R5.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the Tavily API key. Empty disables web verification.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxResults is the number of results requested per search (default 3).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ArchiveConfig holds settings for the session archive.
type ArchiveConfig struct {
	// DBPath is the path of the archive SQLite database. Empty disables
	// archiving.
	DBPath string `json:"db_path" yaml:"db_path"`
}

// AssistantConfig groups all component configurations for the assistant.
type AssistantConfig struct {
	AI        AIConfig        `json:"ai" yaml:"ai"`
	Workflow  WorkflowConfig  `json:"workflow" yaml:"workflow"`
	Retrieval RetrievalConfig `json:"retrieval" yaml:"retrieval"`
	Memory    MemoryConfig    `json:"memory" yaml:"memory"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Archive   ArchiveConfig   `json:"archive" yaml:"archive"`
}
