// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CurrencyValue is one currency amount found in text, normalized to USD.
// Per prd002-metrics R1.1-R1.2.
type CurrencyValue struct {
	// Original is the amount as written, e.g. "$1.5B".
	Original string `json:"original" yaml:"original"`

	// NormalizedValue is the amount in whole dollars (B=1e9, M=1e6, K=1e3).
	NormalizedValue float64 `json:"normalized_value" yaml:"normalized_value"`

	// Unit is always "USD".
	Unit string `json:"unit" yaml:"unit"`
}

// Percentage is one percentage occurrence found in text.
type Percentage struct {
	Value float64 `json:"value" yaml:"value"`

	// Unit is always "%".
	Unit string `json:"unit" yaml:"unit"`
}

// YoYChange is one year-over-year change found in text. The three scan
// patterns are unioned without deduplication, so overlapping phrasings may
// yield duplicate entries. Per prd002-metrics R2.3.
type YoYChange struct {
	Value float64 `json:"value" yaml:"value"`

	// Unit is always "%".
	Unit string `json:"unit" yaml:"unit"`

	// Type is always "year_over_year".
	Type string `json:"type" yaml:"type"`
}

// ExtractedMetrics is the full output of one metrics scan over a text.
// It is a pure function of its input. Per prd002-metrics R1-R4.
type ExtractedMetrics struct {
	Currencies  []CurrencyValue `json:"currencies" yaml:"currencies"`
	Percentages []Percentage    `json:"percentages" yaml:"percentages"`
	YoYChanges  []YoYChange     `json:"yoy_changes" yaml:"yoy_changes"`

	// Segments lists detected business segments, each at most once.
	Segments []string `json:"segments" yaml:"segments"`

	// MissingData flags absent metric categories, e.g. "No currency values found".
	MissingData []string `json:"missing_data" yaml:"missing_data"`

	// ExtractionConfidence is min((currencies+percentages+yoy)/5, 1.0).
	ExtractionConfidence float64 `json:"extraction_confidence" yaml:"extraction_confidence"`
}

// SegmentTable holds best-effort figures parsed from a segment's block of a
// financial table. Nil pointers mean the figure was not found.
// Per prd002-metrics R5.
type SegmentTable struct {
	// Segment is the segment name the block was located by.
	Segment string `json:"segment" yaml:"segment"`

	// Revenue is the first revenue figure in the block, in dollars.
	Revenue *float64 `json:"revenue,omitempty" yaml:"revenue,omitempty"`

	// Margin is the first margin percentage in the block.
	Margin *float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
}
