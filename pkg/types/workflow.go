// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// QueryPlan is the Plan stage's decomposition of a user query.
// Per prd001-workflow R1.1-R1.3.
type QueryPlan struct {
	// Objective is the main goal distilled from the query.
	Objective string `json:"objective" yaml:"objective"`

	// SubQueries are the decomposed, independently retrievable questions.
	// Only the first five are ever processed. Per R2.1.
	SubQueries []string `json:"sub_queries" yaml:"sub_queries"`

	// DataPoints lists the metrics the plan expects to need.
	DataPoints []string `json:"data_points" yaml:"data_points"`

	// AnalysisSteps lists the planned analysis actions.
	AnalysisSteps []string `json:"analysis_steps" yaml:"analysis_steps"`
}

// RetrievedAnswer is the document retrieval capability's response to one
// sub-query. Index construction is the collaborator's concern; the engine
// sees only this shape. Per prd001-workflow R2.2.
type RetrievedAnswer struct {
	// Answer is the synthesized answer text for the sub-query.
	Answer string `json:"answer" yaml:"answer"`

	// SourceCount is the number of source passages behind the answer.
	SourceCount int `json:"source_count" yaml:"source_count"`
}

// ResearchResult holds the outcome of researching one sub-query.
// Results are index-ordered to match the plan. Per prd001-workflow R2.
type ResearchResult struct {
	// SubQuery is the question that was retrieved.
	SubQuery string `json:"sub_query" yaml:"sub_query"`

	// Answer is the retrieval capability's answer text.
	Answer string `json:"answer" yaml:"answer"`

	// SourceCount is the number of source passages behind the answer.
	SourceCount int `json:"source_count" yaml:"source_count"`

	// ExtractedMetrics holds financial metrics scanned from the answer.
	// Only ever set on the first result, and only for financial queries.
	// Per R2.4.
	ExtractedMetrics *ExtractedMetrics `json:"extracted_metrics,omitempty" yaml:"extracted_metrics,omitempty"`
}

// ValidationResult is the Validate stage's judgment of the research results.
// Per prd001-workflow R3.
type ValidationResult struct {
	// IsValid reports whether the results passed validation.
	IsValid bool `json:"is_valid" yaml:"is_valid"`

	// Confidence is the overall confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Issues lists problems the validator found.
	Issues []string `json:"issues" yaml:"issues"`

	// ValidatedData carries the data the validator accepted.
	ValidatedData map[string]any `json:"validated_data" yaml:"validated_data"`

	// FactVerifications is always the locally computed verification list,
	// never the model's own. Per R3.5.
	FactVerifications []FactVerification `json:"fact_verifications" yaml:"fact_verifications"`
}

// WorkflowResult is the terminal artifact of one engine run.
// Per prd001-workflow R4.3.
type WorkflowResult struct {
	// Summary is the plain-text answer to the original query.
	Summary string `json:"summary" yaml:"summary"`

	// WorkflowSteps is the ordered, human-readable audit trail of the run.
	WorkflowSteps []string `json:"workflow_steps" yaml:"workflow_steps"`

	// Validation is the full validation outcome.
	Validation ValidationResult `json:"validation" yaml:"validation"`

	// Confidence mirrors Validation.Confidence for direct access.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}
