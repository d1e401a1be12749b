// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// VerificationStatus classifies the outcome of a claim verification.
// Per prd003-verification R2.4, R4.
type VerificationStatus string

const (
	// Local verification statuses, assigned by confidence threshold.
	StatusVerified          VerificationStatus = "verified"           // confidence >= 0.7
	StatusPartiallyVerified VerificationStatus = "partially_verified" // [0.4, 0.7)
	StatusUncertain         VerificationStatus = "uncertain"          // [0.2, 0.4)
	StatusCannotVerify      VerificationStatus = "cannot_verify"      // < 0.2, or no evidence
	StatusUnknown           VerificationStatus = "unknown"

	// Web search verification statuses.
	StatusSearchUnavailable VerificationStatus = "search_unavailable"
	StatusNoResults         VerificationStatus = "no_results"
	StatusSearchFailed      VerificationStatus = "search_failed"
)

// VerificationSource identifies which evidence pool a verification ran against.
type VerificationSource string

const (
	SourcePDF      VerificationSource = "PDF"
	SourceInternet VerificationSource = "Internet"
)

// FactVerification is the result of checking one claim sentence.
// Per prd003-verification R1-R4.
type FactVerification struct {
	// Claim is the sentence that was checked.
	Claim string `json:"claim" yaml:"claim"`

	// Verified is true only for StatusVerified outcomes.
	Verified bool `json:"verified" yaml:"verified"`

	// Confidence is the deterministic trust score in [0,1], rounded to
	// two decimals.
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// SupportingEvidence holds up to three evidence sentences, or a single
	// placeholder when none were found.
	SupportingEvidence []string `json:"supporting_evidence" yaml:"supporting_evidence"`

	// SourceURLs lists web sources for Internet verifications.
	SourceURLs []string `json:"source_urls,omitempty" yaml:"source_urls,omitempty"`

	// Status classifies the outcome.
	Status VerificationStatus `json:"status" yaml:"status"`

	// Source is PDF for local verification, Internet for web search.
	Source VerificationSource `json:"source,omitempty" yaml:"source,omitempty"`

	// Error carries the failure message for StatusSearchFailed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// SearchSnippet is one result from the web search capability.
// Per prd003-verification R5.1.
type SearchSnippet struct {
	Content string `json:"content" yaml:"content"`
	URL     string `json:"url" yaml:"url"`
}
