// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package verify scores claims against evidence.
// Implements: prd003-verification (R1-R5).
//
// Local verification is fully deterministic: a claim's confidence is a fixed
// arithmetic blend of keyword and number overlap with its context. Web
// verification is optional; a Verifier without a search client degrades to
// the search_unavailable status rather than failing.
package verify

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

// SearchClient is the optional web search capability. Implementations return
// content/URL snippets for a query. Absence (a nil client) must never raise
// past the verifier boundary (R5.2).
type SearchClient interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchSnippet, error)
}

// noEvidencePlaceholder is the single evidence entry substituted when no
// supporting sentence was found (R3.4).
const noEvidencePlaceholder = "No supporting evidence found in context"

// numberPattern matches integer and decimal tokens in claims and contexts.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Verifier checks claims locally and, when a search client is configured,
// against the web.
type Verifier struct {
	// Search is the optional web search capability. Nil disables
	// VerifyWithSearch.
	Search SearchClient

	// MaxResults is the number of web results requested per search
	// (default 3).
	MaxResults int
}

// HasSearch reports whether a web search client is configured.
func (v *Verifier) HasSearch() bool {
	return v != nil && v.Search != nil
}

// VerifyClaim scores claim against context and returns a confidence-tagged
// verification (R1-R4).
//
// Keywords are the claim's words longer than three characters; numbers are
// its numeric tokens. Confidence is 0.4*keyword + 0.6*number overlap when the
// claim carries numbers, keyword overlap alone otherwise, clamped to [0,1]
// and rounded to two decimals.
func (v *Verifier) VerifyClaim(claim, evidence string) types.FactVerification {
	result := types.FactVerification{
		Claim:  claim,
		Status: types.StatusUnknown,
	}

	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(claim)) {
		if len(word) > 3 {
			keywords = append(keywords, word)
		}
	}
	evidenceLower := strings.ToLower(evidence)

	exactMatches := 0
	for _, word := range keywords {
		if strings.Contains(evidenceLower, word) {
			exactMatches++
		}
	}

	claimNumbers := numberPattern.FindAllString(claim, -1)
	evidenceNumbers := make(map[string]bool)
	for _, n := range numberPattern.FindAllString(evidence, -1) {
		evidenceNumbers[n] = true
	}
	numberMatches := 0
	for _, n := range claimNumbers {
		if evidenceNumbers[n] {
			numberMatches++
		}
	}

	keywordConfidence := float64(exactMatches) / math.Max(float64(len(keywords)), 1)
	numberConfidence := 0.5
	if len(claimNumbers) > 0 {
		numberConfidence = float64(numberMatches) / float64(len(claimNumbers))
	}

	confidence := keywordConfidence
	if len(claimNumbers) > 0 {
		confidence = keywordConfidence*0.4 + numberConfidence*0.6
	}
	result.Confidence = math.Round(math.Min(confidence, 1.0)*100) / 100

	switch {
	case result.Confidence >= 0.7:
		result.Verified = true
		result.Status = types.StatusVerified
	case result.Confidence >= 0.4:
		result.Status = types.StatusPartiallyVerified
	case result.Confidence < 0.2:
		result.Status = types.StatusCannotVerify
	default:
		// The [0.2, 0.4) gap falls through to uncertain.
		result.Status = types.StatusUncertain
	}

	if result.Confidence > 0.3 {
		result.SupportingEvidence = collectEvidence(evidence, keywords)
	}

	// No evidence forces cannot_verify, whatever the arithmetic said (R3.4).
	if len(result.SupportingEvidence) == 0 {
		result.Status = types.StatusCannotVerify
		result.SupportingEvidence = []string{noEvidencePlaceholder}
	}

	return result
}

// collectEvidence returns up to three context sentences containing any
// keyword (R3.1-R3.3).
func collectEvidence(evidence string, keywords []string) []string {
	var collected []string
	for _, sentence := range strings.Split(evidence, ".") {
		sentenceLower := strings.ToLower(sentence)
		for _, word := range keywords {
			if strings.Contains(sentenceLower, word) {
				collected = append(collected, strings.TrimSpace(sentence))
				break
			}
		}
		if len(collected) >= 3 {
			break
		}
	}
	return collected
}

// VerifyWithSearch checks a claim against web search results for the given
// company (R5). A missing client, an empty result set, and a failed call
// each map to a distinct status with zero confidence; any results at all
// yield a fixed 0.8 confidence with up to two snippet/source pairs.
func (v *Verifier) VerifyWithSearch(ctx context.Context, claim, company string) types.FactVerification {
	result := types.FactVerification{Claim: claim}

	if !v.HasSearch() {
		result.Status = types.StatusSearchUnavailable
		return result
	}

	maxResults := v.MaxResults
	if maxResults <= 0 {
		maxResults = 3
	}

	snippets, err := v.Search.Search(ctx, company+" "+claim, maxResults)
	if err != nil {
		result.Status = types.StatusSearchFailed
		result.Error = err.Error()
		return result
	}
	if len(snippets) == 0 {
		result.Status = types.StatusNoResults
		return result
	}

	result.Verified = true
	result.Confidence = 0.8
	result.Status = types.StatusVerified
	for _, snippet := range snippets[:min(2, len(snippets))] {
		content := snippet.Content
		if len(content) > 200 {
			content = content[:200]
		}
		result.SupportingEvidence = append(result.SupportingEvidence, content)
		result.SourceURLs = append(result.SourceURLs, snippet.URL)
	}
	return result
}
