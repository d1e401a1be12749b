// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workflow runs the four-stage analysis pipeline: plan, research,
// validate, summarize. Implements: prd001-workflow (R1-R5).
//
// The pipeline is strictly linear. Each stage returns its artifact together
// with an ordered log slice; Run concatenates the slices into the result's
// step log, so there is no shared mutable log and a given set of stage
// outputs always produces the same audit trail. The two external
// capabilities (retrieval, completion) are interfaces the caller supplies;
// neither is retried here, and a retrieval failure aborts the whole run.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/analyst-engine/internal/finmetrics"
	"github.com/pdiddy/analyst-engine/internal/verify"
	"github.com/pdiddy/analyst-engine/pkg/types"
)

// Retriever is the document retrieval capability: one sub-query in, one
// synthesized answer with a source count out. Index construction is the
// collaborator's concern.
type Retriever interface {
	Query(ctx context.Context, text string) (types.RetrievedAnswer, error)
}

// Completer is the text completion capability, one prompt per call.
// Retries and rate limiting are the collaborator's concern.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	// maxSubQueries caps how many sub-queries Research processes; the rest
	// are silently dropped (R2.1).
	maxSubQueries = 5

	// serializationLimit truncates the JSON handed to the validator and
	// summarizer prompts (R3.3, R4.1).
	serializationLimit = 2000

	// defaultCompany prefixes web verification queries when the engine is
	// not configured with one.
	defaultCompany = "Honeywell"
)

// financialKeywords gate the metrics extraction in the research stage. The
// test is a case-insensitive substring match against the original query,
// decided once per run (R2.3).
var financialKeywords = []string{"margin", "profit", "revenue", "yoy", "financial", "segment"}

// Engine executes one run of the pipeline. Engines carry no per-run state,
// so a single Engine may serve sequential runs; the step log lives in the
// WorkflowResult, not the Engine.
type Engine struct {
	Retriever Retriever
	Completer Completer

	// Verifier performs claim verification during validation. A verifier
	// without a search client skips web verification.
	Verifier *verify.Verifier

	// Company is the name prefixed to web verification queries.
	// Empty means defaultCompany.
	Company string
}

// Run executes plan, research, validate, and summarize in order and returns
// the terminal WorkflowResult. The caller's context carries the wall-clock
// budget for the whole run.
func (e *Engine) Run(ctx context.Context, query, contextSummary string) (*types.WorkflowResult, error) {
	var steps []string

	plan, log, err := e.plan(ctx, query, contextSummary)
	steps = append(steps, log...)
	if err != nil {
		return nil, err
	}

	results, log, err := e.research(ctx, plan, query)
	steps = append(steps, log...)
	if err != nil {
		return nil, err
	}

	validation, log, err := e.validate(ctx, results, plan)
	steps = append(steps, log...)
	if err != nil {
		return nil, err
	}

	summary, log, err := e.summarize(ctx, validation)
	steps = append(steps, log...)
	if err != nil {
		return nil, err
	}

	return &types.WorkflowResult{
		Summary:       summary,
		WorkflowSteps: steps,
		Validation:    validation,
		Confidence:    validation.Confidence,
	}, nil
}

// plan issues one completion call to decompose the query. A response that
// does not parse as a QueryPlan degrades to the fixed fallback plan (R1.3).
func (e *Engine) plan(ctx context.Context, query, contextSummary string) (types.QueryPlan, []string, error) {
	log := []string{"Planning query decomposition"}

	prompt, err := renderPrompt(plannerPromptTmpl, struct {
		Context string
		Query   string
	}{Context: contextSummary, Query: query})
	if err != nil {
		return types.QueryPlan{}, log, fmt.Errorf("rendering planner prompt: %w", err)
	}

	response, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return types.QueryPlan{}, log, fmt.Errorf("planning completion: %w", err)
	}

	outcome := decodeStructured[types.QueryPlan](response)
	plan := outcome.Value
	if outcome.Fallback {
		plan = types.QueryPlan{
			Objective:     query,
			SubQueries:    []string{query},
			DataPoints:    []string{"segment data", "financial metrics"},
			AnalysisSteps: []string{"retrieve data", "calculate changes", "compare"},
		}
	}

	log = append(log, fmt.Sprintf("Created %d sub-queries", len(plan.SubQueries)))
	return plan, log, nil
}

// research retrieves an answer for each of the first five sub-queries. The
// financial metrics extractor runs only on the first sub-query's answer, and
// only when the original query mentions a financial keyword (R2.3-R2.4).
// A failed retrieval is fatal to the run.
func (e *Engine) research(ctx context.Context, plan types.QueryPlan, originalQuery string) ([]types.ResearchResult, []string, error) {
	log := []string{"Retrieving information"}

	subQueries := plan.SubQueries
	if len(subQueries) == 0 {
		subQueries = []string{originalQuery}
	}
	if len(subQueries) > maxSubQueries {
		subQueries = subQueries[:maxSubQueries]
	}

	queryLower := strings.ToLower(originalQuery)
	extractFinancial := false
	for _, kw := range financialKeywords {
		if strings.Contains(queryLower, kw) {
			extractFinancial = true
			break
		}
	}

	var results []types.ResearchResult
	for i, subQuery := range subQueries {
		log = append(log, fmt.Sprintf("  Query %d: %s...", i+1, truncate(subQuery, 60)))

		retrieved, err := e.Retriever.Query(ctx, subQuery)
		if err != nil {
			return nil, log, fmt.Errorf("retrieving %q: %w", subQuery, err)
		}

		result := types.ResearchResult{
			SubQuery:    subQuery,
			Answer:      retrieved.Answer,
			SourceCount: retrieved.SourceCount,
		}

		if extractFinancial && i == 0 {
			log = append(log, "  Using financial extractor")
			metrics := finmetrics.ExtractMetrics(retrieved.Answer)
			result.ExtractedMetrics = &metrics

			if len(metrics.Segments) > 0 {
				log = append(log, fmt.Sprintf("  Extracted segments: %s", strings.Join(metrics.Segments, ", ")))
			}
			if len(metrics.Percentages) > 0 {
				log = append(log, fmt.Sprintf("  Found %d percentages", len(metrics.Percentages)))
			}
		}

		results = append(results, result)
	}

	log = append(log, fmt.Sprintf("Research complete: %d queries processed", len(results)))
	return results, log, nil
}

// validationPayload mirrors ValidationResult for decoding the model's
// structured judgment. FactVerifications is deliberately absent: the
// model's own verification list is never trusted (R3.5).
type validationPayload struct {
	IsValid       bool           `json:"is_valid"`
	Confidence    float64        `json:"confidence"`
	Issues        []string       `json:"issues"`
	ValidatedData map[string]any `json:"validated_data"`
}

// validate verifies claims in the first research result, then asks the model
// to judge the whole result set. The locally computed verification list
// always overwrites whatever the model returned (R3).
func (e *Engine) validate(ctx context.Context, results []types.ResearchResult, plan types.QueryPlan) (types.ValidationResult, []string, error) {
	log := []string{"Validating results"}

	var verifications []types.FactVerification
	if len(results) > 0 {
		var vlog []string
		verifications, vlog = e.verifyFirstResult(ctx, results[0])
		log = append(log, vlog...)
	}

	objective := plan.Objective
	if objective == "" {
		objective = "N/A"
	}

	factText := "No fact verifications performed"
	if len(verifications) > 0 {
		if data, err := json.MarshalIndent(verifications, "", "  "); err == nil {
			factText = string(data)
		}
	}

	prompt, err := renderPrompt(validatorPromptTmpl, struct {
		Objective         string
		Results           string
		FactVerifications string
	}{
		Objective:         objective,
		Results:           serializeTruncated(results),
		FactVerifications: factText,
	})
	if err != nil {
		return types.ValidationResult{}, log, fmt.Errorf("rendering validator prompt: %w", err)
	}

	response, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return types.ValidationResult{}, log, fmt.Errorf("validation completion: %w", err)
	}

	var validation types.ValidationResult
	outcome := decodeStructured[validationPayload](response)
	if outcome.Fallback {
		confidence := 0.8
		if len(verifications) > 0 {
			sum := 0.0
			for _, v := range verifications {
				sum += v.Confidence
			}
			confidence = sum / float64(len(verifications))
		}
		validation = types.ValidationResult{
			IsValid:       true,
			Confidence:    confidence,
			Issues:        []string{},
			ValidatedData: map[string]any{"results": results},
		}
	} else {
		validation = types.ValidationResult{
			IsValid:       outcome.Value.IsValid,
			Confidence:    outcome.Value.Confidence,
			Issues:        outcome.Value.Issues,
			ValidatedData: outcome.Value.ValidatedData,
		}
	}

	validation.FactVerifications = verifications

	status := "passed"
	if !validation.IsValid {
		status = "failed"
	}
	log = append(log, fmt.Sprintf("Validation %s (confidence: %.2f)", status, validation.Confidence))

	return validation, log, nil
}

// verifyFirstResult examines the first two sentences of the first research
// answer and verifies the first one containing a digit: once against the
// answer itself (source PDF), and once against the web when a search client
// is configured and the sentence mentions revenue or profit (R3.1-R3.2).
// At most one sentence is verified per run.
func (e *Engine) verifyFirstResult(ctx context.Context, first types.ResearchResult) ([]types.FactVerification, []string) {
	log := []string{"  Running fact verifier"}
	var verifications []types.FactVerification

	sentences := strings.Split(first.Answer, ".")
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}

	for _, sentence := range sentences {
		if !strings.ContainsFunc(sentence, unicode.IsDigit) {
			continue
		}

		claim := strings.TrimSpace(sentence)

		pdf := e.Verifier.VerifyClaim(claim, first.Answer)
		pdf.Source = types.SourcePDF
		verifications = append(verifications, pdf)
		if pdf.Status == types.StatusVerified {
			log = append(log, fmt.Sprintf("  PDF verification: %.2f", pdf.Confidence))
		}

		// Web verification is client-gated for both keywords: with no
		// search client configured, neither keyword triggers an attempt.
		sentenceLower := strings.ToLower(sentence)
		if e.Verifier.HasSearch() &&
			(strings.Contains(sentenceLower, "revenue") || strings.Contains(sentenceLower, "profit")) {
			company := e.Company
			if company == "" {
				company = defaultCompany
			}
			net := e.Verifier.VerifyWithSearch(ctx, truncate(claim, 50), company)
			net.Source = types.SourceInternet
			verifications = append(verifications, net)

			if net.Verified {
				log = append(log, fmt.Sprintf("  Internet verification: %.2f", net.Confidence))
			} else if net.Status == types.StatusSearchFailed {
				log = append(log, fmt.Sprintf("  Search unavailable: %s", truncate(net.Error, 50)))
			}
		}

		break
	}

	return verifications, log
}

// summarize issues the final completion call and wraps the plain-text
// response (R4.1-R4.2).
func (e *Engine) summarize(ctx context.Context, validation types.ValidationResult) (string, []string, error) {
	log := []string{"Creating summary"}

	prompt, err := renderPrompt(summarizerPromptTmpl, struct {
		ValidatedResults string
	}{ValidatedResults: serializeTruncated(validation)})
	if err != nil {
		return "", log, fmt.Errorf("rendering summarizer prompt: %w", err)
	}

	summary, err := e.Completer.Complete(ctx, prompt)
	if err != nil {
		return "", log, fmt.Errorf("summary completion: %w", err)
	}

	log = append(log, "Summary complete")
	return summary, log, nil
}

// serializeTruncated renders v as indented JSON capped at the prompt
// serialization limit.
func serializeTruncated(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	if len(data) > serializationLimit {
		data = data[:serializationLimit]
	}
	return string(data)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
