// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package finmetrics scans text for financial metrics: currency amounts,
// percentages, year-over-year changes, and business segment mentions.
// Implements: prd002-metrics (R1-R5).
//
// Extraction is a pure function of the input text. It is pattern-based and
// deliberately forgiving: the extraction confidence reports how much was
// found, not how correct it is.
package finmetrics

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/analyst-engine/pkg/types"
)

var (
	// currencyPattern matches "$1,234.5" with an optional B/M/K multiplier.
	currencyPattern = regexp.MustCompile(`\$\s*(\d+(?:,\d{3})*(?:\.\d+)?)\s*([BMK])?`)

	// percentagePattern matches any "N%" occurrence.
	percentagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

	// yoyPatterns are three independent phrasings of a year-over-year change.
	// Their matches are unioned without deduplication: a phrase that matches
	// more than one pattern produces duplicate entries (R2.3).
	yoyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:YoY|year[- ]over[- ]year|y/y)\s*(?:change|growth|increase|decrease)?\s*(?:of)?\s*([+-]?\d+(?:\.\d+)?)\s*%`),
		regexp.MustCompile(`(?i)([+-]?\d+(?:\.\d+)?)\s*%\s*(?:YoY|year[- ]over[- ]year)`),
		regexp.MustCompile(`(?i)(?:increased|decreased|changed)\s+(?:by\s+)?([+-]?\d+(?:\.\d+)?)\s*%`),
	}
)

// segmentAlias maps a canonical segment name to the spellings that count as
// a mention. Order is fixed so Segments output is deterministic (R4.1).
type segmentAlias struct {
	name    string
	aliases []string
}

var segmentAliases = []segmentAlias{
	{"Aerospace", []string{"Aerospace", "Aero"}},
	{"HBT", []string{"HBT", "Building Technologies", "Honeywell Building"}},
	{"PMT", []string{"PMT", "Performance Materials", "Performance Materials and Technologies"}},
	{"SPS", []string{"SPS", "Safety and Productivity", "Safety and Productivity Solutions"}},
}

// multipliers converts a currency suffix to its scale factor.
var multipliers = map[string]float64{
	"B": 1e9,
	"M": 1e6,
	"K": 1e3,
}

// ExtractMetrics runs five independent scans over text and returns the
// combined metrics (R1-R4).
func ExtractMetrics(text string) types.ExtractedMetrics {
	var m types.ExtractedMetrics

	for _, match := range currencyPattern.FindAllStringSubmatch(text, -1) {
		amount, unit := match[1], match[2]
		value, err := strconv.ParseFloat(strings.ReplaceAll(amount, ",", ""), 64)
		if err != nil {
			continue
		}
		if mul, ok := multipliers[unit]; ok {
			value *= mul
		}
		m.Currencies = append(m.Currencies, types.CurrencyValue{
			Original:        "$" + amount + unit,
			NormalizedValue: value,
			Unit:            "USD",
		})
	}

	for _, match := range percentagePattern.FindAllStringSubmatch(text, -1) {
		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			continue
		}
		m.Percentages = append(m.Percentages, types.Percentage{Value: value, Unit: "%"})
	}

	for _, pattern := range yoyPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			value, err := strconv.ParseFloat(match[1], 64)
			if err != nil {
				continue
			}
			m.YoYChanges = append(m.YoYChanges, types.YoYChange{
				Value: value,
				Unit:  "%",
				Type:  "year_over_year",
			})
		}
	}

	for _, seg := range segmentAliases {
		for _, alias := range seg.aliases {
			if strings.Contains(text, alias) {
				m.Segments = append(m.Segments, seg.name)
				break
			}
		}
	}

	totalFound := len(m.Currencies) + len(m.Percentages) + len(m.YoYChanges)
	m.ExtractionConfidence = math.Min(float64(totalFound)/5.0, 1.0)

	if len(m.Currencies) == 0 {
		m.MissingData = append(m.MissingData, "No currency values found")
	}
	if len(m.Percentages) == 0 {
		m.MissingData = append(m.MissingData, "No percentages found")
	}

	return m
}

var (
	// tableRevenuePattern finds the first revenue dollar figure in a block.
	tableRevenuePattern = regexp.MustCompile(`(?is)revenue.*?\$\s*(\d+(?:,\d{3})*)`)

	// tableMarginPattern finds the first margin percentage in a block.
	tableMarginPattern = regexp.MustCompile(`(?is)(?:profit\s+)?margin.*?(\d+(?:\.\d+)?)\s*%`)
)

// ParseSegmentTable locates the block of text that starts at the segment
// name and runs to the next blank line (or end of text), then pulls one
// revenue figure and one margin percentage from it (R5.1-R5.3).
//
// Returns nil when the segment is absent or its block yields neither figure.
// Best-effort only; a real table reader this is not.
func ParseSegmentTable(text, segment string) *types.SegmentTable {
	namePattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(segment))
	if err != nil {
		return nil
	}
	loc := namePattern.FindStringIndex(text)
	if loc == nil {
		return nil
	}

	block := text[loc[0]:]
	if end := strings.Index(block, "\n\n"); end >= 0 {
		block = block[:end]
	}

	result := &types.SegmentTable{Segment: segment}

	if match := tableRevenuePattern.FindStringSubmatch(block); match != nil {
		if value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64); err == nil {
			result.Revenue = &value
		}
	}
	if match := tableMarginPattern.FindStringSubmatch(block); match != nil {
		if value, err := strconv.ParseFloat(match[1], 64); err == nil {
			result.Margin = &value
		}
	}

	if result.Revenue == nil && result.Margin == nil {
		return nil
	}
	return result
}
