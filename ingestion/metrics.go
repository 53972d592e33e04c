package ingestion

import (
	"math"

	"github.com/pokhrel-dev/simplechat-sub002/core"
)

// Metrics are the before/after statistics derived from two character counts.
type Metrics struct {
	OriginalChars int
	SummaryChars  int

	// ReductionPct is clamped to [0, 100].
	ReductionPct float64
	// Grew is set when the summary is larger than the original.
	Grew bool

	OriginalTokens int
	SummaryTokens  int
	OriginalPages  int
	SummaryPages   int
}

// Calculate derives Metrics from counts only. It is pure: the same inputs
// always give the same result.
func Calculate(originalChars, summaryChars int, budget core.ProcessingBudget) Metrics {
	return Metrics{
		OriginalChars:  originalChars,
		SummaryChars:   summaryChars,
		ReductionPct:   ReductionPct(originalChars, summaryChars),
		Grew:           summaryChars > originalChars,
		OriginalTokens: EstimateTokens(originalChars, budget.CharsPerToken),
		SummaryTokens:  EstimateTokens(summaryChars, budget.CharsPerToken),
		OriginalPages:  EstimatePages(originalChars, budget.CharsPerPage),
		SummaryPages:   EstimatePages(summaryChars, budget.CharsPerPage),
	}
}

// ReductionPct is (1 - summary/original) * 100 clamped to [0, 100].
// A zero original yields 0.
func ReductionPct(originalChars, summaryChars int) float64 {
	if originalChars <= 0 {
		return 0
	}
	pct := (1 - float64(summaryChars)/float64(originalChars)) * 100
	return math.Min(100, math.Max(0, pct))
}

// OveragePct is (chars - maxChars) / maxChars * 100, or 0 when chars fit.
func OveragePct(chars, maxChars int) float64 {
	if maxChars <= 0 || chars <= maxChars {
		return 0
	}
	return float64(chars-maxChars) / float64(maxChars) * 100
}

// EstimateTokens rounds chars/charsPerToken to the nearest integer.
func EstimateTokens(chars int, charsPerToken float64) int {
	if charsPerToken <= 0 || chars <= 0 {
		return 0
	}
	return int(math.Round(float64(chars) / charsPerToken))
}

// EstimatePages rounds chars/charsPerPage up.
func EstimatePages(chars int, charsPerPage float64) int {
	if charsPerPage <= 0 || chars <= 0 {
		return 0
	}
	return int(math.Ceil(float64(chars) / charsPerPage))
}

// SectionMetrics returns the local reduction of one section and whether it
// needs review because the summary came out larger than its source.
func SectionMetrics(s core.ChunkSummary) (reductionPct float64, needsReview bool) {
	return ReductionPct(s.OriginalCharCount, s.SummaryCharCount), s.SummaryCharCount > s.OriginalCharCount
}

// RecomputeMetrics rebuilds every derived field of report from its counts and
// budget. Used both when assembling and when loading a stored report.
func RecomputeMetrics(report *core.AggregateReport) {
	m := Calculate(report.TotalOriginalChars, report.TotalSummaryChars, report.Budget)
	report.ReductionPct = m.ReductionPct
	report.OriginalTokenEstimate = m.OriginalTokens
	report.SummarizedTokenEstimate = m.SummaryTokens
	report.OriginalPageEstimate = m.OriginalPages
	report.SummarizedPageEstimate = m.SummaryPages

	report.OveragePct = 0
	if report.Exceeded {
		report.OveragePct = OveragePct(report.TotalOriginalChars, report.Budget.MaxChars)
	}

	for i := range report.Sections {
		_, report.Sections[i].NeedsReview = SectionMetrics(report.Sections[i])
	}
}
