package ingestion

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pokhrel-dev/simplechat-sub002/core"
)

// AssembleDirect builds the report for content that fits the budget. The
// body is the original text and no summarization is recorded.
func AssembleDirect(runID string, unit core.ContentUnit, budget core.ProcessingBudget, now time.Time) *core.AggregateReport {
	report := &core.AggregateReport{
		RunID:              runID,
		SourceID:           unit.SourceID,
		Method:             core.MethodDirect,
		Budget:             budget,
		PageCountHint:      unit.PageCountHint,
		TotalOriginalChars: unit.CharCount,
		TotalSummaryChars:  unit.CharCount,
		OriginalText:       unit.RawText,
		CreatedAt:          now,
	}
	RecomputeMetrics(report)
	return report
}

// Assemble builds the report for summarized content. Sections are ordered
// by ChunkIndex regardless of the order of summaries. Totals and
// percentages are computed from the section counts.
func Assemble(runID string, unit core.ContentUnit, budget core.ProcessingBudget, summaries []core.ChunkSummary, now time.Time) *core.AggregateReport {
	sections := slices.Clone(summaries)
	slices.SortFunc(sections, func(a, b core.ChunkSummary) int {
		return a.ChunkIndex - b.ChunkIndex
	})

	report := &core.AggregateReport{
		RunID:         runID,
		SourceID:      unit.SourceID,
		Method:        core.MethodChunkedSummarized,
		Budget:        budget,
		Exceeded:      true,
		PageCountHint: unit.PageCountHint,
		Sections:      sections,
		CreatedAt:     now,
	}
	for _, s := range sections {
		report.TotalOriginalChars += s.OriginalCharCount
		report.TotalSummaryChars += s.SummaryCharCount
	}
	RecomputeMetrics(report)
	return report
}

// Render writes the plain-text form of report: a metrics header followed by
// the body. On the direct path the body is the original text, unchanged.
func Render(w io.Writer, report *core.AggregateReport) error {
	var sb strings.Builder
	writeHeader(&sb, report)

	sb.WriteString("\n")
	if report.Method == core.MethodDirect {
		sb.WriteString(report.OriginalText)
	} else {
		for i, s := range report.Sections {
			if i > 0 {
				sb.WriteString("\n\n")
			}
			writeSection(&sb, s, len(report.Sections))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeHeader(sb *strings.Builder, r *core.AggregateReport) {
	fmt.Fprintf(sb, "Source: %s\n", r.SourceID)
	if r.Method == core.MethodDirect {
		fmt.Fprintf(sb, "Method: %s (no summarization occurred; content fits the budget)\n", r.Method)
	} else {
		fmt.Fprintf(sb, "Method: %s (%d sections", r.Method, len(r.Sections))
		if n := r.DegradedSections(); n > 0 {
			fmt.Fprintf(sb, ", %d degraded", n)
		}
		sb.WriteString(")\n")
	}
	fmt.Fprintf(sb, "Budget: %s chars (~%s tokens)\n",
		humanize.Comma(int64(r.Budget.MaxChars)),
		humanize.Comma(int64(EstimateTokens(r.Budget.MaxChars, r.Budget.CharsPerToken))))
	if r.Exceeded {
		fmt.Fprintf(sb, "Overage: %.1f%% over budget\n", r.OveragePct)
	}
	fmt.Fprintf(sb, "Reduction: %.1f%%\n", r.ReductionPct)
	fmt.Fprintf(sb, "Characters: %s -> %s\n", humanize.Comma(int64(r.TotalOriginalChars)), humanize.Comma(int64(r.TotalSummaryChars)))
	fmt.Fprintf(sb, "Pages (est.): %s -> %s\n", humanize.Comma(int64(r.OriginalPageEstimate)), humanize.Comma(int64(r.SummarizedPageEstimate)))
	fmt.Fprintf(sb, "Tokens (est.): %s -> %s\n", humanize.Comma(int64(r.OriginalTokenEstimate)), humanize.Comma(int64(r.SummarizedTokenEstimate)))
	if r.PageCountHint > 0 {
		fmt.Fprintf(sb, "Source pages: %s\n", humanize.Comma(int64(r.PageCountHint)))
	}
}

func writeSection(sb *strings.Builder, s core.ChunkSummary, total int) {
	reduction, needsReview := SectionMetrics(s)
	fmt.Fprintf(sb, "--- Section %d of %d: %s -> %s chars (%.1f%% reduction) ---\n",
		s.ChunkIndex+1, total,
		humanize.Comma(int64(s.OriginalCharCount)), humanize.Comma(int64(s.SummaryCharCount)),
		reduction)
	if marker := statusMarker(s.Status); marker != "" {
		fmt.Fprintf(sb, "[%s]\n", marker)
	}
	if needsReview {
		sb.WriteString("[review: summary is longer than its source]\n")
	}
	sb.WriteString(s.SummaryText)
}

// statusMarker labels degraded sections so they are never mistaken for a
// model summary.
func statusMarker(status core.SummaryStatus) string {
	switch status {
	case core.StatusFallbackTruncated:
		return "summarization failed: best-effort truncation used"
	case core.StatusFallbackOriginal:
		return "summarization failed: original text kept"
	default:
		return ""
	}
}
