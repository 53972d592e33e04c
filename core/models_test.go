package core

import (
	"testing"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	if IDFromContent("content1") == IDFromContent("content2") {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestNewContentUnit_CountsCodePoints(t *testing.T) {
	unit := NewContentUnit("doc", "héllo wörld", 2)

	if unit.CharCount != 11 {
		t.Errorf("CharCount = %d, want 11", unit.CharCount)
	}
	if unit.PageCountHint != 2 {
		t.Errorf("PageCountHint = %d, want 2", unit.PageCountHint)
	}
}

func TestSummaryStatus_String(t *testing.T) {
	tests := []struct {
		status   SummaryStatus
		want     string
		degraded bool
	}{
		{StatusSummarized, "summarized", false},
		{StatusFallbackTruncated, "fallback-truncated", true},
		{StatusFallbackOriginal, "fallback-original", true},
		{SummaryStatus(0), "unknown", false},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.status.Degraded(); got != tt.degraded {
				t.Errorf("Degraded() = %v, want %v", got, tt.degraded)
			}
		})
	}
}

func TestAggregateReport_Content(t *testing.T) {
	t.Run("direct returns original text", func(t *testing.T) {
		r := &AggregateReport{Method: MethodDirect, OriginalText: "keep\n\nme"}
		if got := r.Content(); got != "keep\n\nme" {
			t.Errorf("Content() = %q", got)
		}
	})

	t.Run("summarized joins sections in order", func(t *testing.T) {
		r := &AggregateReport{
			Method: MethodChunkedSummarized,
			Sections: []ChunkSummary{
				{ChunkIndex: 0, SummaryText: "first"},
				{ChunkIndex: 1, SummaryText: "second", Status: StatusFallbackTruncated},
			},
		}
		if got := r.Content(); got != "first\n\nsecond" {
			t.Errorf("Content() = %q", got)
		}
		if got := r.DegradedSections(); got != 1 {
			t.Errorf("DegradedSections() = %d, want 1", got)
		}
	})
}
