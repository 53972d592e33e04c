package mock

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
)

// DefaultRatio is the fraction (1/DefaultRatio) of the input kept by the default behavior.
const DefaultRatio = 10

// MockSummarizer is a test double for ai.Summarizer.
// It allows custom behavior injection via function fields and is safe for
// concurrent use.
type MockSummarizer struct {
	// SummarizeFunc is called by Summarize if set.
	// If nil, keeps the leading 1/Ratio of the text.
	SummarizeFunc func(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error)

	// Ratio controls the default behavior. Values below 1 use DefaultRatio.
	Ratio int

	// NameValue is returned by Name.
	NameValue string

	mu        sync.Mutex
	failLeft  int
	failErr   error
	callCount atomic.Int64
}

// NewMockSummarizer creates a mock summarizer with default behavior.
func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{
		Ratio:     DefaultRatio,
		NameValue: "mock/summarizer",
	}
}

// WithSummarizeFunc sets custom behavior.
func (m *MockSummarizer) WithSummarizeFunc(fn func(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error)) *MockSummarizer {
	m.SummarizeFunc = fn
	return m
}

// FailTimes makes the next n calls return err before normal behavior resumes.
func (m *MockSummarizer) FailTimes(n int, err error) *MockSummarizer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failLeft = n
	m.failErr = err
	return m
}

// Summarize returns the injected result or a deterministic truncation.
func (m *MockSummarizer) Summarize(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
	m.callCount.Add(1)

	if err := ctx.Err(); err != nil {
		return ai.SummaryResponse{}, ai.Permanent(err)
	}

	m.mu.Lock()
	if m.failLeft > 0 {
		m.failLeft--
		err := m.failErr
		m.mu.Unlock()
		return ai.SummaryResponse{}, err
	}
	m.mu.Unlock()

	if m.SummarizeFunc != nil {
		return m.SummarizeFunc(ctx, req)
	}

	return ai.SummaryResponse{SummaryText: Condense(req.Text, m.Ratio)}, nil
}

// Name returns NameValue.
func (m *MockSummarizer) Name() string {
	if m.NameValue == "" {
		return "mock/summarizer"
	}
	return m.NameValue
}

// CallCount returns the number of times Summarize was called.
func (m *MockSummarizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count, injected failures and custom functions.
func (m *MockSummarizer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount.Store(0)
	m.failLeft = 0
	m.failErr = nil
	m.SummarizeFunc = nil
}

// Condense keeps the leading 1/ratio of text, counted in code points.
// At least one code point is kept for non-empty input.
func Condense(text string, ratio int) string {
	if ratio < 1 {
		ratio = DefaultRatio
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	keep := len(runes) / ratio
	if keep < 1 {
		keep = 1
	}
	out := strings.TrimSpace(string(runes[:keep]))
	if out == "" {
		return "[blank]"
	}
	return out
}
