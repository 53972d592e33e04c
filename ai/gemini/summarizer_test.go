package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func testConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(ai.ProviderGemini),
		ai.WithModel("gemini-2.0-flash"),
		ai.WithMaxOutputTokens(512),
	)
}

func textResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: parts},
		}},
	}
}

func TestSummarizer_Summarize(t *testing.T) {
	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content

	generate := func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel = model
		gotConfig = config
		gotContents = contents
		return textResponse(
			&genai.Part{Text: "thinking...", Thought: true},
			&genai.Part{Text: "first half "},
			&genai.Part{Text: "second half"},
		), nil
	}

	s := newSummarizer(generate, testConfig())
	resp, err := s.Summarize(context.Background(), ai.SummaryRequest{Text: "source text", Instruction: "shorten"})
	require.NoError(t, err)
	assert.Equal(t, "first half second half", resp.SummaryText)

	assert.Equal(t, "gemini-2.0-flash", gotModel)
	require.NotNil(t, gotConfig.MaxOutputTokens)
	assert.Equal(t, int32(512), *gotConfig.MaxOutputTokens)
	require.NotNil(t, gotConfig.SystemInstruction)
	assert.Equal(t, "shorten", gotConfig.SystemInstruction.Parts[0].Text)
	require.Len(t, gotContents, 1)
	assert.Equal(t, "source text", gotContents[0].Parts[0].Text)
}

func TestSummarizer_EmptyCandidates(t *testing.T) {
	generate := func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	}

	s := newSummarizer(generate, testConfig())
	_, err := s.Summarize(context.Background(), ai.SummaryRequest{Text: "text"})
	assert.ErrorIs(t, err, ai.ErrEmptySummary)
	assert.True(t, ai.IsPermanent(err))
}

func TestSummarizer_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "resource exhausted", err: errors.New("Error 429, Message: quota, Status: RESOURCE_EXHAUSTED"), transient: true},
		{name: "unavailable", err: errors.New("Error 503, Message: overloaded, Status: UNAVAILABLE"), transient: true},
		{name: "invalid argument", err: errors.New("Error 400, Message: bad, Status: INVALID_ARGUMENT"), transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generate := func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return nil, tt.err
			}

			s := newSummarizer(generate, testConfig())
			_, err := s.Summarize(context.Background(), ai.SummaryRequest{Text: "text"})
			require.Error(t, err)
			assert.Equal(t, tt.transient, ai.IsTransient(err))
		})
	}
}

func TestSummarizer_Name(t *testing.T) {
	s := newSummarizer(nil, testConfig())
	assert.Equal(t, "gemini/gemini-2.0-flash", s.Name())
}

func TestNewSummarizer_RequiresAPIKey(t *testing.T) {
	t.Setenv("SIMPLECHAT_TEST_GEMINI_KEY", "")
	cfg := testConfig()
	cfg.APIKeyEnv = "SIMPLECHAT_TEST_GEMINI_KEY"

	_, err := NewSummarizer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
}

func TestNewSummarizer_RejectsOtherProvider(t *testing.T) {
	cfg := ai.NewConfig(ai.WithModel("gpt-4o-mini"))

	_, err := NewSummarizer(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}
