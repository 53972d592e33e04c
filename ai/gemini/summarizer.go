// Package gemini provides a summarization back-end for Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"google.golang.org/genai"
)

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Summarizer implements ai.Summarizer using the Gemini API.
type Summarizer struct {
	generate        generateFunc
	model           string
	temperature     float32
	maxOutputTokens int32
	timeout         time.Duration
	logger          *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// NewSummarizer creates a Gemini summarizer. The API key is resolved from
// config.APIKey or the variable named by config.APIKeyEnv.
func NewSummarizer(ctx context.Context, config *ai.Config) (ai.Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderGemini {
		return nil, fmt.Errorf("gemini summarizer: provider is %q", config.Provider)
	}

	apiKey := config.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("gemini summarizer: API key is required (set %s)", config.APIKeyEnv)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend: genai.BackendGeminiAPI,
		APIKey:  apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return newSummarizer(client.Models.GenerateContent, config), nil
}

func newSummarizer(generate generateFunc, config *ai.Config) *Summarizer {
	return &Summarizer{
		generate:        generate,
		model:           config.Model,
		temperature:     float32(config.Temperature),
		maxOutputTokens: int32(config.MaxOutputTokens),
		timeout:         config.RequestTimeout,
		logger:          slog.Default().With("component", "gemini-summarizer"),
	}
}

// Name identifies the back-end and model.
func (s *Summarizer) Name() string {
	return "gemini/" + s.model
}

// Summarize condenses req.Text with a single GenerateContent call.
func (s *Summarizer) Summarize(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	config := &genai.GenerateContentConfig{
		Temperature:       ptr(s.temperature),
		SystemInstruction: genai.NewContentFromText(req.InstructionOrDefault(), "user"),
	}
	if s.maxOutputTokens > 0 {
		config.MaxOutputTokens = ptr(s.maxOutputTokens)
	}
	contents := []*genai.Content{genai.NewContentFromText(req.Text, "user")}

	resp, err := s.generate(ctx, s.model, contents, config)
	if err != nil {
		classified := ai.Classify(err)
		s.logger.Warn("summary request failed", "model", s.model, "transient", ai.IsTransient(classified), "err", err)
		return ai.SummaryResponse{}, classified
	}

	text := strings.TrimSpace(responseText(resp))
	if text == "" {
		return ai.SummaryResponse{}, ai.Permanent(ai.ErrEmptySummary)
	}
	return ai.SummaryResponse{SummaryText: text}, nil
}

// responseText concatenates the text parts of the first candidate, skipping thoughts.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String()
}

func ptr[T any](v T) *T {
	return &v
}
