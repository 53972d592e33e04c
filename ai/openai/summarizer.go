// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pokhrel-dev/simplechat-sub002/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Summarizer implements ai.Summarizer using OpenAI-compatible chat APIs.
type Summarizer struct {
	client          llms.Model
	model           string
	temperature     float64
	maxOutputTokens int
	timeout         time.Duration
	logger          *slog.Logger
}

var _ ai.Summarizer = (*Summarizer)(nil)

// newSummarizer is an internal constructor that returns the concrete type.
func newSummarizer(config *ai.Config) (*Summarizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Provider != ai.ProviderOpenAI {
		return nil, fmt.Errorf("openai summarizer: provider is %q", config.Provider)
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.ResolveAPIKey()),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return newSummarizerWithModel(client, config), nil
}

// newSummarizerWithModel wires an existing llms.Model. Tests use it to swap
// the HTTP client for a fake.
func newSummarizerWithModel(client llms.Model, config *ai.Config) *Summarizer {
	return &Summarizer{
		client:          client,
		model:           config.Model,
		temperature:     config.Temperature,
		maxOutputTokens: config.MaxOutputTokens,
		timeout:         config.RequestTimeout,
		logger:          slog.Default().With("component", "openai-summarizer"),
	}
}

// NewSummarizer creates a new summarizer using the provided configuration.
//
// Returns ai.Summarizer interface to enforce abstraction.
func NewSummarizer(config *ai.Config) (ai.Summarizer, error) {
	return newSummarizer(config)
}

// Name identifies the back-end and model.
func (s *Summarizer) Name() string {
	return "openai/" + s.model
}

// Summarize condenses req.Text with a single chat completion.
func (s *Summarizer) Summarize(ctx context.Context, req ai.SummaryRequest) (ai.SummaryResponse, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(req.InstructionOrDefault()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(req.Text),
			},
		},
	}

	callOpts := []llms.CallOption{llms.WithTemperature(s.temperature)}
	if s.maxOutputTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(s.maxOutputTokens))
	}

	s.logger.Debug("requesting summary", "model", s.model, "length", len(req.Text))

	response, err := s.client.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		classified := ai.Classify(err)
		s.logger.Warn("summary request failed", "model", s.model, "transient", ai.IsTransient(classified), "err", err)
		return ai.SummaryResponse{}, classified
	}

	if len(response.Choices) < 1 {
		s.logger.Debug("no choices returned from model")
		return ai.SummaryResponse{}, ai.Permanent(ai.ErrEmptySummary)
	}

	text := strings.TrimSpace(response.Choices[0].Content)
	if text == "" {
		return ai.SummaryResponse{}, ai.Permanent(ai.ErrEmptySummary)
	}

	return ai.SummaryResponse{SummaryText: text}, nil
}
