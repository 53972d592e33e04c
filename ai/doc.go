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

// Package ai provides the summarization collaborator used by the ingestion
// pipeline.
//
// The pipeline depends only on the Summarizer interface defined here. Concrete
// back-ends live in sub-packages and form a small closed set chosen explicitly
// when the pipeline is built:
//
//   - ai/openai: OpenAI-compatible chat APIs (OpenAI, Ollama, vLLM) via langchaingo
//   - ai/gemini: Google Gemini via the genai SDK
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Error Classification
//
// Back-ends must classify every failure as transient or permanent, because the
// pipeline's retry policy depends on it:
//
//	return ai.SummaryResponse{}, ai.Transient(err)  // timeout, 429, 5xx: retried
//	return ai.SummaryResponse{}, ai.Permanent(err)  // bad request, auth: not retried
//
// Classify maps an unclassified error from a third-party client onto one of the
// two classes.
//
// # Constructor Return Type Pattern
//
// Public back-end constructors (openai.NewSummarizer, gemini.NewSummarizer)
// return the ai.Summarizer interface. Test constructors in ai/mock return
// concrete types so tests can inspect call counts and inject behavior.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithHost("http://localhost:11434/v1"), ai.WithModel("qwen2.5:3b"))
//	summarizer, err := openai.NewSummarizer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	resp, err := summarizer.Summarize(ctx, ai.SummaryRequest{
//	    Text:        chunkText,
//	    Instruction: ai.DefaultInstruction,
//	})
package ai
