package ai

import "context"

// SummaryRequest is a single-turn summarization call.
type SummaryRequest struct {
	// Text is the content to summarize.
	Text string

	// Instruction tells the model how to summarize. Empty means DefaultInstruction.
	Instruction string
}

// SummaryResponse carries the model output.
type SummaryResponse struct {
	SummaryText string
}

// Summarizer condenses text with a language model.
// Implementations must be thread-safe for concurrent use.
type Summarizer interface {
	// Summarize returns a shorter rendition of req.Text.
	// Errors must be wrapped with Transient or Permanent so callers can
	// decide whether a retry is worthwhile.
	Summarize(ctx context.Context, req SummaryRequest) (SummaryResponse, error)

	// Name identifies the back-end and model, e.g. "openai/gpt-4o-mini".
	// It is part of summary cache keys, so it must be stable.
	Name() string
}

// DefaultInstruction is the fixed summarization instruction used for chunks.
const DefaultInstruction = `You are condensing one section of a longer document so it can be used for question answering and citation.

Summarize the text below. Preserve:
- key facts, findings and conclusions
- names of people, organizations, products and places
- numbers, dates, amounts and units exactly as written
- section headings and the order in which topics appear

Remove repetition, boilerplate and filler. Do not add information that is not in the text.
Do not include any preamble or closing remarks; output only the summary.`

// InstructionOrDefault returns req.Instruction, or DefaultInstruction when empty.
func (req SummaryRequest) InstructionOrDefault() string {
	if req.Instruction == "" {
		return DefaultInstruction
	}
	return req.Instruction
}
