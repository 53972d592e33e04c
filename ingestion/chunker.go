package ingestion

import (
	"unicode"

	"github.com/pokhrel-dev/simplechat-sub002/core"
)

// Chunker splits text into ordered chunks of roughly equal size, preferring
// to cut at paragraph, sentence or word boundaries.
//
// Sizes and offsets are in characters (code points). Cuts are placed after
// the separator, so concatenating the chunk texts reproduces the input.
type Chunker struct {
	size     int
	lookBack int
}

// NewChunker creates a chunker with target size and look-back distance.
// Requires size > 0 and 0 <= lookBack < size.
func NewChunker(size, lookBack int) (*Chunker, error) {
	if err := validateChunking(size, lookBack); err != nil {
		return nil, err
	}
	return &Chunker{size: size, lookBack: lookBack}, nil
}

// Split returns the chunks of text. Empty text returns core.ErrEmptyContent.
func (c *Chunker) Split(text string) ([]core.Chunk, error) {
	if text == "" {
		return nil, core.ErrEmptyContent
	}

	runes := []rune(text)
	n := len(runes)
	chunks := make([]core.Chunk, 0, n/c.size+1)

	for start := 0; start < n; {
		end := start + c.size
		if end >= n {
			end = n
		} else {
			end = c.findBreak(runes, start, end)
			// Fold a short tail into this chunk instead of emitting a sliver.
			if n-end < c.lookBack {
				end = n
			}
		}

		chunks = append(chunks, core.Chunk{
			Index:       len(chunks),
			StartOffset: start,
			EndOffset:   end,
			Text:        string(runes[start:end]),
			CharCount:   end - start,
		})
		start = end
	}

	return chunks, nil
}

// findBreak returns the cut position for the window [start, end). It searches
// back from end no further than lookBack characters and never returns a
// position at or before start.
func (c *Chunker) findBreak(runes []rune, start, end int) int {
	lo := end - c.lookBack
	if lo <= start {
		lo = start + 1
	}

	// Paragraph break
	for i := end; i >= lo; i-- {
		if i-2 >= start && runes[i-1] == '\n' && runes[i-2] == '\n' {
			return i
		}
	}

	// Sentence end followed by whitespace
	for i := end; i >= lo; i-- {
		if i-2 >= start && unicode.IsSpace(runes[i-1]) && isSentenceEnd(runes[i-2]) {
			return i
		}
	}

	// Any whitespace
	for i := end; i >= lo; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}

	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
