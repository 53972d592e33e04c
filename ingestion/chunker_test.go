package ingestion

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/pokhrel-dev/simplechat-sub002/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertLossless checks that chunks tile text exactly.
func assertLossless(t *testing.T, text string, chunks []core.Chunk) {
	t.Helper()

	var sb strings.Builder
	total := 0
	offset := 0
	for i, c := range chunks {
		assert.Equal(t, i, c.Index, "indices must be contiguous")
		assert.Equal(t, offset, c.StartOffset, "chunk %d must start where the previous ended", i)
		assert.Equal(t, c.EndOffset-c.StartOffset, c.CharCount)
		assert.Equal(t, core.CountChars(c.Text), c.CharCount)
		sb.WriteString(c.Text)
		total += c.CharCount
		offset = c.EndOffset
	}
	assert.Equal(t, text, sb.String(), "concatenation must reproduce the input")
	assert.Equal(t, core.CountChars(text), total, "char counts must sum to the input count")
}

func TestNewChunker_Validation(t *testing.T) {
	tests := []struct {
		name           string
		size, lookBack int
	}{
		{"zero size", 0, 0},
		{"negative size", -10, 0},
		{"negative look-back", 100, -1},
		{"look-back equal to size", 100, 100},
		{"look-back above size", 100, 150},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.size, tt.lookBack)
			assert.ErrorIs(t, err, core.ErrInvalidConfiguration)
		})
	}
}

func TestChunker_EmptyContent(t *testing.T) {
	c, err := NewChunker(100, 10)
	require.NoError(t, err)

	_, err = c.Split("")
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestChunker_ShorterThanWindow(t *testing.T) {
	c, err := NewChunker(100, 10)
	require.NoError(t, err)

	chunks, err := c.Split("short text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
}

func TestChunker_ExactlyOneWindow(t *testing.T) {
	c, err := NewChunker(100000, 2000)
	require.NoError(t, err)

	text := strings.Repeat("a", 100000)
	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "no remainder chunk for content of exactly one window")
	assert.Equal(t, 100000, chunks[0].CharCount)
}

func TestChunker_BreakPreference(t *testing.T) {
	t.Run("paragraph beats sentence and whitespace", func(t *testing.T) {
		c, err := NewChunker(30, 15)
		require.NoError(t, err)

		text := "First para end.\n\nSecond. More words here and more text follows on."
		chunks, err := c.Split(text)
		require.NoError(t, err)
		assert.Equal(t, "First para end.\n\n", chunks[0].Text)
		assertLossless(t, text, chunks)
	})

	t.Run("sentence beats whitespace", func(t *testing.T) {
		c, err := NewChunker(30, 15)
		require.NoError(t, err)

		text := "Alpha beta gamma. Delta epsilon zeta eta theta iota kappa."
		chunks, err := c.Split(text)
		require.NoError(t, err)
		assert.Equal(t, "Alpha beta gamma. ", chunks[0].Text)
		assertLossless(t, text, chunks)
	})

	t.Run("whitespace when no sentence end", func(t *testing.T) {
		c, err := NewChunker(20, 10)
		require.NoError(t, err)

		text := "alpha beta gamma delta epsilon zeta eta"
		chunks, err := c.Split(text)
		require.NoError(t, err)
		assert.Equal(t, "alpha beta gamma ", chunks[0].Text)
		assertLossless(t, text, chunks)
	})

	t.Run("raw cut when no break within look-back", func(t *testing.T) {
		c, err := NewChunker(10, 3)
		require.NoError(t, err)

		text := "ab " + strings.Repeat("x", 30)
		chunks, err := c.Split(text)
		require.NoError(t, err)
		assert.Equal(t, 10, chunks[0].CharCount, "break outside look-back is ignored")
		assertLossless(t, text, chunks)
	})
}

func TestChunker_ShortRemainderMerged(t *testing.T) {
	c, err := NewChunker(100, 10)
	require.NoError(t, err)

	text := strings.Repeat("x", 105)
	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 1, "remainder shorter than look-back joins the last chunk")
	assert.Equal(t, 105, chunks[0].CharCount)

	text = strings.Repeat("x", 150)
	chunks, err = c.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 50, chunks[1].CharCount)
}

func TestChunker_Unicode(t *testing.T) {
	c, err := NewChunker(5, 2)
	require.NoError(t, err)

	text := "héllo wörld ünïcödé 日本語テキスト"
	chunks, err := c.Split(text)
	require.NoError(t, err)
	assertLossless(t, text, chunks)
	for _, ch := range chunks[:len(chunks)-1] {
		assert.LessOrEqual(t, ch.CharCount, 5)
	}
}

func TestChunker_ScenarioChunkCount(t *testing.T) {
	c, err := NewChunker(100000, 2000)
	require.NoError(t, err)

	text := scenarioText()
	require.Equal(t, 1376852, core.CountChars(text))

	chunks, err := c.Split(text)
	require.NoError(t, err)
	require.Len(t, chunks, 14)
	for _, ch := range chunks[:13] {
		assert.Equal(t, 100000, ch.CharCount)
	}
	assert.Equal(t, 76852, chunks[13].CharCount)
	assertLossless(t, text, chunks)
}

func TestChunker_LosslessRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abc de.\n!?  é日")

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(500)
		runes := make([]rune, n)
		for i := range runes {
			runes[i] = alphabet[rng.Intn(len(alphabet))]
		}
		text := string(runes)

		size := 1 + rng.Intn(60)
		lookBack := rng.Intn(size)
		c, err := NewChunker(size, lookBack)
		require.NoError(t, err)

		chunks, err := c.Split(text)
		require.NoError(t, err)
		assertLossless(t, text, chunks)
	}
}

// scenarioText is 1,376,852 characters with a space every fifth character,
// so every window of 100,000 ends exactly on a word boundary.
func scenarioText() string {
	return strings.Repeat("word ", 275370) + "ab"
}
