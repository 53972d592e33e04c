package ingestion

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 2)

	tracker.Start(4)
	tracker.Increment(1)
	tracker.Increment(1)
	tracker.Increment(2)

	assert.Equal(t, 4, tracker.Current())
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))

	output := buf.String()
	assert.Contains(t, output, "2/4")
	assert.Contains(t, output, "4/4")
	assert.Contains(t, output, "100.0%")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10)

	tracker.Start(14)
	tracker.Increment(3)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "14/14", "finish should set to total")
	assert.Contains(t, output, "\n", "finish should print newline")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1)

	tracker.Increment(5)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Equal(t, time.Duration(0), tracker.Elapsed())
}

func TestProgressTracker_IncrementBeyondTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 1)

	tracker.Start(3)
	tracker.Increment(10)

	assert.Equal(t, 3, tracker.Current(), "should cap at total")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0)

	tracker.Start(0)
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0")
}
