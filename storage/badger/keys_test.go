package badger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSummaryKey(t *testing.T) {
	key := makeSummaryKey(1)
	assert.True(t, bytes.HasPrefix(key, []byte(summaryCachePrefix)))
	assert.Len(t, key, len(summaryCachePrefix)+8)

	// BigEndian keeps numeric order.
	assert.Equal(t, -1, bytes.Compare(makeSummaryKey(1), makeSummaryKey(256)))
}

func TestMakeReportKey(t *testing.T) {
	assert.Equal(t, []byte("report:handbook.pdf"), makeReportKey("handbook.pdf"))
	assert.Equal(t, -1, bytes.Compare(makeReportKey("a.txt"), makeReportKey("b.txt")))
}
