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

package storage

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/pokhrel-dev/simplechat-sub002/core"
)

const (
	summaryRecordVersion = 1
	reportRecordVersion  = 1
)

var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	return putInt64(nil, int64(id))
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Int64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalCachedSummary serializes a CachedSummary to bytes.
func MarshalCachedSummary(s *CachedSummary) []byte {
	buf := putInt(nil, summaryRecordVersion)
	buf = putInt64(buf, int64(s.Key))
	buf = putString(buf, s.Backend)
	buf = putString(buf, compress(s.SummaryText))
	buf = putInt(buf, s.SourceChars)
	buf = putTime(buf, s.CreatedAt)
	return buf
}

// UnmarshalCachedSummary deserializes a CachedSummary from bytes.
func UnmarshalCachedSummary(data []byte) (*CachedSummary, error) {
	d := &reader{bs: data}
	if v := d.readInt(); d.err == nil && v != summaryRecordVersion {
		return nil, fmt.Errorf("%w: summary version %d", ErrUnsupportedVersion, v)
	}

	s := &CachedSummary{
		Key:     core.ID(d.readInt64()),
		Backend: d.readString(),
	}
	s.SummaryText = d.readCompressed()
	s.SourceChars = d.readInt()
	s.CreatedAt = d.readTime()

	if d.err != nil {
		return nil, d.err
	}
	return s, nil
}

// MarshalReport serializes an AggregateReport to bytes. Derived percentages
// and estimates are not written.
func MarshalReport(r *core.AggregateReport) []byte {
	buf := putInt(nil, reportRecordVersion)
	buf = putString(buf, r.RunID)
	buf = putString(buf, r.SourceID)
	buf = putString(buf, string(r.Method))
	buf = putInt(buf, r.Budget.MaxChars)
	buf = putFloat64(buf, r.Budget.CharsPerToken)
	buf = putFloat64(buf, r.Budget.CharsPerPage)
	buf = putBool(buf, r.Exceeded)
	buf = putInt(buf, r.PageCountHint)
	buf = putInt(buf, r.TotalOriginalChars)
	buf = putInt(buf, r.TotalSummaryChars)
	buf = putString(buf, compress(r.OriginalText))
	buf = putTime(buf, r.CreatedAt)

	buf = putInt(buf, len(r.Sections))
	for _, s := range r.Sections {
		buf = putInt(buf, s.ChunkIndex)
		buf = putInt(buf, s.OriginalCharCount)
		buf = putString(buf, compress(s.SummaryText))
		buf = putInt(buf, s.SummaryCharCount)
		buf = putInt(buf, int(s.Status))
		buf = putInt(buf, s.Attempts)
		buf = putBool(buf, s.NeedsReview)
		buf = putBool(buf, s.Cached)
	}
	return buf
}

// UnmarshalReport deserializes an AggregateReport from bytes.
func UnmarshalReport(data []byte) (*core.AggregateReport, error) {
	d := &reader{bs: data}
	if v := d.readInt(); d.err == nil && v != reportRecordVersion {
		return nil, fmt.Errorf("%w: report version %d", ErrUnsupportedVersion, v)
	}

	r := &core.AggregateReport{}
	r.RunID = d.readString()
	r.SourceID = d.readString()
	r.Method = core.ProcessingMethod(d.readString())
	r.Budget.MaxChars = d.readInt()
	r.Budget.CharsPerToken = d.readFloat64()
	r.Budget.CharsPerPage = d.readFloat64()
	r.Exceeded = d.readBool()
	r.PageCountHint = d.readInt()
	r.TotalOriginalChars = d.readInt()
	r.TotalSummaryChars = d.readInt()
	r.OriginalText = d.readCompressed()
	r.CreatedAt = d.readTime()

	n := d.readInt()
	if d.err == nil && (n < 0 || n > len(d.bs)) {
		return nil, fmt.Errorf("%w: section count %d", ErrSerializationFailed, n)
	}
	if n > 0 {
		r.Sections = make([]core.ChunkSummary, 0, n)
	}
	for i := 0; i < n && d.err == nil; i++ {
		var s core.ChunkSummary
		s.ChunkIndex = d.readInt()
		s.OriginalCharCount = d.readInt()
		s.SummaryText = d.readCompressed()
		s.SummaryCharCount = d.readInt()
		s.Status = core.SummaryStatus(d.readInt())
		s.Attempts = d.readInt()
		s.NeedsReview = d.readBool()
		s.Cached = d.readBool()
		r.Sections = append(r.Sections, s)
	}

	if d.err != nil {
		return nil, d.err
	}
	return r, nil
}

// compress returns the zstd frame for text as a string. Empty text stays empty.
func compress(text string) string {
	if text == "" {
		return ""
	}
	return string(encoder.EncodeAll([]byte(text), nil))
}

func putInt(bs []byte, v int) []byte {
	n := varint.Int.Size(v)
	bs = slices.Grow(bs, n)
	varint.Int.Marshal(v, bs[len(bs):len(bs)+n])
	return bs[:len(bs)+n]
}

func putInt64(bs []byte, v int64) []byte {
	n := varint.Int64.Size(v)
	bs = slices.Grow(bs, n)
	varint.Int64.Marshal(v, bs[len(bs):len(bs)+n])
	return bs[:len(bs)+n]
}

func putFloat64(bs []byte, v float64) []byte {
	return putInt64(bs, int64(math.Float64bits(v)))
}

func putString(bs []byte, v string) []byte {
	n := ord.String.Size(v)
	bs = slices.Grow(bs, n)
	ord.String.Marshal(v, bs[len(bs):len(bs)+n])
	return bs[:len(bs)+n]
}

func putBool(bs []byte, v bool) []byte {
	n := ord.Bool.Size(v)
	bs = slices.Grow(bs, n)
	ord.Bool.Marshal(v, bs[len(bs):len(bs)+n])
	return bs[:len(bs)+n]
}

// putTime stores t as Unix microseconds; the zero time is stored as 0.
func putTime(bs []byte, t time.Time) []byte {
	if t.IsZero() {
		return putInt64(bs, 0)
	}
	return putInt64(bs, t.UnixMicro())
}

// reader decodes fields in order and keeps the first error.
type reader struct {
	bs  []byte
	err error
}

func (r *reader) fail(err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
}

func (r *reader) readInt() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs)
	if err != nil {
		r.fail(err)
		return 0
	}
	r.bs = r.bs[n:]
	return v
}

func (r *reader) readInt64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs)
	if err != nil {
		r.fail(err)
		return 0
	}
	r.bs = r.bs[n:]
	return v
}

func (r *reader) readFloat64() float64 {
	return math.Float64frombits(uint64(r.readInt64()))
}

func (r *reader) readString() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs)
	if err != nil {
		r.fail(err)
		return ""
	}
	r.bs = r.bs[n:]
	return v
}

func (r *reader) readBool() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs)
	if err != nil {
		r.fail(err)
		return false
	}
	r.bs = r.bs[n:]
	return v
}

func (r *reader) readTime() time.Time {
	micros := r.readInt64()
	if micros == 0 {
		return time.Time{}
	}
	return time.UnixMicro(micros).UTC()
}

func (r *reader) readCompressed() string {
	frame := r.readString()
	if r.err != nil || frame == "" {
		return ""
	}
	text, err := decoder.DecodeAll([]byte(frame), nil)
	if err != nil {
		r.fail(err)
		return ""
	}
	return string(text)
}
