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

package badger

import (
	"encoding/binary"
)

// Key prefixes for different record types
const (
	summaryCachePrefix = "sumcache:"
	reportPrefix       = "report:"
)

// makeSummaryKey generates a key for a cached summary.
// Format: prefix + 8 byte BigEndian content ID
func makeSummaryKey(id uint64) []byte {
	prefixBytes := []byte(summaryCachePrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// makeReportKey generates a key for the report of a source.
// Format: prefix + source ID, so iteration yields reports ordered by source.
func makeReportKey(sourceID string) []byte {
	buf := make([]byte, 0, len(reportPrefix)+len(sourceID))
	buf = append(buf, reportPrefix...)
	return append(buf, sourceID...)
}
