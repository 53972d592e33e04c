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

// Package storage provides the storage abstraction layer for simplechat.
//
// This package defines repository interfaces that decouple storage implementation
// from pipeline logic: a summary cache keyed by content hash and a report store
// keyed by source ID.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined here:
//
//	summaries, err := badger.NewSummaryRepository(backend) // storage.SummaryRepository
//
// Internal package constructors (newSummaryRepository, etc.) may return
// concrete types since they're only used within the implementation package.
//
// # Serialization
//
// Records are encoded with mus-go. Long texts (summaries and direct-path
// originals) are zstd-compressed inside the record. Each record starts with
// a format version.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	summaries, reports, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
