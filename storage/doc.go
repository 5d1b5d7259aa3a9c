// Copyright 2025 Quarry Labs
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


// Package storage provides the storage abstraction layer for corpus.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, allowing different storage backends
// (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Repositories
//
//   - SourceRepository: ingested content sources (documents, media,
//     websites, pages) with cascading deletes
//   - ChunkRepository: embedded text chunks with idempotent upsert and
//     similarity/recency queries
//   - ConversationRepository: persisted user/assistant turns
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return interface types to enforce
// abstraction and enable multiple storage backend implementations:
//
//	repo, err := badger.NewSourceRepository(backend)  // returns storage.SourceRepository
//
// # Ranking Modes
//
// ChunkRepository.Query tags every result with the RankingMode that ordered
// it: RankingSimilarity for true cosine ranking over stored vectors, or
// RankingRecency for the degraded most-recent-first fallback. Callers and
// tests can therefore always distinguish a real ranked result from a
// degraded one.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
