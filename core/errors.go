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


package core

import "errors"

// Domain errors shared across the ingestion and retrieval pipeline.
var (
	// ErrInvalidInput indicates a request was rejected before any I/O
	// (bad URL, empty text, zero or negative size parameters).
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSource indicates a Source failed validation.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidTurn indicates a conversation Turn failed validation.
	ErrInvalidTurn = errors.New("invalid turn")

	// ErrInvalidSourceKind indicates an unrecognized SourceKind value.
	ErrInvalidSourceKind = errors.New("invalid source kind")

	// ErrInvalidSpeaker indicates an invalid Speaker value.
	ErrInvalidSpeaker = errors.New("invalid speaker")

	// ErrEmptyContent indicates a required text field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrUnsupportedMediaType indicates no text-bearing interpretation
	// exists for the given media type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrFetchFailure indicates a single page fetch failed. It is recorded
	// per page and never aborts a crawl.
	ErrFetchFailure = errors.New("fetch failure")

	// ErrEmbeddingFailure indicates the embedding capability failed for a
	// batch. The whole batch fails; there is no partial success.
	ErrEmbeddingFailure = errors.New("embedding failure")
)
