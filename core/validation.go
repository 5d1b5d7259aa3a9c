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

import (
	"fmt"
	"time"
)

// ValidateSource validates a Source according to domain rules.
//
// Validation rules:
//   - Kind must be a known SourceKind
//   - Pages must reference an owning website
//   - Websites and pages must carry a URL
//
// NOT validated:
//   - Text (websites have none; documents may be re-ingested later)
//   - ID (0 is valid before database sequences assign one)
func ValidateSource(source *Source) error {
	if source == nil {
		return fmt.Errorf("%w: source is nil", ErrInvalidSource)
	}

	if err := ValidateSourceKind(source.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	switch source.Kind {
	case SourceKindPage:
		if source.ParentId == 0 {
			return fmt.Errorf("%w: page has no owning website", ErrInvalidSource)
		}
		if source.URL == "" {
			return fmt.Errorf("%w: page has no url", ErrInvalidSource)
		}
	case SourceKindWebsite:
		if source.URL == "" {
			return fmt.Errorf("%w: website has no url", ErrInvalidSource)
		}
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Kind must be a known SourceKind
//   - SourceId must reference an owning source
//   - Index must be non-negative
//   - Text must not be empty
//
// NOT validated:
//   - Vector (can be empty until the embedding stage runs)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if err := ValidateSourceKind(chunk.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	if chunk.SourceId == 0 {
		return fmt.Errorf("%w: chunk has no owning source", ErrInvalidChunk)
	}

	if chunk.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, chunk.Index)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyContent)
	}

	return nil
}

// ValidateTurn validates a conversation Turn according to domain rules.
func ValidateTurn(turn *Turn) error {
	if turn == nil {
		return fmt.Errorf("%w: turn is nil", ErrInvalidTurn)
	}

	if turn.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, ErrEmptyContent)
	}

	if err := ValidateSpeaker(turn.Speaker); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTurn, err)
	}

	if !IsValidTimestamp(turn.Timestamp) {
		return fmt.Errorf("%w: timestamp is in the future", ErrInvalidTurn)
	}

	return nil
}

// ValidateSourceKind validates that a SourceKind has a valid value.
func ValidateSourceKind(kind SourceKind) error {
	switch kind {
	case SourceKindDocument, SourceKindMedia, SourceKindWebsite, SourceKindPage:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidSourceKind, kind)
	}
}

// ValidateSpeaker validates that a Speaker has a valid value.
func ValidateSpeaker(speaker Speaker) error {
	if speaker != SpeakerHuman && speaker != SpeakerAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidSpeaker, speaker)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
