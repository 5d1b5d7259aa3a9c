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


// Package extract turns raw document bytes into plain text.
//
// Plain-text-like media types are decoded as UTF-8 directly. Structured
// binary formats (PDF, DOCX) are delegated to registered Decoders; without a
// registered decoder such types fail with ErrUnsupportedMediaType.
package extract

import (
	"fmt"
	"mime"
	"strings"
	"sync"

	"github.com/quarrylabs/corpus/core"
)

// Decoder extracts plain text from one structured document format.
// Decoders produce best-effort text that may be empty on failure.
type Decoder interface {
	Decode(data []byte) (string, error)
}

// textLikeTypes are non-"text/*" media types decoded as UTF-8 directly.
var textLikeTypes = map[string]bool{
	"application/json":       true,
	"application/xml":        true,
	"application/javascript": true,
	"application/x-ndjson":   true,
}

var (
	decodersMu sync.RWMutex
	decoders   = map[string]Decoder{}
)

// RegisterDecoder registers a decoder for a structured media type
// (e.g. "application/pdf"). A later registration for the same type
// replaces the earlier one.
func RegisterDecoder(mediaType string, decoder Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[normalizeMediaType(mediaType)] = decoder
}

// Extract converts document bytes of the given media type into plain text.
// Returns ErrUnsupportedMediaType when no text-bearing interpretation of the
// type is possible.
func Extract(data []byte, mediaType string) (string, error) {
	normalized := normalizeMediaType(mediaType)
	if normalized == "" {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedMediaType, mediaType)
	}

	if strings.HasPrefix(normalized, "text/") || textLikeTypes[normalized] {
		return string(data), nil
	}

	decodersMu.RLock()
	decoder, ok := decoders[normalized]
	decodersMu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedMediaType, mediaType)
	}

	return decoder.Decode(data)
}

// normalizeMediaType strips parameters ("text/plain; charset=utf-8") and
// lowercases the type. Returns "" for unparseable input.
func normalizeMediaType(mediaType string) string {
	parsed, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return ""
	}
	return parsed
}
