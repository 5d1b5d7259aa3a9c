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


// Package chunker splits text into fixed-size overlapping windows for
// embedding.
//
// Windows are measured in runes, not bytes, so multi-byte text never splits
// inside a character. Kept windows are returned untrimmed: concatenating the
// non-overlapping spans of all windows reconstructs the input losslessly.
package chunker

import (
	"fmt"
	"strings"

	"github.com/quarrylabs/corpus/core"
)

// Default window parameters for ingestion.
const (
	DefaultSize    = 1000
	DefaultOverlap = 200
)

// Chunk splits text into windows of size runes where window i starts at
// offset i*(size-overlap). The last window may be shorter than size. Windows
// that are pure whitespace are dropped, so the returned sequence can be
// shorter than the naive count. Requires size > overlap >= 0.
func Chunk(text string, size, overlap int) ([]string, error) {
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative", core.ErrInvalidInput)
	}
	if size <= overlap {
		return nil, fmt.Errorf("%w: size must exceed overlap", core.ErrInvalidInput)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	stride := size - overlap
	var chunks []string

	for start := 0; start < len(runes); start += stride {
		end := min(start+size, len(runes))

		window := string(runes[start:end])
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, window)

		if end == len(runes) {
			break
		}
	}

	return chunks, nil
}
