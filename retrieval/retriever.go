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


package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quarrylabs/corpus/ai"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
)

const (
	// DefaultTopK is the number of chunks a similarity query returns.
	DefaultTopK = 10
	// DefaultPageLimit caps how many stored pages a website scope returns.
	DefaultPageLimit = 10
)

// Scope narrows retrieval to one known source.
type Scope struct {
	Kind     core.SourceKind
	SourceId core.ID
}

// Result is an assembled retrieval context.
type Result struct {
	// Context is the text to hand to prompt assembly. Empty means nothing
	// was found; that is never an error.
	Context string

	// Ranking reports how chunk results were ordered. Zero for the
	// direct-fetch branches, which perform no chunk query at all.
	Ranking storage.RankingMode
}

// Retriever assembles context strings for a generation call.
//
// Scoped retrieval prefers exact stored content over similarity search:
// a document scope returns the document's full text, a website scope returns
// its stored pages, a media scope returns transcription and translation.
// Only the open-ended case embeds the query and searches the vector index.
type Retriever struct {
	sources   storage.SourceRepository
	chunks    storage.ChunkRepository
	embedder  ai.Embedder
	topK      int
	pageLimit int
	logger    *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithTopK sets how many chunks similarity queries return.
// Default is 10.
func WithTopK(topK int) Option {
	return func(r *Retriever) error {
		if topK < 1 {
			return fmt.Errorf("%w: topK must be positive", core.ErrInvalidInput)
		}
		r.topK = topK
		return nil
	}
}

// WithPageLimit sets how many stored pages a website scope returns.
// Default is 10.
func WithPageLimit(limit int) Option {
	return func(r *Retriever) error {
		if limit < 1 {
			return fmt.Errorf("%w: page limit must be positive", core.ErrInvalidInput)
		}
		r.pageLimit = limit
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(sources storage.SourceRepository, chunks storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if sources == nil {
		return nil, ErrSourceRepositoryRequired
	}
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		sources:   sources,
		chunks:    chunks,
		embedder:  embedder,
		topK:      DefaultTopK,
		pageLimit: DefaultPageLimit,
		logger:    slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve assembles a context string for the query. A nil scope searches
// everything; a scope naming a document, website, or media source returns
// that source's stored content directly without similarity search. Any
// branch that finds nothing returns an empty context, never an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, scope *Scope) (*Result, error) {
	if scope != nil && scope.SourceId != 0 {
		switch scope.Kind {
		case core.SourceKindDocument:
			return r.retrieveDocument(ctx, scope.SourceId)
		case core.SourceKindWebsite:
			return r.retrieveWebsite(ctx, scope.SourceId)
		case core.SourceKindMedia:
			return r.retrieveMedia(ctx, scope.SourceId)
		}
	}

	return r.retrieveSimilar(ctx, query, scope)
}

// retrieveDocument returns the document's full stored text; exact content
// beats approximate retrieval for pinned small sources.
func (r *Retriever) retrieveDocument(ctx context.Context, id core.ID) (*Result, error) {
	text, err := r.sources.GetSourceText(ctx, core.SourceKindDocument, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Result{}, nil
		}
		return nil, err
	}
	return &Result{Context: text}, nil
}

// retrieveWebsite concatenates up to pageLimit stored pages of the website.
func (r *Retriever) retrieveWebsite(ctx context.Context, id core.ID) (*Result, error) {
	pages, err := r.sources.GetPagesByWebsite(ctx, id, r.pageLimit)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Result{}, nil
		}
		return nil, err
	}
	if len(pages) == 0 {
		return &Result{}, nil
	}

	sections := make([]string, len(pages))
	for i, page := range pages {
		sections[i] = fmt.Sprintf("Page: %s\nURL: %s\n\nContent:\n%s", page.Title, page.URL, page.Text)
	}

	return &Result{Context: strings.Join(sections, "\n\n---\n\n")}, nil
}

// retrieveMedia returns the stored transcription and translation, labeled
// by target language.
func (r *Retriever) retrieveMedia(ctx context.Context, id core.ID) (*Result, error) {
	source, err := r.sources.GetSource(ctx, core.SourceKindMedia, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &Result{}, nil
		}
		return nil, err
	}
	if source.Text == "" {
		return &Result{}, nil
	}

	context := "Transcription:\n" + source.Text
	if source.Language != "" {
		translation := source.Translation
		if translation == "" {
			translation = "Not available"
		}
		context += fmt.Sprintf("\n\nTranslation (%s):\n%s", source.Language, translation)
	}

	return &Result{Context: context}, nil
}

// retrieveSimilar embeds the query and searches the vector index, filtered
// by whatever scope fields are present. An embedding failure degrades to a
// recency-ranked query instead of failing the retrieval.
func (r *Retriever) retrieveSimilar(ctx context.Context, query string, scope *Scope) (*Result, error) {
	chunkQuery := storage.ChunkQuery{TopK: r.topK}
	if scope != nil {
		chunkQuery.Kind = scope.Kind
		chunkQuery.SourceId = scope.SourceId
	}

	if query != "" {
		vector, err := r.embedder.EmbedText(ctx, query)
		if err != nil {
			r.logger.Warn("query embedding failed, degrading to recency ranking", "err", err)
		} else {
			chunkQuery.Vector = core.NormalizeVector(vector)
		}
	}

	result, err := r.chunks.Query(ctx, chunkQuery)
	if err != nil {
		return nil, err
	}
	if len(result.Chunks) == 0 {
		return &Result{Ranking: result.Ranking}, nil
	}

	texts := make([]string, len(result.Chunks))
	for i, scored := range result.Chunks {
		texts[i] = scored.Chunk.Text
	}

	return &Result{
		Context: strings.Join(texts, "\n\n"),
		Ranking: result.Ranking,
	}, nil
}
