package storage

import (
	"context"

	"github.com/quarrylabs/corpus/core"
)

// RankingMode identifies how a chunk query result was ordered.
// Callers must never conflate the two orderings: a recency-ranked result is
// an explicit degraded mode, not an approximation of similarity.
type RankingMode int

const (
	// RankingSimilarity means chunks are ordered by cosine similarity to the
	// query vector, highest first.
	RankingSimilarity RankingMode = iota + 1
	// RankingRecency means chunks are ordered by most-recent insertion. Used
	// when no query vector is available or no stored chunk carries one.
	RankingRecency
)

// String returns a human-readable name for the ranking mode.
func (m RankingMode) String() string {
	switch m {
	case RankingSimilarity:
		return "similarity"
	case RankingRecency:
		return "recency"
	default:
		return "unknown"
	}
}

// ChunkQuery narrows a chunk query. Zero-valued fields are unconstrained.
type ChunkQuery struct {
	// Kind restricts results to one source kind. Zero matches all kinds.
	Kind core.SourceKind
	// SourceId restricts results to one source. Zero matches all sources.
	SourceId core.ID
	// Vector is the query embedding. When empty the result falls back to
	// recency ranking.
	Vector []float32
	// TopK caps the number of returned chunks. Must be positive.
	TopK int
}

// ChunkQueryResult is an ordered set of chunks tagged with the ranking
// strategy that produced the order.
type ChunkQueryResult struct {
	Chunks  []*core.ScoredChunk
	Ranking RankingMode
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the repository and releases resources.
	Close() error
}

// SourceRepository provides operations for managing content sources.
type SourceRepository interface {
	Repository

	// AddSources adds one or more sources to storage.
	// For sources with ID=0, generates new IDs from sequence.
	// Sets InsertedAt timestamp if not already set.
	// Returns the sources with generated IDs and timestamps populated.
	AddSources(ctx context.Context, sources ...*core.Source) ([]*core.Source, error)

	// UpdateSources updates existing sources.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any source doesn't exist.
	UpdateSources(ctx context.Context, sources ...*core.Source) ([]*core.Source, error)

	// UpdateSourceText replaces the stored text of an existing source.
	// Returns ErrNotFound if the source doesn't exist.
	UpdateSourceText(ctx context.Context, kind core.SourceKind, id core.ID, text string) error

	// GetSource retrieves a single source by kind and ID.
	// Returns ErrNotFound if the source doesn't exist.
	GetSource(ctx context.Context, kind core.SourceKind, id core.ID) (*core.Source, error)

	// GetSourceText retrieves the stored text of a source.
	// Returns ErrNotFound if the source doesn't exist; an existing source
	// with no text yields an empty string.
	GetSourceText(ctx context.Context, kind core.SourceKind, id core.ID) (string, error)

	// GetPagesByWebsite retrieves up to limit pages of a website in stored
	// order (insertion order during the crawl).
	GetPagesByWebsite(ctx context.Context, websiteId core.ID, limit int) ([]*core.Source, error)

	// DeleteSource removes a source. The delete cascades: all chunks owned
	// by the source are removed, and deleting a website removes its pages
	// (and their chunks) as well. Returns ErrNotFound if the source doesn't
	// exist.
	DeleteSource(ctx context.Context, kind core.SourceKind, id core.ID) error
}

// ChunkRepository provides operations for managing embedded chunks.
type ChunkRepository interface {
	Repository

	// UpsertChunks inserts or replaces chunks keyed by (Kind, SourceId,
	// Index). Re-upserting an identical chunk is a no-op apart from the
	// UpdatedAt timestamp, keeping repeated ingestion idempotent.
	UpsertChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunks retrieves all chunks of a source ordered by index.
	GetChunks(ctx context.Context, kind core.SourceKind, sourceId core.ID) ([]*core.Chunk, error)

	// DeleteChunks removes all chunks of a source.
	DeleteChunks(ctx context.Context, kind core.SourceKind, sourceId core.ID) error

	// DeleteChunksFrom removes chunks of a source with Index >= fromIndex.
	// Used to trim stale chunks when a source shrinks on re-ingestion.
	DeleteChunksFrom(ctx context.Context, kind core.SourceKind, sourceId core.ID, fromIndex int) error

	// Query returns up to TopK chunks matching the query filters, ranked by
	// similarity to the query vector when one is provided and at least one
	// matching chunk carries an embedding, otherwise by most-recent
	// insertion. The result is tagged with the ranking mode used.
	Query(ctx context.Context, query ChunkQuery) (*ChunkQueryResult, error)
}

// ConversationRepository provides operations for persisted conversation turns.
type ConversationRepository interface {
	Repository

	// AddTurns adds one or more turns to storage.
	// For turns with ID=0, generates new IDs from sequence.
	// Returns the turns with generated IDs and timestamps populated.
	AddTurns(ctx context.Context, turns ...*core.Turn) ([]*core.Turn, error)

	// GetTurn retrieves a single turn by ID.
	// Returns ErrNotFound if the turn doesn't exist.
	GetTurn(ctx context.Context, id core.ID) (*core.Turn, error)

	// GetRecentTurns retrieves the N most recent turns, newest first.
	GetRecentTurns(ctx context.Context, limit int) ([]*core.Turn, error)
}
