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


package badger

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
)

const lockStripes = 64

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
//
// Upserts take a per-key striped lock so concurrent re-ingestion of the same
// source stays idempotent: two writers never interleave the read-check-write
// of one (kind, sourceId, index) key.
type ChunkRepository struct {
	backend *Backend
	locks   [lockStripes]sync.Mutex
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the repository holds no resources of its own.
func (r *ChunkRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertChunks inserts or replaces chunks keyed by (Kind, SourceId, Index).
func (r *ChunkRepository) UpsertChunks(ctx context.Context, chunks ...*core.Chunk) error {
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
	}

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.upsertChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChunkRepository) upsertChunk(chunk *core.Chunk) error {
	key := makeChunkKey(chunk.Kind, chunk.SourceId, chunk.Index)

	lock := &r.locks[stripeFor(key)]
	lock.Lock()
	defer lock.Unlock()

	return r.backend.WithTx(func(tx *badger.Txn) error {
		old, err := readChunk(tx, key)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old != nil {
			// Keep the original insertion instant so the recency index
			// is not churned by idempotent re-ingestion.
			chunk.InsertedAt = old.InsertedAt
		} else {
			chunk.InsertedAt = now
			recencyKey := makeChunkRecencyKey(now, chunk.Kind, chunk.SourceId, chunk.Index)
			if err := tx.Set(recencyKey, key); err != nil {
				return err
			}
		}
		chunk.UpdatedAt = now

		if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetChunks retrieves all chunks of a source ordered by index.
func (r *ChunkRepository) GetChunks(ctx context.Context, kind core.SourceKind, sourceId core.ID) ([]*core.Chunk, error) {
	var chunks []*core.Chunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makeChunkSourcePrefix(kind, sourceId)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// BigEndian index encoding makes iteration order index order.
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)

	return chunks, err
}

// DeleteChunks removes all chunks of a source.
func (r *ChunkRepository) DeleteChunks(ctx context.Context, kind core.SourceKind, sourceId core.ID) error {
	return r.DeleteChunksFrom(ctx, kind, sourceId, 0)
}

// DeleteChunksFrom removes chunks of a source with Index >= fromIndex.
func (r *ChunkRepository) DeleteChunksFrom(ctx context.Context, kind core.SourceKind, sourceId core.ID, fromIndex int) error {
	if fromIndex < 0 {
		return fmt.Errorf("%w: negative fromIndex", storage.ErrInvalidQuery)
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := deleteSourceChunksTx(tx, kind, sourceId, fromIndex); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Query returns up to TopK matching chunks, similarity-ranked when possible.
func (r *ChunkRepository) Query(ctx context.Context, query storage.ChunkQuery) (*storage.ChunkQueryResult, error) {
	if query.TopK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive", storage.ErrInvalidQuery)
	}
	if query.SourceId != 0 && query.Kind == 0 {
		return nil, fmt.Errorf("%w: source id filter requires a kind", storage.ErrInvalidQuery)
	}

	if len(query.Vector) > 0 {
		result, scorable, err := r.querySimilarity(query)
		if err != nil {
			return nil, err
		}
		if scorable {
			return result, nil
		}
		// No stored chunk in scope carries an embedding; fall through to
		// the explicit degraded mode.
	}

	return r.queryRecency(query)
}

// querySimilarity scans the chunks in scope and ranks them by cosine
// similarity. The second return reports whether any chunk in scope carried
// an embedding at all; when false the caller degrades to recency ranking.
func (r *ChunkRepository) querySimilarity(query storage.ChunkQuery) (*storage.ChunkQueryResult, bool, error) {
	var scored []*core.ScoredChunk
	scorable := false

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = chunkScanPrefix(query)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			}); err != nil {
				return err
			}

			if len(chunk.Vector) == 0 {
				continue
			}
			scorable = true

			scored = append(scored, &core.ScoredChunk{
				Chunk: chunk,
				Score: core.CosineSimilarity(query.Vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, false, err
	}

	// Sort by score descending; break ties deterministically by source
	// identity and index so repeated queries return identical orderings.
	slices.SortFunc(scored, func(a, b *core.ScoredChunk) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		if c := int(a.Chunk.Kind) - int(b.Chunk.Kind); c != 0 {
			return c
		}
		switch {
		case a.Chunk.SourceId < b.Chunk.SourceId:
			return -1
		case a.Chunk.SourceId > b.Chunk.SourceId:
			return 1
		}
		return a.Chunk.Index - b.Chunk.Index
	})

	if len(scored) > query.TopK {
		scored = scored[:query.TopK]
	}

	return &storage.ChunkQueryResult{
		Chunks:  scored,
		Ranking: storage.RankingSimilarity,
	}, scorable, nil
}

// queryRecency walks the insertion-order index newest first.
func (r *ChunkRepository) queryRecency(query storage.ChunkQuery) (*storage.ChunkQueryResult, error) {
	var results []*core.ScoredChunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialChunkRecencyKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(chunkRecencyPrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < query.TopK; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
				break
			}

			var chunkKey []byte
			if err := iter.Item().Value(func(val []byte) error {
				chunkKey = append([]byte(nil), val...)
				return nil
			}); err != nil {
				return err
			}

			chunk, err := readChunk(tx, chunkKey)
			if err != nil {
				return err
			}
			if chunk == nil {
				continue // recency entry outlived its chunk
			}
			if query.Kind != 0 && chunk.Kind != query.Kind {
				continue
			}
			if query.SourceId != 0 && chunk.SourceId != query.SourceId {
				continue
			}

			results = append(results, &core.ScoredChunk{Chunk: chunk})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	return &storage.ChunkQueryResult{
		Chunks:  results,
		Ranking: storage.RankingRecency,
	}, nil
}

// chunkScanPrefix returns the narrowest key prefix covering the query scope.
func chunkScanPrefix(query storage.ChunkQuery) []byte {
	switch {
	case query.Kind != 0 && query.SourceId != 0:
		return makeChunkSourcePrefix(query.Kind, query.SourceId)
	case query.Kind != 0:
		return makeChunkKindPrefix(query.Kind)
	default:
		return []byte(chunkPrefix + ":")
	}
}

// deleteSourceChunksTx removes the chunks of one source with Index >=
// fromIndex, together with their recency index entries. Shared with the
// source repository for cascade deletes.
func deleteSourceChunksTx(tx *badger.Txn, kind core.SourceKind, sourceId core.ID, fromIndex int) error {
	prefix := makeChunkSourcePrefix(kind, sourceId)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var chunkKeys, recencyKeys [][]byte
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var chunk *core.Chunk
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			chunk, err = storage.UnmarshalChunk(val)
			return err
		}); err != nil {
			return err
		}
		if chunk.Index < fromIndex {
			continue
		}
		chunkKeys = append(chunkKeys, iter.Item().KeyCopy(nil))
		recencyKeys = append(recencyKeys, makeChunkRecencyKey(chunk.InsertedAt, chunk.Kind, chunk.SourceId, chunk.Index))
	}

	for i := range chunkKeys {
		if err := tx.Delete(chunkKeys[i]); err != nil {
			return err
		}
		if err := tx.Delete(recencyKeys[i]); err != nil {
			return err
		}
	}
	return nil
}

// readChunk reads a chunk by key, returning nil if it doesn't exist.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// stripeFor maps a key onto one of the write lock stripes.
func stripeFor(key []byte) int {
	h := fnv.New32a()
	h.Write(key)
	return int(h.Sum32() % lockStripes)
}
