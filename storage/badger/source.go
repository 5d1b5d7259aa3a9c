package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
)

// SourceRepository implements storage.SourceRepository for BadgerDB.
type SourceRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.SourceRepository = (*SourceRepository)(nil)

// NewSourceRepository creates a new SourceRepository.
func NewSourceRepository(backend *Backend) (storage.SourceRepository, error) {
	idSeq, err := backend.GetSequence(sourceIDSeq)
	if err != nil {
		return nil, err
	}

	return &SourceRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *SourceRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *SourceRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSources adds one or more sources to storage.
func (r *SourceRepository) AddSources(ctx context.Context, sources ...*core.Source) ([]*core.Source, error) {
	for _, source := range sources {
		if err := core.ValidateSource(source); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, source := range sources {
			if source.Id == 0 {
				nextID, err := r.idSeq.Next()
				if err != nil {
					return err
				}
				// BadgerDB sequences can return 0 on first call, so we skip it
				if nextID == 0 {
					nextID, err = r.idSeq.Next()
					if err != nil {
						return err
					}
				}
				source.Id = core.ID(nextID)
			}

			if source.InsertedAt.IsZero() {
				source.InsertedAt = time.Now().UTC()
			}
			source.UpdatedAt = source.InsertedAt

			key := makeSourceKey(source.Kind, source.Id)
			if err := tx.Set(key, storage.MarshalSource(source)); err != nil {
				return err
			}

			// Pages are indexed under their owning website so the website
			// can enumerate (and cascade-delete) them.
			if source.Kind == core.SourceKindPage {
				mappingKey := makePageMappingKey(source.ParentId, source.Id)
				if err := tx.Set(mappingKey, storage.MarshalID(source.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return sources, err
}

// UpdateSources updates existing sources.
func (r *SourceRepository) UpdateSources(ctx context.Context, sources ...*core.Source) ([]*core.Source, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, source := range sources {
			key := makeSourceKey(source.Kind, source.Id)

			old, err := r.readSource(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			source.InsertedAt = old.InsertedAt
			source.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalSource(source)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return sources, err
}

// UpdateSourceText replaces the stored text of an existing source.
func (r *SourceRepository) UpdateSourceText(ctx context.Context, kind core.SourceKind, id core.ID, text string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(kind, id)

		source, err := r.readSource(tx, key)
		if err != nil {
			return err
		}
		if source == nil {
			return storage.ErrNotFound
		}

		source.Text = text
		source.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalSource(source)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSource retrieves a single source by kind and ID.
func (r *SourceRepository) GetSource(ctx context.Context, kind core.SourceKind, id core.ID) (*core.Source, error) {
	var source *core.Source
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		source, err = r.readSource(tx, makeSourceKey(kind, id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, storage.ErrNotFound
	}
	return source, nil
}

// GetSourceText retrieves the stored text of a source.
func (r *SourceRepository) GetSourceText(ctx context.Context, kind core.SourceKind, id core.ID) (string, error) {
	source, err := r.GetSource(ctx, kind, id)
	if err != nil {
		return "", err
	}
	return source.Text, nil
}

// GetPagesByWebsite retrieves up to limit pages of a website in stored order.
func (r *SourceRepository) GetPagesByWebsite(ctx context.Context, websiteId core.ID, limit int) ([]*core.Source, error) {
	var pages []*core.Source

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialPageMappingKey(websiteId)

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if limit > 0 && len(pages) >= limit {
				break
			}

			var pageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				pageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			page, err := r.readSource(tx, makeSourceKey(core.SourceKindPage, pageID))
			if err != nil {
				return err
			}
			if page != nil {
				pages = append(pages, page)
			}
		}
		return nil
	}, false)

	return pages, err
}

// DeleteSource removes a source, cascading to its chunks and, for websites,
// to its pages and their chunks.
func (r *SourceRepository) DeleteSource(ctx context.Context, kind core.SourceKind, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSourceKey(kind, id)

		source, err := r.readSource(tx, key)
		if err != nil {
			return err
		}
		if source == nil {
			return storage.ErrNotFound
		}

		if kind == core.SourceKindWebsite {
			if err := r.deletePagesTx(tx, id); err != nil {
				return err
			}
		}

		if source.Kind == core.SourceKindPage {
			if err := tx.Delete(makePageMappingKey(source.ParentId, source.Id)); err != nil {
				return err
			}
		}

		if err := deleteSourceChunksTx(tx, kind, id, 0); err != nil {
			return err
		}

		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// deletePagesTx removes all pages of a website together with their chunks.
func (r *SourceRepository) deletePagesTx(tx *badger.Txn, websiteId core.ID) error {
	prefix := makePartialPageMappingKey(websiteId)

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var mappingKeys [][]byte
	var pageIDs []core.ID
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var pageID core.ID
		if err := iter.Item().Value(func(val []byte) error {
			var err error
			pageID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}
		pageIDs = append(pageIDs, pageID)
		mappingKeys = append(mappingKeys, iter.Item().KeyCopy(nil))
	}

	for i, pageID := range pageIDs {
		if err := deleteSourceChunksTx(tx, core.SourceKindPage, pageID, 0); err != nil {
			return err
		}
		if err := tx.Delete(makeSourceKey(core.SourceKindPage, pageID)); err != nil {
			return err
		}
		if err := tx.Delete(mappingKeys[i]); err != nil {
			return err
		}
	}
	return nil
}

// readSource reads a source by key, returning nil if it doesn't exist.
func (r *SourceRepository) readSource(tx *badger.Txn, key []byte) (*core.Source, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var source *core.Source
	err = item.Value(func(val []byte) error {
		var err error
		source, err = storage.UnmarshalSource(val)
		return err
	})
	return source, err
}
