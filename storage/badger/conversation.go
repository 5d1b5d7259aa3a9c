package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quarrylabs/corpus/core"
	"github.com/quarrylabs/corpus/storage"
)

// ConversationRepository implements storage.ConversationRepository for BadgerDB.
type ConversationRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.ConversationRepository = (*ConversationRepository)(nil)

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository(backend *Backend) (storage.ConversationRepository, error) {
	idSeq, err := backend.GetSequence(turnIDSeq)
	if err != nil {
		return nil, err
	}

	return &ConversationRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *ConversationRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConversationRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddTurns adds one or more turns to storage.
func (r *ConversationRepository) AddTurns(ctx context.Context, turns ...*core.Turn) ([]*core.Turn, error) {
	for _, turn := range turns {
		if err := core.ValidateTurn(turn); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, turn := range turns {
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
			turn.Id = core.ID(nextID)

			turn.InsertedAt = time.Now().UTC()
			turn.UpdatedAt = turn.InsertedAt

			if err := tx.Set(makeTurnKey(turn.Id), storage.MarshalTurn(turn)); err != nil {
				return err
			}

			dateKey := makeTurnDateKey(turn.Timestamp, turn.Id)
			if err := tx.Set(dateKey, storage.MarshalID(turn.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return turns, err
}

// GetTurn retrieves a single turn by ID.
func (r *ConversationRepository) GetTurn(ctx context.Context, id core.ID) (*core.Turn, error) {
	var turn *core.Turn
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeTurnKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			turn, err = storage.UnmarshalTurn(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return turn, nil
}

// GetRecentTurns retrieves the N most recent turns, newest first.
func (r *ConversationRepository) GetRecentTurns(ctx context.Context, limit int) ([]*core.Turn, error) {
	var results []*core.Turn

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		startKey := makePartialTurnDateKey(time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC))
		prefix := []byte(turnDatePrefix + ":")

		for iter.Seek(startKey); iter.Valid() && len(results) < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || string(key[:len(prefix)]) != string(prefix) {
				break
			}

			var turnID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				turnID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			item, err := tx.Get(makeTurnKey(turnID))
			if err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					continue
				}
				return err
			}
			var turn *core.Turn
			if err := item.Value(func(val []byte) error {
				var err error
				turn, err = storage.UnmarshalTurn(val)
				return err
			}); err != nil {
				return err
			}
			results = append(results, turn)
		}
		return nil
	}, false)

	return results, err
}
