package repositories

import (
	"chat-relay/domain"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const (
	messageKeyPrefix  = "msg:"
	sequenceKey       = "seq:messages"
	schemaMarkerKey   = "schema:v1"
	sequenceBandwidth = 64
)

// MessageStore is the BadgerDB-backed append-only message log.
//
// Keys are formatted as "msg:{seq_padded}" with 20-digit zero padding so
// that lexicographical key order is insertion order; a forward prefix
// scan therefore replays the log exactly as it was written. Sequence
// numbers come from a persisted Badger sequence, so they stay strictly
// increasing across restarts (with gaps, which only order relies on).
type MessageStore struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
}

func NewMessageStore(db *badger.DB, log *slog.Logger) *MessageStore {
	return &MessageStore{db: db, log: log}
}

// EnsureSchema idempotently prepares the log: it claims the message
// sequence and writes the schema marker if absent. Must be called once
// before AppendBatch.
func (s *MessageStore) EnsureSchema() error {
	seq, err := s.db.GetSequence([]byte(sequenceKey), sequenceBandwidth)
	if err != nil {
		return fmt.Errorf("sequence init: %w", err)
	}
	s.seq = seq
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(schemaMarkerKey))
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set([]byte(schemaMarkerKey), []byte("1"))
	})
}

// Close releases the unused tail of the claimed sequence range.
func (s *MessageStore) Close() error {
	if s.seq != nil {
		return s.seq.Release()
	}
	return nil
}

// AppendBatch writes all rows in one transaction: the whole batch commits
// or none of it does. Callers rely on there being no partial batches.
func (s *MessageStore) AppendBatch(rows []domain.Message) error {
	if len(rows) == 0 {
		return nil
	}
	type entry struct {
		key []byte
		val []byte
	}
	entries := make([]entry, 0, len(rows))
	for _, row := range rows {
		n, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("sequence next: %w", err)
		}
		val, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		key := fmt.Appendf(nil, "%s%020d", messageKeyPrefix, n)
		entries = append(entries, entry{key: key, val: val})
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := txn.Set(e.key, e.val); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append batch: %w", err)
	}
	s.log.Debug("batch appended", "rows", len(rows))
	return nil
}

// ReadAllOrdered returns every row ever appended, in sequence order.
func (s *MessageStore) ReadAllOrdered() ([]domain.Message, error) {
	var rows []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(messageKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var row domain.Message
				if err := json.Unmarshal(val, &row); err != nil {
					return err
				}
				rows = append(rows, row)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return rows, nil
}
