package actionlog

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/oklog/ulid/v2"
)

// BadgerLog is an embedded, single-process log. Keys are
// room:{id}:actions:{ulid}, so prefix iteration yields insertion order.
type BadgerLog struct {
	db *badger.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func OpenBadgerLog(dir string) (*BadgerLog, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return NewBadgerLog(db), nil
}

func NewBadgerLog(db *badger.DB) *BadgerLog {
	return &BadgerLog{db: db, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (l *BadgerLog) Close() error {
	return l.db.Close()
}

func (l *BadgerLog) nextKey(roomID string) []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := ulid.MustNew(ulid.Timestamp(time.Now()), l.entropy)
	return []byte(roomKey(roomID) + ":" + id.String())
}

func (l *BadgerLog) Append(_ context.Context, roomID string, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	vals := make([][]byte, 0, len(recs))
	for _, rec := range recs {
		b, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		vals = append(vals, b)
	}
	if err := l.db.Update(func(txn *badger.Txn) error {
		for _, v := range vals {
			if err := txn.Set(l.nextKey(roomID), v); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("append action: %w", err)
	}
	return nil
}

func (l *BadgerLog) Fetch(_ context.Context, roomID string, includeInternal bool) ([]Record, error) {
	prefix := []byte(roomKey(roomID) + ":")
	out := []Record{}
	err := l.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := it.Item().Value(func(v []byte) error {
				var rec Record
				if err := json.Unmarshal(v, &rec); err != nil {
					return fmt.Errorf("decode action: %w", err)
				}
				out = append(out, rec)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch actions: %w", err)
	}
	return filterInternal(out, includeInternal), nil
}

// Clear deletes the room's keys in a single transaction.
func (l *BadgerLog) Clear(_ context.Context, roomID string) error {
	prefix := []byte(roomKey(roomID) + ":")
	err := l.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		it.Close()
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("clear actions: %w", err)
	}
	return nil
}
