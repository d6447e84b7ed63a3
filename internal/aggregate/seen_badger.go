package aggregate

import (
	"github.com/dgraph-io/badger/v4"
)

// BadgerSeen is a disk-backed seen-set for categories whose identifier
// universe does not fit in memory. Lives under the run's scratch dir; the
// store is throwaway, it is never reused across runs.
type BadgerSeen struct {
	db    *badger.DB
	count uint64
}

// NewBadgerSeen opens (or creates) a badger store at path.
func NewBadgerSeen(path string) (*BadgerSeen, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerSeen{db: db}, nil
}

func (b *BadgerSeen) Contains(id string) (bool, error) {
	var found bool
	err := b.db.View(func(txn *badger.Txn) error {
		_, e := txn.Get([]byte(id))
		if e == badger.ErrKeyNotFound {
			return nil
		}
		if e != nil {
			return e
		}
		found = true
		return nil
	})
	return found, err
}

func (b *BadgerSeen) Add(id string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		k := []byte(id)
		_, e := txn.Get(k)
		if e == badger.ErrKeyNotFound {
			b.count++
			return txn.Set(k, []byte{1})
		}
		return e
	})
}

// Len counts distinct identifiers inserted through this handle.
func (b *BadgerSeen) Len() uint64 { return b.count }

func (b *BadgerSeen) Close() error { return b.db.Close() }
