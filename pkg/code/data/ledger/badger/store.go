package badger

import (
	"context"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
)

type txnContextKey struct{}

type ById []*ledger.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

const idLeaseBandwidth = 1000

type store struct {
	db  *badger.DB
	ids *badger.Sequence
}

// Open opens a badger database at dataDir. An empty dataDir opens an in
// memory database.
func Open(dataDir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dataDir).
		WithLogger(logrus.StandardLogger().WithField("type", "data/ledger/badger")).
		WithLoggingLevel(badger.WARNING)
	if dataDir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "error opening badger db")
	}
	return db, nil
}

// New returns a new badger-backed ledger.Store. Record ids are leased from a
// badger sequence outside of any transaction, so creates of different
// accounts never conflict with each other. Close releases the lease but
// leaves the database open.
func New(db *badger.DB) (ledger.Store, error) {
	ids, err := db.GetSequence([]byte(lastIdKey), idLeaseBandwidth)
	if err != nil {
		return nil, errors.Wrap(err, "error leasing record ids")
	}

	return &store{
		db:  db,
		ids: ids,
	}, nil
}

// Close releases unused record ids back to the database
func (s *store) Close() error {
	return s.ids.Release()
}

// Create implements ledger.Store.Create
func (s *store) Create(ctx context.Context, record *ledger.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		key := getAccountKey(record.Address)

		_, err := txn.Get(key)
		if err == nil {
			return ledger.ErrAccountExists
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		id, err := s.nextId()
		if err != nil {
			return err
		}

		created := record.Clone()
		created.Id = id
		created.Version = 1
		created.CreatedAt = time.Now()
		created.LastUpdatedAt = created.CreatedAt

		if err := txn.Set(key, marshalRecord(created)); err != nil {
			return err
		}

		created.CopyTo(record)
		return nil
	})
}

// Update implements ledger.Store.Update
func (s *store) Update(ctx context.Context, record *ledger.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		existing, err := get(txn, record.Address)
		if err != nil {
			return err
		}

		if existing.Version != record.Version {
			return ledger.ErrStaleVersion
		}

		updated := existing.Clone()
		updated.Owner = record.Owner
		updated.Lamports = record.Lamports
		updated.Data = record.Data
		updated.Version++
		updated.LastUpdatedAt = time.Now()

		if err := txn.Set(getAccountKey(record.Address), marshalRecord(updated)); err != nil {
			return err
		}

		updated.CopyTo(record)
		return nil
	})
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	var res *ledger.Record
	err := s.view(ctx, func(txn *badger.Txn) error {
		var err error
		res, err = get(txn, address)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*ledger.Record, error) {
	var res []*ledger.Record
	err := s.view(ctx, func(txn *badger.Txn) error {
		prefix := []byte(accountKeyPrefix)

		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			address := string(item.Key()[len(prefix):])
			record, err := unmarshalRecord(address, value)
			if err != nil {
				return errors.Wrapf(err, "error decoding account %s", address)
			}

			if record.Owner == owner {
				res = append(res, record)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	sort.Sort(ById(res))
	return res, nil
}

// ExecuteInTx implements ledger.Store.ExecuteInTx
//
// Badger detects read-write conflicts between concurrent transactions at
// commit time, which surface as ledger.ErrStaleVersion.
func (s *store) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if getTxn(ctx) != nil {
		return ledger.ErrAlreadyInTx
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(context.WithValue(ctx, txnContextKey{}, txn)); err != nil {
		return err
	}

	return checkConflict(txn.Commit())
}

func (s *store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if txn := getTxn(ctx); txn != nil {
		return fn(txn)
	}
	return checkConflict(s.db.Update(fn))
}

func (s *store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if txn := getTxn(ctx); txn != nil {
		return fn(txn)
	}
	return s.db.View(fn)
}

func (s *store) reset() error {
	return s.db.DropAll()
}

func get(txn *badger.Txn, address string) (*ledger.Record, error) {
	item, err := txn.Get(getAccountKey(address))
	if err == badger.ErrKeyNotFound {
		return nil, ledger.ErrAccountNotFound
	} else if err != nil {
		return nil, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	return unmarshalRecord(address, value)
}

// Ids start at 1. Ids consumed by rolled back creates are not reused.
func (s *store) nextId() (uint64, error) {
	id, err := s.ids.Next()
	if err != nil {
		return 0, errors.Wrap(err, "error allocating record id")
	}
	return id + 1, nil
}

func getTxn(ctx context.Context) *badger.Txn {
	txn, _ := ctx.Value(txnContextKey{}).(*badger.Txn)
	return txn
}

func checkConflict(err error) error {
	if err == badger.ErrConflict {
		return ledger.ErrStaleVersion
	}
	return err
}
