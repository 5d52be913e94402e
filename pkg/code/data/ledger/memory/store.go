package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
)

type ById []*ledger.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

type txContextKey struct{}

type stagedWrite struct {
	record      *ledger.Record
	isCreate    bool
	baseVersion uint64
}

// tx is a write log that is validated and applied on commit
type tx struct {
	writes map[string]*stagedWrite
}

type store struct {
	txMu sync.Mutex // serializes transactions

	mu      sync.Mutex
	records map[string]*ledger.Record
	last    uint64
}

// New returns a new in memory ledger.Store
func New() ledger.Store {
	return &store{
		records: make(map[string]*ledger.Record),
	}
}

// Create implements ledger.Store.Create
func (s *store) Create(ctx context.Context, record *ledger.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := getTx(ctx)

	if _, ok := s.find(t, record.Address); ok {
		return ledger.ErrAccountExists
	}

	now := time.Now()

	s.last++
	record.Id = s.last
	record.Version = 1
	record.CreatedAt = now
	record.LastUpdatedAt = now

	if t != nil {
		t.writes[record.Address] = &stagedWrite{
			record:   record.Clone(),
			isCreate: true,
		}
		return nil
	}

	s.records[record.Address] = record.Clone()
	return nil
}

// Update implements ledger.Store.Update
func (s *store) Update(ctx context.Context, record *ledger.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := getTx(ctx)

	existing, ok := s.find(t, record.Address)
	if !ok {
		return ledger.ErrAccountNotFound
	}
	if existing.Version != record.Version {
		return ledger.ErrStaleVersion
	}

	updated := existing.Clone()
	updated.Owner = record.Owner
	updated.Lamports = record.Lamports
	updated.Data = nil
	if record.Data != nil {
		updated.Data = make([]byte, len(record.Data))
		copy(updated.Data, record.Data)
	}
	updated.Version++
	updated.LastUpdatedAt = time.Now()

	if t != nil {
		if staged, ok := t.writes[record.Address]; ok {
			staged.record = updated
		} else {
			t.writes[record.Address] = &stagedWrite{
				record:      updated,
				baseVersion: existing.Version,
			}
		}
	} else {
		s.records[record.Address] = updated
	}

	updated.CopyTo(record)
	return nil
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.find(getTx(ctx), address); ok {
		return item.Clone(), nil
	}
	return nil, ledger.ErrAccountNotFound
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := getTx(ctx)

	var res []*ledger.Record
	for address, item := range s.records {
		if t != nil {
			if _, ok := t.writes[address]; ok {
				continue
			}
		}

		if item.Owner == owner {
			res = append(res, item.Clone())
		}
	}

	if t != nil {
		for _, staged := range t.writes {
			if staged.record.Owner == owner {
				res = append(res, staged.record.Clone())
			}
		}
	}

	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}

	sort.Sort(ById(res))
	return res, nil
}

// ExecuteInTx implements ledger.Store.ExecuteInTx
func (s *store) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if getTx(ctx) != nil {
		return ledger.ErrAlreadyInTx
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{
		writes: make(map[string]*stagedWrite),
	}

	if err := fn(context.WithValue(ctx, txContextKey{}, t)); err != nil {
		return err
	}

	return s.commit(t)
}

func (s *store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Non-transactional writes may have landed since the writes were staged
	for address, staged := range t.writes {
		committed, ok := s.records[address]
		if staged.isCreate && ok {
			return ledger.ErrAccountExists
		}
		if !staged.isCreate && (!ok || committed.Version != staged.baseVersion) {
			return ledger.ErrStaleVersion
		}
	}

	for address, staged := range t.writes {
		s.records[address] = staged.record
	}
	return nil
}

func (s *store) find(t *tx, address string) (*ledger.Record, bool) {
	if t != nil {
		if staged, ok := t.writes[address]; ok {
			return staged.record, true
		}
	}

	item, ok := s.records[address]
	return item, ok
}

func getTx(ctx context.Context) *tx {
	t, _ := ctx.Value(txContextKey{}).(*tx)
	return t
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = make(map[string]*ledger.Record)
	s.last = 0
	s.mu.Unlock()
}
