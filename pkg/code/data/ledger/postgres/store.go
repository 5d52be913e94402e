package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	pgutil "github.com/bri1545/SkillChain/pkg/database/postgres"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed ledger.Store
func New(db *sql.DB) ledger.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Create implements ledger.Store.Create
func (s *store) Create(ctx context.Context, record *ledger.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := m.dbCreate(ctx, s.db); err != nil {
		return err
	}

	fromModel(m).CopyTo(record)
	return nil
}

// Update implements ledger.Store.Update
func (s *store) Update(ctx context.Context, record *ledger.Record) error {
	m, err := toModel(record)
	if err != nil {
		return err
	}

	if err := m.dbUpdate(ctx, s.db); err != nil {
		return err
	}

	fromModel(m).CopyTo(record)
	return nil
}

// Get implements ledger.Store.Get
func (s *store) Get(ctx context.Context, address string) (*ledger.Record, error) {
	m, err := dbGet(ctx, s.db, address)
	if err != nil {
		return nil, err
	}
	return fromModel(m), nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string) ([]*ledger.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner)
	if err != nil {
		return nil, err
	}

	res := make([]*ledger.Record, len(models))
	for i, m := range models {
		res[i] = fromModel(m)
	}
	return res, nil
}

// ExecuteInTx implements ledger.Store.ExecuteInTx
//
// Transactions run with serializable isolation, so concurrent writers to the
// same accounts fail with ledger.ErrStaleVersion rather than losing updates.
func (s *store) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := pgutil.ExecuteTxWithinCtx(ctx, s.db, sql.LevelSerializable, fn)
	if err == pgutil.ErrAlreadyInTx {
		return ledger.ErrAlreadyInTx
	}
	return pgutil.CheckSerializationFailure(err, ledger.ErrStaleVersion)
}
