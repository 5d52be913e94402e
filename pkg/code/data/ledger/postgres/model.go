package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	pgutil "github.com/bri1545/SkillChain/pkg/database/postgres"
)

const (
	tableName = "skillchain__core_account"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Owner   string `db:"owner"`

	Lamports int64  `db:"lamports"`
	Data     []byte `db:"data"`

	Version int64 `db:"version"`

	CreatedAt     time.Time `db:"created_at"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *ledger.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	return &model{
		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: int64(obj.Lamports),
		Data:     obj.Data,

		Version: int64(obj.Version),

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *ledger.Record {
	return &ledger.Record{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: uint64(obj.Lamports),
		Data:     obj.Data,

		Version: uint64(obj.Version),

		CreatedAt:     obj.CreatedAt,
		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbCreate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		m.CreatedAt = time.Now()
		m.LastUpdatedAt = m.CreatedAt
		m.Version = 1

		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, version, created_at, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, address, owner, lamports, data, version, created_at, last_updated_at
		`
		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Owner,
			m.Lamports,
			m.Data,
			m.Version,
			m.CreatedAt.UTC(),
			m.LastUpdatedAt.UTC(),
		).StructScan(m)
		return pgutil.CheckUniqueViolation(err, ledger.ErrAccountExists)
	})
}

func (m *model) dbUpdate(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		m.LastUpdatedAt = time.Now()

		query := `UPDATE ` + tableName + `
			SET owner = $6, lamports = $2, data = $3, version = version + 1, last_updated_at = $5
			WHERE address = $1 AND version = $4
			RETURNING id, address, owner, lamports, data, version, created_at, last_updated_at
		`
		err := tx.QueryRowxContext(
			ctx,
			query,
			m.Address,
			m.Lamports,
			m.Data,
			m.Version,
			m.LastUpdatedAt.UTC(),
			m.Owner,
		).StructScan(m)
		if !pgutil.IsNoRows(err) {
			return err
		}

		var count int
		query = `SELECT COUNT(*) FROM ` + tableName + ` WHERE address = $1`
		if err := tx.GetContext(ctx, &count, query, m.Address); err != nil {
			return err
		}
		if count == 0 {
			return ledger.ErrAccountNotFound
		}
		return ledger.ErrStaleVersion
	})
}

func dbGet(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT id, address, owner, lamports, data, version, created_at, last_updated_at FROM ` + tableName + `
			WHERE address = $1
			LIMIT 1
		`
		return tx.GetContext(ctx, res, query, address)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string) ([]*model, error) {
	var res []*model
	err := pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `SELECT id, address, owner, lamports, data, version, created_at, last_updated_at FROM ` + tableName + `
			WHERE owner = $1
			ORDER BY id ASC
		`
		return tx.SelectContext(ctx, &res, query, owner)
	})
	if err != nil {
		return nil, pgutil.CheckNoRows(err, ledger.ErrAccountNotFound)
	}
	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}
