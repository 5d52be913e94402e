package pg

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrAlreadyInTx = errors.New("already executing in existing db tx")
	ErrNotInTx     = errors.New("not executing in existing db tx")

	ErrInsufficientIsolation = errors.New("current tx doesn't meet isolation level requirements")
)

type txContextKey struct{}

// txState is the transaction carried by a context, along with the isolation
// level it was opened with
type txState struct {
	tx        *sqlx.Tx
	isolation sql.IsolationLevel
}

// ExecuteTxWithinCtx opens a transaction scoped to fn and carries it through
// the context passed to fn, so every store call made with that context joins
// it. The transaction commits when fn returns nil and rolls back otherwise.
func ExecuteTxWithinCtx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*txState); ok {
		return ErrAlreadyInTx
	}

	isolation = withDefaultIsolation(isolation)
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}

	err = fn(context.WithValue(ctx, txContextKey{}, &txState{tx: tx, isolation: isolation}))
	return finishTx(tx, err)
}

// ExecuteInTx runs fn against the transaction carried by ctx when there is
// one, leaving commit and rollback to its owner. Otherwise fn runs in a new
// transaction that is finished here.
func ExecuteInTx(ctx context.Context, db *sqlx.DB, isolation sql.IsolationLevel, fn func(tx *sqlx.Tx) error) error {
	isolation = withDefaultIsolation(isolation)

	tx, err := getTxFromCtx(ctx, isolation)
	switch err {
	case nil:
		return fn(tx)
	case ErrNotInTx:
	default:
		return err
	}

	tx, err = db.BeginTxx(ctx, &sql.TxOptions{Isolation: isolation})
	if err != nil {
		return err
	}
	return finishTx(tx, fn(tx))
}

func finishTx(tx *sqlx.Tx, err error) error {
	if err != nil {
		// Rollback always runs so sql.DB releases the connection
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return errors.Wrap(rollbackErr, "failed to rollback transaction")
		}
		return err
	}
	return tx.Commit()
}

func getTxFromCtx(ctx context.Context, desiredIsolation sql.IsolationLevel) (*sqlx.Tx, error) {
	state, ok := ctx.Value(txContextKey{}).(*txState)
	if !ok {
		return nil, ErrNotInTx
	}

	if state.isolation < desiredIsolation {
		return nil, errors.Wrapf(ErrInsufficientIsolation, "have %s, want %s", state.isolation, desiredIsolation)
	}

	return state.tx, nil
}

func withDefaultIsolation(isolation sql.IsolationLevel) sql.IsolationLevel {
	if isolation == sql.LevelDefault {
		return sql.LevelReadCommitted
	}
	return isolation
}
