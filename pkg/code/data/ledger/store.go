package ledger

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrStaleVersion    = errors.New("account version is stale")
	ErrAlreadyInTx     = errors.New("already executing in existing tx")
)

type Store interface {
	// Create creates a new account at version 1
	//
	// ErrAccountExists is returned if an account already exists at the address
	Create(ctx context.Context, record *Record) error

	// Update saves a new account owner, balance and data. The record's version
	// must match the stored version, and is incremented on success.
	//
	// ErrAccountNotFound is returned if the account doesn't exist
	// ErrStaleVersion is returned if the version doesn't match
	Update(ctx context.Context, record *Record) error

	// Get gets an account by its address
	//
	// ErrAccountNotFound is returned if the account doesn't exist
	Get(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets all accounts owned by the provided program, ordered
	// by creation
	//
	// ErrAccountNotFound is returned if no accounts are found
	GetAllByOwner(ctx context.Context, owner string) ([]*Record, error)

	// ExecuteInTx executes fn within a transaction. Calls against the store
	// made with the provided context observe and join the transaction. All
	// writes are applied if fn returns nil, otherwise none are.
	ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
