package data

import (
	"context"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	ledger_memory_client "github.com/bri1545/SkillChain/pkg/code/data/ledger/memory"
	"github.com/bri1545/SkillChain/pkg/metrics"
)

const (
	ledgerProviderMetricsName = "data.ledger_provider"
)

type LedgerData interface {
	// Accounts
	// --------------------------------------------------------------------------------
	CreateAccount(ctx context.Context, record *ledger.Record) error
	UpdateAccount(ctx context.Context, record *ledger.Record) error
	GetAccount(ctx context.Context, address string) (*ledger.Record, error)
	GetAllAccountsByOwner(ctx context.Context, owner string) ([]*ledger.Record, error)

	// ExecuteInTx executes fn with a single ledger transaction that is scoped to
	// the call. Provider calls made with the context passed to fn join the
	// transaction.
	ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type LedgerProvider struct {
	accounts ledger.Store

	closeFn func() error
}

func NewTestLedgerProvider() LedgerData {
	return &LedgerProvider{
		accounts: ledger_memory_client.New(),
		closeFn:  func() error { return nil },
	}
}

// Accounts
// --------------------------------------------------------------------------------
func (dp *LedgerProvider) CreateAccount(ctx context.Context, record *ledger.Record) error {
	tracer := metrics.TraceMethodCall(ctx, ledgerProviderMetricsName, "CreateAccount")
	defer tracer.End()

	err := dp.accounts.Create(ctx, record)
	if err != nil {
		tracer.OnError(err)
	}
	return err
}
func (dp *LedgerProvider) UpdateAccount(ctx context.Context, record *ledger.Record) error {
	tracer := metrics.TraceMethodCall(ctx, ledgerProviderMetricsName, "UpdateAccount")
	defer tracer.End()

	err := dp.accounts.Update(ctx, record)
	if err != nil {
		tracer.OnError(err)
	}
	return err
}
func (dp *LedgerProvider) GetAccount(ctx context.Context, address string) (*ledger.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, ledgerProviderMetricsName, "GetAccount")
	defer tracer.End()

	res, err := dp.accounts.Get(ctx, address)
	if err != nil && err != ledger.ErrAccountNotFound {
		tracer.OnError(err)
	}
	return res, err
}
func (dp *LedgerProvider) GetAllAccountsByOwner(ctx context.Context, owner string) ([]*ledger.Record, error) {
	tracer := metrics.TraceMethodCall(ctx, ledgerProviderMetricsName, "GetAllAccountsByOwner")
	defer tracer.End()

	res, err := dp.accounts.GetAllByOwner(ctx, owner)
	if err != nil && err != ledger.ErrAccountNotFound {
		tracer.OnError(err)
	}
	return res, err
}

func (dp *LedgerProvider) ExecuteInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tracer := metrics.TraceMethodCall(ctx, ledgerProviderMetricsName, "ExecuteInTx")
	defer tracer.End()

	err := dp.accounts.ExecuteInTx(ctx, fn)
	if err != nil {
		tracer.OnError(err)
	}
	return err
}
