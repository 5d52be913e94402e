package data

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	ledger_badger_client "github.com/bri1545/SkillChain/pkg/code/data/ledger/badger"
	ledger_memory_client "github.com/bri1545/SkillChain/pkg/code/data/ledger/memory"
	ledger_postgres_client "github.com/bri1545/SkillChain/pkg/code/data/ledger/postgres"
	pg "github.com/bri1545/SkillChain/pkg/database/postgres"
)

const (
	LedgerBackendMemory   = "memory"
	LedgerBackendPostgres = "postgres"
	LedgerBackendBadger   = "badger"
)

type Provider interface {
	LedgerData

	GetLedgerDataProvider() LedgerData

	io.Closer
}

type provider struct {
	*LedgerProvider
}

// Config selects and configures the ledger backend
type Config struct {
	Backend string `mapstructure:"backend"`

	Postgres pg.Config `mapstructure:"postgres"`

	BadgerDataDir string `mapstructure:"badger_data_dir"`
}

func NewDataProvider(config *Config) (Provider, error) {
	var store ledger.Store
	closeFn := func() error { return nil }

	switch strings.ToLower(config.Backend) {
	case "", LedgerBackendMemory:
		store = ledger_memory_client.New()
	case LedgerBackendPostgres:
		db, err := pg.NewWithUsernameAndPassword(
			config.Postgres.User,
			config.Postgres.Password,
			config.Postgres.Host,
			fmt.Sprint(config.Postgres.Port),
			config.Postgres.DbName,
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to postgres")
		}

		if config.Postgres.MaxOpenConnections > 0 {
			db.SetMaxOpenConns(config.Postgres.MaxOpenConnections)
		}
		if config.Postgres.MaxIdleConnections > 0 {
			db.SetMaxIdleConns(config.Postgres.MaxIdleConnections)
		}
		db.SetConnMaxIdleTime(time.Hour)
		db.SetConnMaxLifetime(time.Hour)

		store = ledger_postgres_client.New(db)
		closeFn = db.Close
	case LedgerBackendBadger:
		db, err := ledger_badger_client.Open(config.BadgerDataDir)
		if err != nil {
			return nil, err
		}

		badgerStore, err := ledger_badger_client.New(db)
		if err != nil {
			db.Close()
			return nil, err
		}

		store = badgerStore
		closeFn = func() error {
			if err := badgerStore.(io.Closer).Close(); err != nil {
				db.Close()
				return errors.Wrap(err, "error releasing badger record ids")
			}
			return db.Close()
		}
	default:
		return nil, errors.Errorf("unsupported ledger backend: %s", config.Backend)
	}

	return &provider{
		LedgerProvider: &LedgerProvider{
			accounts: store,
			closeFn:  closeFn,
		},
	}, nil
}

func NewTestDataProvider() Provider {
	return &provider{
		LedgerProvider: NewTestLedgerProvider().(*LedgerProvider),
	}
}

func (p *provider) GetLedgerDataProvider() LedgerData {
	return p.LedgerProvider
}

func (p *provider) Close() error {
	return p.LedgerProvider.closeFn()
}
