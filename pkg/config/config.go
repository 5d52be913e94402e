package config

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNoValue indicates no value was set for the config
	ErrNoValue = errors.New("config: no value set")

	// ErrShutdown indicates the use of a Config after calling Shutdown
	ErrShutdown = errors.New("config: shutdown")

	// ErrOutOfRange indicates a config value was parsed but falls outside the
	// bounds the consumer accepts
	ErrOutOfRange = errors.New("config: value out of range")
)

// Config is a raw source of a configuration value. Sources either yield a
// native Go value or the textual []byte form found in the environment.
type Config interface {
	Get(ctx context.Context) (interface{}, error)

	// Shutdown signals the config to stop all underlying resources
	Shutdown()
}

// Typed is a config source converted to a concrete type with a fallback
// default.
type Typed[T any] interface {
	Get(ctx context.Context) T
	GetSafe(ctx context.Context) (T, error)
	Shutdown()
}

// Bool provides a boolean typed Config, used for feature toggles such as
// the devnet airdrop.
type Bool = Typed[bool]

// Uint64 provides a uint64 typed Config, used for lamport amounts, basis
// points and lock striping.
type Uint64 = Typed[uint64]
