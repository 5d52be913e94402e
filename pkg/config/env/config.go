package env

import (
	"context"
	"os"
	"strings"

	"github.com/bri1545/SkillChain/pkg/config"
	"github.com/bri1545/SkillChain/pkg/config/wrapper"
)

type conf struct {
	key string
}

// NewConfig returns a config sourced from the upper-cased environment
// variable key. The variable is looked up on every Get, so values loaded
// from a .env file after construction are still observed.
func NewConfig(key string) config.Config {
	return &conf{
		key: strings.ToUpper(key),
	}
}

// Get implements Config.Get
func (c *conf) Get(_ context.Context) (interface{}, error) {
	val, ok := os.LookupEnv(c.key)
	if !ok || len(strings.TrimSpace(val)) == 0 {
		return nil, config.ErrNoValue
	}
	return []byte(strings.TrimSpace(val)), nil
}

// Shutdown implements Config.Shutdown
func (c *conf) Shutdown() {
}

// NewUint64Config creates a env-based uint64 config
func NewUint64Config(key string, defaultValue uint64) config.Uint64 {
	return wrapper.NewUint64Config(NewConfig(key), defaultValue)
}

// NewBoundedUint64Config creates a env-based uint64 config capped at max
func NewBoundedUint64Config(key string, defaultValue, max uint64) config.Uint64 {
	return wrapper.NewBoundedUint64Config(NewConfig(key), defaultValue, max)
}

// NewBoolConfig creates a env-based bool config
func NewBoolConfig(key string, defaultValue bool) config.Bool {
	return wrapper.NewBoolConfig(NewConfig(key), defaultValue)
}
