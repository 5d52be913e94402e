package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/bri1545/SkillChain/pkg/config"
)

var errDeveloperInduced = errors.New("in memory config: developer induced error")

// Config is an in memory config used by tests and manual overrides
type Config struct {
	stateMu  sync.RWMutex
	value    interface{}
	err      error
	shutdown bool
}

// NewConfig returns a new in memory config. A nil value, or a zero value of
// a numeric or bool type, means no value is set so wrappers fall back to
// their defaults.
func NewConfig(value interface{}) *Config {
	c := &Config{}
	c.SetValue(value)
	return c
}

// Get implements Config.Get
func (c *Config) Get(_ context.Context) (interface{}, error) {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()

	switch {
	case c.shutdown:
		return nil, config.ErrShutdown
	case c.err != nil:
		return nil, c.err
	case c.value == nil:
		return nil, config.ErrNoValue
	}
	return c.value, nil
}

// Shutdown implements Config.Shutdown
func (c *Config) Shutdown() {
	c.stateMu.Lock()
	c.shutdown = true
	c.stateMu.Unlock()
}

// SetValue sets the value that should be returned on subsequent Get calls
func (c *Config) SetValue(value interface{}) {
	if isUnset(value) {
		value = nil
	}

	c.stateMu.Lock()
	c.value = value
	c.stateMu.Unlock()
}

// ClearValue resets the config so ErrNoValue is returned on subsequent Get calls
func (c *Config) ClearValue() {
	c.SetValue(nil)
}

// InduceErrors instructs the config to simulate a failing source
func (c *Config) InduceErrors() {
	c.stateMu.Lock()
	c.err = errDeveloperInduced
	c.stateMu.Unlock()
}

// StopInducingErrors stops simulating a failing source
func (c *Config) StopInducingErrors() {
	c.stateMu.Lock()
	c.err = nil
	c.stateMu.Unlock()
}

func isUnset(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case uint64:
		return v == 0
	case bool:
		return !v
	}
	return false
}
