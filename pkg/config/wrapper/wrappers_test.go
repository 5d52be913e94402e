package wrapper

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bri1545/SkillChain/pkg/config"
	"github.com/bri1545/SkillChain/pkg/config/memory"
)

func TestBoolConfig(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	airdrops := NewBoolConfig(mock, false)

	val, err := airdrops.GetSafe(ctx)
	require.NoError(t, err)
	assert.False(t, val)

	mock.SetValue(true)
	assert.True(t, airdrops.Get(ctx))

	// The last observed value survives a failing source
	mock.InduceErrors()
	val, err = airdrops.GetSafe(ctx)
	require.Error(t, err)
	assert.True(t, val)

	mock.StopInducingErrors()
	mock.SetValue([]byte("false"))
	assert.False(t, airdrops.Get(ctx))

	mock.SetValue([]byte("maybe"))
	_, err = airdrops.GetSafe(ctx)
	assert.Error(t, err)

	mock.SetValue("true")
	_, err = airdrops.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)

	mock.ClearValue()
	assert.False(t, airdrops.Get(ctx))
}

func TestUint64Config(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	lamports := NewUint64Config(mock, 1_000_000_000)

	assert.EqualValues(t, 1_000_000_000, lamports.Get(ctx))

	for _, raw := range []interface{}{uint64(42), uint(42), 42, []byte("42")} {
		mock.SetValue(raw)
		val, err := lamports.GetSafe(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 42, val)
	}

	mock.SetValue(-1)
	val, err := lamports.GetSafe(ctx)
	assert.True(t, errors.Is(err, config.ErrOutOfRange))
	assert.EqualValues(t, 42, val)

	mock.SetValue([]byte("lots"))
	_, err = lamports.GetSafe(ctx)
	assert.Error(t, err)

	mock.SetValue(4.2)
	_, err = lamports.GetSafe(ctx)
	assert.Equal(t, ErrUnsuportedConversion, err)

	mock.Shutdown()
	val, err = lamports.GetSafe(ctx)
	assert.Equal(t, config.ErrShutdown, err)
	assert.EqualValues(t, 42, val)
}

func TestBoundedUint64Config(t *testing.T) {
	ctx := context.Background()
	mock := memory.NewConfig(nil)
	bps := NewBoundedUint64Config(mock, 4500, 10_000)

	assert.EqualValues(t, 4500, bps.Get(ctx))

	mock.SetValue([]byte("10000"))
	assert.EqualValues(t, 10_000, bps.Get(ctx))

	mock.SetValue([]byte("10001"))
	val, err := bps.GetSafe(ctx)
	assert.True(t, errors.Is(err, config.ErrOutOfRange))
	assert.EqualValues(t, 10_000, val)
}
