package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig, config)
}

func TestLoadConfig_FromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
log_level: debug
app_name: skillchain-test
http_listen_address: "localhost:9090"
shutdown_grace_period: 5s
enable_pprof: false
maintenance_mode: true
app:
  ledger_backend: badger
  ledger_badger_dir: /tmp/ledger
`), 0o644))

	config, err := loadConfig(viper.New(), configPath)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "skillchain-test", config.AppName)
	assert.Equal(t, "localhost:9090", config.HttpListenAddress)
	assert.Equal(t, 5*time.Second, config.ShutdownGracePeriod)
	assert.False(t, config.EnablePprof)
	assert.True(t, config.MaintenanceMode)
	assert.Equal(t, "badger", config.AppConfig["ledger_backend"])
	assert.Equal(t, "/tmp/ledger", config.AppConfig["ledger_badger_dir"])

	// Unset values keep their defaults
	assert.Equal(t, defaultConfig.DebugListenAddress, config.DebugListenAddress)
	assert.True(t, config.EnableExpvar)
	assert.True(t, config.EnablePrometheus)
}

func TestLoadConfig_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("app_name: [unterminated"), 0o644))

	_, err := loadConfig(viper.New(), configPath)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(configPath, []byte(`app_name: ""`), 0o644))

	_, err = loadConfig(viper.New(), configPath)
	assert.Error(t, err)
}
