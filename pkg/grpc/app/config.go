package app

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the application specific configuration.
// It is passed to the App.Init function, and is optional.
type Config map[string]interface{}

// BaseConfig contains the base configuration for services, as well as the
// application itself.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// HttpListenAddress serves the application's HTTP API
	HttpListenAddress string `mapstructure:"http_listen_address"`

	// ListenAddress serves gRPC over TLS, and is only used when a certificate
	// is configured
	ListenAddress         string `mapstructure:"listen_address"`
	InsecureListenAddress string `mapstructure:"insecure_listen_address"`
	DebugListenAddress    string `mapstructure:"debug_listen_address"`

	// TLSCertificate is an optional URL that specifies a TLS certificate used
	// by the gRPC and HTTP servers. If no scheme is specified, file is used.
	TLSCertificate string `mapstructure:"tls_certificate"`
	// TLSKey is an optional URL that specifies a TLS private key used by the
	// gRPC and HTTP servers. If no scheme is specified, file is used.
	TLSKey string `mapstructure:"tls_private_key"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	HttpReadTimeout  time.Duration `mapstructure:"http_read_timeout"`
	HttpWriteTimeout time.Duration `mapstructure:"http_write_timeout"`

	EnablePprof      bool `mapstructure:"enable_pprof"`
	EnableExpvar     bool `mapstructure:"enable_expvar"`
	EnablePrometheus bool `mapstructure:"enable_prometheus"`

	// Soft memory limit for the Go runtime, as a fraction of total memory.
	// Capacity is capped at 90%.
	EnableMemoryLimit   bool    `mapstructure:"enable_memory_limit"`
	MemoryLimitCapacity float64 `mapstructure:"memory_limit_capacity"`

	// Periodically terminate the application when there's a memory leak
	EnableMemoryLeakCron   bool   `mapstructure:"enable_memory_leak_cron"`
	MemoryLeakCronSchedule string `mapstructure:"memory_leak_cron_schedule"`

	// Rejects everything except health checks and HTTP reads
	MaintenanceMode bool `mapstructure:"maintenance_mode"`

	// Metrics configuration across many providers
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	// Arbitrary configuration that the service can define / implement.
	//
	// Users should use mapstructure.Decode for ServiceConfig.
	AppConfig Config `mapstructure:"app"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "skillchain",

	HttpListenAddress:     ":8080",
	ListenAddress:         ":8085",
	InsecureListenAddress: "localhost:8086",
	DebugListenAddress:    ":8123",

	ShutdownGracePeriod: 30 * time.Second,

	HttpReadTimeout:  10 * time.Second,
	HttpWriteTimeout: 30 * time.Second,

	EnablePprof:      true,
	EnableExpvar:     true,
	EnablePrometheus: true,

	EnableMemoryLimit:   true,
	MemoryLimitCapacity: 0.75,

	EnableMemoryLeakCron:   false,
	MemoryLeakCronSchedule: "0 5 * * *",
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("http_listen_address", "HTTP_LISTEN_ADDRESS")
	_ = viper.BindEnv("listen_address", "LISTEN_ADDRESS")
	_ = viper.BindEnv("insecure_listen_address", "INSECURE_LISTEN_ADDRESS")
	_ = viper.BindEnv("debug_listen_address", "DEBUG_LISTEN_ADDRESS")

	_ = viper.BindEnv("tls_certificate", "TLS_CERTIFICATE")
	_ = viper.BindEnv("tls_private_key", "TLS_PRIVATE_KEY")

	_ = viper.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")

	_ = viper.BindEnv("http_read_timeout", "HTTP_READ_TIMEOUT")
	_ = viper.BindEnv("http_write_timeout", "HTTP_WRITE_TIMEOUT")

	_ = viper.BindEnv("enable_pprof", "ENABLE_PPROF")
	_ = viper.BindEnv("enable_expvar", "ENABLE_EXPVAR")
	_ = viper.BindEnv("enable_prometheus", "ENABLE_PROMETHEUS")

	_ = viper.BindEnv("enable_memory_limit", "ENABLE_MEMORY_LIMIT")
	_ = viper.BindEnv("memory_limit_capacity", "MEMORY_LIMIT_CAPACITY")

	_ = viper.BindEnv("enable_memory_leak_cron", "ENABLE_MEMORY_LEAK_CRON")
	_ = viper.BindEnv("memory_leak_cron_schedule", "MEMORY_LEAK_CRON_SCHEDULE")

	_ = viper.BindEnv("maintenance_mode", "MAINTENANCE_MODE")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}

// LoadConfig reads the base configuration from the file at configPath, when
// it exists, layered with environment variables and defaults.
func LoadConfig(configPath string) (BaseConfig, error) {
	return loadConfig(viper.GetViper(), configPath)
}

func loadConfig(v *viper.Viper, configPath string) (BaseConfig, error) {
	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
		} else if !os.IsNotExist(err) {
			return BaseConfig{}, errors.Wrap(err, "failed to check if config exists")
		}
	}

	err := v.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return BaseConfig{}, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return BaseConfig{}, errors.Wrap(err, "failed to unmarshal config")
	}

	if len(config.AppName) == 0 {
		return BaseConfig{}, errors.New("must specify an application name")
	}

	return config, nil
}
