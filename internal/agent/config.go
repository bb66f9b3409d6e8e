package agent

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the agent's connection and loop settings. Values come from a
// config file when one is given, overridden by FOCUSFLOW_* environment
// variables.
type Config struct {
	ServerURL               string `mapstructure:"server_url"`
	Token                   string `mapstructure:"token"`
	RequestTimeoutSeconds   int    `mapstructure:"request_timeout_seconds"`
	SyncIntervalSeconds     int    `mapstructure:"sync_interval_seconds"`
	BlocklistRefreshSeconds int    `mapstructure:"blocklist_refresh_seconds"`
}

func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

func (c Config) BlocklistRefresh() time.Duration {
	return time.Duration(c.BlocklistRefreshSeconds) * time.Second
}

// LoadConfig reads the agent configuration. path may be empty, in which case
// defaults and environment variables alone apply.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.SetDefault("server_url", "http://localhost:8080")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("sync_interval_seconds", 30)
	v.SetDefault("blocklist_refresh_seconds", 60)

	v.SetEnvPrefix("FOCUSFLOW")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
