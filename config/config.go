// Package config loads server configuration from a YAML file with
// environment variable overrides (viper). Defaults are suitable for
// local development.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type DatabaseConfig struct {
	// Path is the sqlite database file; ":memory:" runs fully in-memory.
	Path string `mapstructure:"path"`
}

type RemindersConfig struct {
	HorizonDays int `mapstructure:"horizon_days"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads config.yaml from the given directory. A missing file is
// not an error; defaults and ASSET_* environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetDefault("server.port", "8080")
	v.SetDefault("database.path", "assets.db")
	v.SetDefault("reminders.horizon_days", 30)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("ASSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
