package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Addr         string        `mapstructure:"addr"`
	Token        string        `mapstructure:"token"`
	Development  bool          `mapstructure:"development"`
	LogFile      string        `mapstructure:"log_file"`
	OutboxSize   int           `mapstructure:"outbox_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DatabaseURL  string        `mapstructure:"database_url"`
	Postgres     Database      `mapstructure:"postgres"`
}

var defaults = map[string]any{
	"addr":                   ":3000",
	"token":                  "10251985",
	"development":            false,
	"log_file":               "",
	"outbox_size":            16,
	"write_timeout":          10 * time.Second,
	"database_url":           "",
	"postgres.user":          "",
	"postgres.password":      "",
	"postgres.password_file": "",
	"postgres.host":          "",
	"postgres.port":          5432,
	"postgres.db_name":       "",
	"postgres.ssl_mode":      "disable",
}

// Flags returns the command line flags understood by Load.
func Flags(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP("config", "c", "", "config file path")
	flags.String("addr", defaults["addr"].(string), "listen address")
	flags.Bool("development", false, "verbose colored logs")
	flags.String("log-file", "", "also write logs to this rotating file")
	return flags
}

// Load merges defaults, an optional config file, MINES_* environment
// variables and flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("MINES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range map[string]string{
			"addr":        "addr",
			"development": "development",
			"log_file":    "log-file",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("unable to bind flag %s: %w", name, err)
				}
			}
		}
		if path, err := flags.GetString("config"); err == nil && path != "" {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("unable to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if cfg.OutboxSize <= 0 {
		return nil, fmt.Errorf("outbox_size must be positive, got %d", cfg.OutboxSize)
	}
	return &cfg, nil
}

func (c Config) Production() bool {
	return !c.Development
}

// DbURL returns the archive database url, or "" when no database is
// configured.
func (c Config) DbURL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.Postgres.Host == "" {
		return "", nil
	}
	return c.Postgres.URL()
}
