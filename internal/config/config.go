// Package config собирает настройки сервера из флагов и переменных окружения.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Addr               string
	Storage            string
	DatabaseURL        string
	SQLitePath         string
	RedisURL           string
	ModerationCacheTTL time.Duration
	LogLevel           string
	Seed               bool
}

// FromCommand читает значения флагов команды.
func FromCommand(c *cli.Command) (Config, error) {
	cfg := Config{
		Addr:               c.String(FlagAddr),
		Storage:            c.String(FlagStorage),
		DatabaseURL:        c.String(FlagDatabaseURL),
		SQLitePath:         c.String(FlagSQLitePath),
		RedisURL:           c.String(FlagRedisURL),
		ModerationCacheTTL: c.Duration(FlagModerationCacheTTL),
		LogLevel:           c.String(FlagLogLevel),
		Seed:               c.Bool(FlagSeed),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: database-url is required for postgres storage", ErrInvalidConfig)
		}
	case StorageSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%w: sqlite-path is required for sqlite storage", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalidConfig, c.Storage)
	}
	if c.RedisURL != "" && c.ModerationCacheTTL <= 0 {
		return fmt.Errorf("%w: moderation-cache-ttl must be positive", ErrInvalidConfig)
	}
	return nil
}
