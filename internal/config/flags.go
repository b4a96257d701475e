package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"
)

const (
	FlagAddr               = "addr"
	FlagStorage            = "storage"
	FlagDatabaseURL        = "database-url"
	FlagSQLitePath         = "sqlite-path"
	FlagRedisURL           = "redis-url"
	FlagModerationCacheTTL = "moderation-cache-ttl"
	FlagLogLevel           = "log-level"
	FlagSeed               = "seed"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validStorages  = []string{StorageInMemory, StoragePostgres, StorageSQLite}
)

func oneOf(name string, allowed []string) func(string) error {
	return func(value string) error {
		if !slices.Contains(allowed, value) {
			return fmt.Errorf("invalid %s: %s, allowed values are: %s", name, value, allowed)
		}
		return nil
	}
}

// Flags возвращает новый набор флагов сервера на каждый вызов.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagAddr,
			Aliases: []string{"a"},
			Usage:   "The address the HTTP server listens on",
			Value:   ":8080",
			Sources: cli.EnvVars("ADDR"),
		},
		&cli.StringFlag{
			Name:      FlagStorage,
			Aliases:   []string{"s"},
			Usage:     "Storage type: in-memory, postgres or sqlite",
			Value:     StorageInMemory,
			Validator: oneOf("storage", validStorages),
			Sources:   cli.EnvVars("STORAGE"),
		},
		&cli.StringFlag{
			Name:    FlagDatabaseURL,
			Usage:   "PostgreSQL DSN, required for postgres storage",
			Sources: cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    FlagSQLitePath,
			Usage:   "Path to the SQLite database file",
			Value:   "feed.db",
			Sources: cli.EnvVars("SQLITE_PATH"),
		},
		&cli.StringFlag{
			Name:    FlagRedisURL,
			Usage:   "Redis URL for the moderation cache, empty disables caching",
			Sources: cli.EnvVars("REDIS_URL"),
		},
		&cli.DurationFlag{
			Name:    FlagModerationCacheTTL,
			Usage:   "How long a cached moderation snapshot lives",
			Value:   30 * time.Second,
			Sources: cli.EnvVars("MODERATION_CACHE_TTL"),
		},
		&cli.StringFlag{
			Name:      FlagLogLevel,
			Aliases:   []string{"l"},
			Usage:     "The level of the logs",
			Value:     "info",
			Validator: oneOf("log level", validLogLevels),
			Sources:   cli.EnvVars("LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        FlagSeed,
			Usage:       "Fill the storage with demo posts on start",
			DefaultText: "false",
			Value:       false,
			Sources:     cli.EnvVars("SEED"),
		},
	}
}
