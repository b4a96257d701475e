package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/UkralStul/feed-engine/api"
	"github.com/UkralStul/feed-engine/internal/config"
	"github.com/UkralStul/feed-engine/internal/moderation"
	"github.com/UkralStul/feed-engine/internal/service"
	"github.com/UkralStul/feed-engine/internal/storage"
	"github.com/UkralStul/feed-engine/internal/storage/gormstore"
	"github.com/UkralStul/feed-engine/internal/storage/inmemory"
	"github.com/UkralStul/feed-engine/internal/storage/rediscache"
)

const VERSION = "0.1.0"

const shutdownTimeout = 10 * time.Second

func main() {
	cmd := &cli.Command{
		Name:    "feed-engine",
		Usage:   "Social feed service with reposts, quotes, polls and moderation",
		Version: VERSION,
		Flags:   config.Flags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.FromCommand(c)
	if err != nil {
		return err
	}
	log, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	store, closeStore, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	component(log, "storage").Info("storage ready", "type", cfg.Storage)

	opts := []service.Option{}
	if cfg.RedisURL != "" {
		client, err := rediscache.Dial(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		cache := rediscache.New(client, moderation.StoreLoader{Source: store}, cfg.ModerationCacheTTL, log)
		opts = append(opts, service.WithModerationLoader(cache))
		log.Info("moderation cache enabled", "ttl", cfg.ModerationCacheTTL)
	}
	svc := service.New(store, log, opts...)

	if cfg.Seed {
		// Заполним данными для тестов
		if err := fillWithMockData(ctx, svc, component(log, "seed")); err != nil {
			return err
		}
	}

	srvLog := component(log, "http")
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(svc, store, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		srvLog.Info("http server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	srvLog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStorage(cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.Storage {
	case config.StoragePostgres:
		store, err := gormstore.OpenPostgres(cfg.DatabaseURL, gormLevel(cfg.LogLevel))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		return store, closer(store), nil
	case config.StorageSQLite:
		store, err := gormstore.OpenSQLite(cfg.SQLitePath, gormLevel(cfg.LogLevel))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		return store, closer(store), nil
	default:
		return inmemory.New(), func() {}, nil
	}
}

func closer(store *gormstore.Store) func() {
	return func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close storage", "error", err)
		}
	}
}
