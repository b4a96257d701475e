package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
	"gorm.io/gorm/logger"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

// logLevel связывает имя уровня из конфигурации с уровнями приложения и gorm.
type logLevel struct {
	app  slog.Level
	gorm logger.LogLevel
}

// SQL-запросы gorm пишет только на debug.
var logLevels = map[string]logLevel{
	"debug": {app: slog.LevelDebug, gorm: logger.Info},
	"info":  {app: slog.LevelInfo, gorm: logger.Warn},
	"warn":  {app: slog.LevelWarn, gorm: logger.Warn},
	"error": {app: slog.LevelError, gorm: logger.Error},
}

func lookupLevel(name string) (logLevel, error) {
	l, ok := logLevels[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return logLevel{}, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}
	return l, nil
}

func parseLevel(name string) (slog.Level, error) {
	l, err := lookupLevel(name)
	return l.app, err
}

// gormLevel подбирает уровень логов gorm. Неизвестное имя даёт Warn.
func gormLevel(name string) logger.LogLevel {
	l, err := lookupLevel(name)
	if err != nil {
		return logger.Warn
	}
	return l.gorm
}

// newLogger пишет в w: в терминал цветным devslog, иначе JSON-строками.
// Каждая запись несёт имя сервиса и версию.
func newLogger(w io.Writer, level string, tty bool) (*slog.Logger, error) {
	parsed, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: parsed}

	var handler slog.Handler
	if tty {
		handler = devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:  opts,
			TimeFormat:      time.TimeOnly,
			SortKeys:        true,
			NewLineAfterLog: true,
		})
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", "feed-engine", "version", VERSION), nil
}

func initLogger(level string) (*slog.Logger, error) {
	log, err := newLogger(os.Stdout, level, isatty.IsTerminal(os.Stdout.Fd()))
	if err != nil {
		return nil, err
	}
	slog.SetDefault(log)
	return log, nil
}

// component - дочерний логгер части сервера.
func component(log *slog.Logger, name string) *slog.Logger {
	return log.With("component", name)
}
