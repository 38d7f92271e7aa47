package typeorm

import (
	"log/slog"
	"os"
)

// QueryLogger is the logging collaborator. The driver calls it with every
// statement before execution and with the statement and error after a
// failure; no return value is consumed.
type QueryLogger interface {
	LogQuery(sql string, args []any)
	LogFailedQuery(sql string, args []any)
	LogQueryError(err error)
}

var defaultLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

// slogQueryLogger emits structured query logs through log/slog.
type slogQueryLogger struct {
	logger *slog.Logger
}

// NewSlogQueryLogger wraps an slog.Logger as a QueryLogger. A nil logger
// falls back to the package default (JSON to stdout).
func NewSlogQueryLogger(logger *slog.Logger) QueryLogger {
	if logger == nil {
		logger = defaultLogger
	}
	return &slogQueryLogger{logger: logger}
}

func (l *slogQueryLogger) LogQuery(sql string, args []any) {
	l.logger.Debug("executing query",
		slog.String("query", sql),
		slog.Int("arg_count", len(args)),
	)
}

func (l *slogQueryLogger) LogFailedQuery(sql string, args []any) {
	l.logger.Error("query failed",
		slog.String("query", sql),
		slog.Int("arg_count", len(args)),
	)
}

func (l *slogQueryLogger) LogQueryError(err error) {
	l.logger.Error("query error", slog.String("error", err.Error()))
}

// NopQueryLogger discards all query logs.
type NopQueryLogger struct{}

func (NopQueryLogger) LogQuery(string, []any)       {}
func (NopQueryLogger) LogFailedQuery(string, []any) {}
func (NopQueryLogger) LogQueryError(error)          {}
