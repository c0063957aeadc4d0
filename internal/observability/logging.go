// Package observability provides repository logging, domain metrics and
// tracing for the highlights service.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger for the repository and event loggers.
type Logger struct {
	*slog.Logger
}

// GlobalLogger is the default logger instance.
var GlobalLogger *Logger

func init() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	GlobalLogger = &Logger{Logger: slog.New(handler)}
}

// LoggingConfig toggles the automated loggers.
type LoggingConfig struct {
	EnableRepoLogging  bool
	EnableEventLogging bool
}

// Config holds the current logging configuration.
var Config = LoggingConfig{
	EnableRepoLogging:  true,
	EnableEventLogging: true,
}

// RepoLogger logs writes and failures of one table.
type RepoLogger struct {
	tableName string
	logger    *Logger
}

// NewRepoLogger creates a RepoLogger for tableName.
func NewRepoLogger(tableName string) *RepoLogger {
	return &RepoLogger{
		tableName: tableName,
		logger:    GlobalLogger,
	}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields map[string]any) {
	if !Config.EnableRepoLogging {
		return
	}
	attrs := []any{
		slog.String("table", l.tableName),
		slog.String("operation", operation),
	}
	for k, v := range fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.InfoContext(ctx, "repository "+operation, attrs...)
}

// LogCreate logs an insert.
func (l *RepoLogger) LogCreate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "create", fields)
}

// LogUpdate logs an update.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields map[string]any) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a delete.
func (l *RepoLogger) LogDelete(ctx context.Context, fields map[string]any) {
	l.log(ctx, "delete", fields)
}

// LogError logs a failed repository operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	if !Config.EnableRepoLogging || err == nil {
		return
	}
	l.logger.ErrorContext(ctx, "repository error",
		slog.String("table", l.tableName),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// LogEventFailure records a best-effort side effect (notification, domain
// event) that could not be delivered.
func LogEventFailure(ctx context.Context, sink, event string, err error) {
	if !Config.EnableEventLogging || err == nil {
		return
	}
	GlobalLogger.WarnContext(ctx, "event delivery failed",
		slog.String("sink", sink),
		slog.String("event", event),
		slog.String("error", err.Error()),
	)
}
