// Package observability provides logging, metrics, and tracing.
package observability

import (
	"context"
	"log/slog"
	"os"
)

// GlobalLogger is the logger used by the audit helpers below. Bootstrap
// replaces it with the request-aware application logger.
var GlobalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// SetLogger swaps the logger used by RepoLogger and WSLogger.
func SetLogger(l *slog.Logger) {
	if l != nil {
		GlobalLogger = l
	}
}

// RepoLogger provides structured audit logging for write operations on one entity.
type RepoLogger struct {
	entity string
}

// NewRepoLogger creates a new RepoLogger for the given entity.
func NewRepoLogger(entity string) *RepoLogger {
	return &RepoLogger{entity: entity}
}

func (l *RepoLogger) log(ctx context.Context, operation string, attrs []slog.Attr) {
	args := make([]any, 0, len(attrs)+2)
	args = append(args, slog.String("entity", l.entity), slog.String("operation", operation))
	for _, a := range attrs {
		args = append(args, a)
	}
	GlobalLogger.InfoContext(ctx, "entity "+operation, args...)
	RecordDomainEvent(l.entity, operation)
}

// LogCreate logs a create operation.
func (l *RepoLogger) LogCreate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, "create", attrs)
}

// LogUpdate logs an update operation.
func (l *RepoLogger) LogUpdate(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, "update", attrs)
}

// LogDelete logs a delete operation.
func (l *RepoLogger) LogDelete(ctx context.Context, attrs ...slog.Attr) {
	l.log(ctx, "delete", attrs)
}

// LogError logs a failed operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	GlobalLogger.ErrorContext(ctx, "entity operation failed",
		slog.String("entity", l.entity),
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// WSLogger logs websocket lifecycle events for one hub.
type WSLogger struct {
	hub string
}

// NewWSLogger creates a new WSLogger for the given hub.
func NewWSLogger(hub string) *WSLogger {
	return &WSLogger{hub: hub}
}

// LogConnect logs a WebSocket connection event.
func (l *WSLogger) LogConnect(ctx context.Context, userID, conversationID uint) {
	GlobalLogger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("conversation_id", uint64(conversationID)),
	)
}

// LogDisconnect logs a WebSocket disconnection event.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID, conversationID uint, reason string) {
	GlobalLogger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hub),
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("conversation_id", uint64(conversationID)),
		slog.String("reason", reason),
	)
}
