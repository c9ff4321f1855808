package websocket

import (
	"driftchat/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger provides structured logging for registry and push events.
type Logger struct {
	logger *zap.Logger
}

// NewLogger tags base with component=websocket. A nil base falls back to the
// global logger.
func NewLogger(base *logger.Logger) *Logger {
	if base == nil {
		base = logger.GetGlobalLogger()
	}
	return &Logger{logger: base.Component("websocket")}
}

func (l *Logger) Info(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Info("websocket_event", allFields...)
}

func (l *Logger) Error(event string, userID uuid.UUID, clientID string, err error, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
		zap.Error(err),
	}, fields...)
	l.logger.Error("websocket_error", allFields...)
}

func (l *Logger) Warn(event string, userID uuid.UUID, clientID string, fields ...zap.Field) {
	allFields := append([]zap.Field{
		zap.String("event", event),
		zap.String("user_id", userID.String()),
		zap.String("client_id", clientID),
	}, fields...)
	l.logger.Warn("websocket_warning", allFields...)
}
