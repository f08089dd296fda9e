package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/palette/logger"
)

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *zap.SugaredLogger
}

// NewLogSink creates a sink on l, or on the global logger when l is nil.
func NewLogSink(l *zap.SugaredLogger) *LogSink {
	return &LogSink{logger: l}
}

func (s *LogSink) Emit(ctx context.Context, ev Event) {
	fields := []interface{}{
		"event_id", ev.ID,
		logger.FieldTenantID, ev.TenantID,
		logger.FieldUserID, ev.UserID,
		logger.FieldInput, ev.Input,
		logger.FieldIntent, ev.Intent,
		logger.FieldEntities, ev.Entities,
		logger.FieldConfidence, ev.Confidence,
		logger.FieldShortcut, ev.Shortcut,
	}
	if ev.Duration > 0 {
		fields = append(fields, logger.FieldDurationMS, ev.Duration.Milliseconds())
	}
	if ev.Reason != "" {
		fields = append(fields, logger.FieldReason, ev.Reason)
	}
	logger.FromContext(ctx, s.logger).Named("events").Infow("command "+string(ev.Kind), fields...)
}
