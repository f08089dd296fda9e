package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across palette.
// Use these constants instead of raw strings.
const (
	// Identity and context
	FieldRequestID = "request_id"
	FieldTenantID  = "tenant_id"
	FieldUserID    = "user_id"
	FieldClientID  = "client_id"
	FieldWorkflow  = "workflow"

	// Components
	FieldComponent = "component"

	// Parsing
	FieldInput      = "input"
	FieldIntent     = "intent"
	FieldEntities   = "entities"
	FieldModifiers  = "modifiers"
	FieldConfidence = "confidence"
	FieldShortcut   = "shortcut"

	// Resolution
	FieldEntityType = "entity_type"
	FieldEntityID   = "entity_id"
	FieldIdentifier = "identifier"
	FieldStage      = "stage"
	FieldScore      = "score"
	FieldSimilarity = "similarity"
	FieldCacheKey   = "cache_key"
	FieldCacheHit   = "cache_hit"

	// Learning
	FieldPattern = "pattern"
	FieldReason  = "reason"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldLimit = "limit"

	// Files and paths
	FieldPath = "path"
)

type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	componentKey contextKey = "logger_component"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID carried by ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Debugw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	if ctx == nil {
		return nil
	}
	var fields []interface{}
	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}
	return fields
}

// FromContext returns base (or the global logger) decorated with the
// request fields carried by ctx.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	l := Or(base)
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
