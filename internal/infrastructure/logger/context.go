package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// MarketplaceKey is the context key for the marketplace a sync
	// operation is scoped to
	MarketplaceKey contextKey = "marketplace"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger
// if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID adds request ID to context and returns enriched logger
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithMarketplace adds the marketplace to context and returns enriched logger
func WithMarketplace(ctx context.Context, logger *zap.Logger, marketplace string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, MarketplaceKey, marketplace)
	enriched := logger.With(zap.String("marketplace", marketplace))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetMarketplace retrieves the marketplace from context
func GetMarketplace(ctx context.Context) string {
	if marketplace, ok := ctx.Value(MarketplaceKey).(string); ok {
		return marketplace
	}
	return ""
}

// L returns the context logger enriched with request-scoped fields.
// Usage: logger.L(ctx).Info("message", zap.String("key", "value"))
func L(ctx context.Context) *zap.Logger {
	l := FromContext(ctx)
	if requestID := GetRequestID(ctx); requestID != "" {
		l = l.With(zap.String("request_id", requestID))
	}
	if marketplace := GetMarketplace(ctx); marketplace != "" {
		l = l.With(zap.String("marketplace", marketplace))
	}
	return l
}
