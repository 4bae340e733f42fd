// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext contains request tracing information.
type TraceContext struct {
	TraceID   string
	RequestID string
}

type traceContextKey struct{}

type sellerContextKey struct{}

// NewTraceContext creates a TraceContext, generating any missing ID.
func NewTraceContext(traceID, requestID string) *TraceContext {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}
	return &TraceContext{TraceID: traceID, RequestID: requestID}
}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// WithSellerID scopes the request to one seller account.
func WithSellerID(ctx context.Context, sellerID string) context.Context {
	return context.WithValue(ctx, sellerContextKey{}, sellerID)
}

// GetSellerID returns the seller the request acts for, or "".
func GetSellerID(ctx context.Context) string {
	if v, ok := ctx.Value(sellerContextKey{}).(string); ok {
		return v
	}
	return ""
}
