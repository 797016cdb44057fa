package goPortal

import (
	"context"

	"github.com/MrEthical07/goPortal/internal/logs"
)

// WithRequestID attaches a correlation id to ctx. Log lines and audit
// events produced by the call carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return logs.WithLogID(ctx, id)
}

// RequestID returns the correlation id carried by ctx, if any.
func RequestID(ctx context.Context) string {
	return logs.LogID(ctx)
}

// ensureRequestID returns ctx with a correlation id, minting one if absent.
func ensureRequestID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logs.LogID(ctx) != "" {
		return ctx
	}
	return logs.WithLogID(ctx, logs.NewLogID())
}
