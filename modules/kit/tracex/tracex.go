package tracex

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type traceIDKey struct{}
type spanIDKey struct{}
type worldIDKey struct{}
type kingdomIDKey struct{}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

func TraceIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, traceIDKey{})
}

func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey{}, spanID)
}

func SpanIDFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, spanIDKey{})
}

// WithWorld 把 world_id 挂到 ctx 上，日志适配器会自动带出。
func WithWorld(ctx context.Context, worldID string) context.Context {
	return context.WithValue(ctx, worldIDKey{}, worldID)
}

func WorldFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, worldIDKey{})
}

func WithKingdom(ctx context.Context, kingdomID string) context.Context {
	return context.WithValue(ctx, kingdomIDKey{}, kingdomID)
}

func KingdomFrom(ctx context.Context) (string, bool) {
	return stringFrom(ctx, kingdomIDKey{})
}

// Ensure 保证 ctx 上有 trace_id；已有则原样返回。
func Ensure(ctx context.Context) (context.Context, string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tid, ok := TraceIDFrom(ctx); ok {
		return ctx, tid
	}
	tid := NewTraceID()
	return WithTraceID(ctx, tid), tid
}

// NewTraceID 生成 32 位 hex trace_id。
func NewTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// NewSpanID 生成 16 位 hex span_id。
func NewSpanID() string {
	return NewTraceID()[:16]
}

func stringFrom(ctx context.Context, key any) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(key).(string)
	return s, ok && s != ""
}
