// Package context carries the caller and the request trace through a
// request. Values are stored as pointers and never mutated after WithX.
package context

import (
	"context"

	"github.com/google/uuid"
)

// UserContext is the caller as read from the access token. Ids stay
// strings here; security.NewAccessScope parses them.
type UserContext struct {
	UserID       string
	Email        string
	Roles        []string
	DepartmentID string
	IsAdmin      bool
}

// RequestTrace correlates logs, spans and response headers of one call.
type RequestTrace struct {
	TraceID   string
	RequestID string
}

type key int

const (
	userKey key = iota
	traceKey
)

func with[T any](ctx context.Context, k key, v *T) context.Context {
	return context.WithValue(ctx, k, v)
}

func get[T any](ctx context.Context, k key) *T {
	v, _ := ctx.Value(k).(*T)
	return v
}

func WithUser(ctx context.Context, user *UserContext) context.Context {
	return with(ctx, userKey, user)
}

// GetUser returns nil for unauthenticated requests and background jobs.
func GetUser(ctx context.Context) *UserContext {
	return get[UserContext](ctx, userKey)
}

// GetUserID is the empty string when no user is attached.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// NewTraceContext fills in missing ids: the request id is generated, the
// trace id falls back to spanTraceID and then to the request id.
func NewTraceContext(traceID, requestID, spanTraceID string) *RequestTrace {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	switch {
	case traceID != "":
	case spanTraceID != "":
		traceID = spanTraceID
	default:
		traceID = requestID
	}
	return &RequestTrace{TraceID: traceID, RequestID: requestID}
}

func WithTrace(ctx context.Context, trace *RequestTrace) context.Context {
	return with(ctx, traceKey, trace)
}

func GetTrace(ctx context.Context) *RequestTrace {
	return get[RequestTrace](ctx, traceKey)
}

func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}
