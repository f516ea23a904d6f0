package httpx

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	tokenKey     contextKey = "token"
	requestIDKey contextKey = "requestID"
)

// TokenInfo identifies the access token that authenticated a request.
type TokenInfo struct {
	ID        string
	ExpiresAt time.Time
}

// UserIDFrom retrieves the user ID from the request context.
func UserIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

func TokenFrom(r *http.Request) (TokenInfo, bool) {
	v, ok := r.Context().Value(tokenKey).(TokenInfo)
	return v, ok
}

// ContextWithUser returns a new context carrying the authenticated user.
func ContextWithUser(ctx context.Context, userID string, token TokenInfo) context.Context {
	if slot, ok := ctx.Value(userSlotKey).(*userSlot); ok {
		slot.id = userID
	}
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, tokenKey, token)
}

func RequestIDFrom(r *http.Request) string {
	if v, ok := r.Context().Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func contextWithUserSlot(ctx context.Context, slot *userSlot) context.Context {
	return context.WithValue(ctx, userSlotKey, slot)
}
