package utils

import (
	"context"

	"github.com/google/uuid"
)

// ctxKey is unexported so only this package can set request identity.
type ctxKey int

const (
	userIDKey ctxKey = iota
	roleKey
	tokenKey
)

// Identity is what the auth middleware learns about the caller.
type Identity struct {
	UserID uuid.UUID
	Role   string
	Token  string
}

func valueOf[T comparable](ctx context.Context, key ctxKey) (T, bool) {
	v, ok := ctx.Value(key).(T)
	var zero T
	if !ok || v == zero {
		return zero, false
	}
	return v, true
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	return valueOf[uuid.UUID](ctx, userIDKey)
}

func GetRoleFromContext(ctx context.Context) (string, bool) {
	return valueOf[string](ctx, roleKey)
}

// GetTokenFromContext returns the session token set by the auth middleware
func GetTokenFromContext(ctx context.Context) (string, bool) {
	return valueOf[string](ctx, tokenKey)
}

// IdentityFromContext returns ok only when a user is present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	role, _ := GetRoleFromContext(ctx)
	token, _ := GetTokenFromContext(ctx)
	return Identity{UserID: userID, Role: role, Token: token}, true
}

func SetUserContext(ctx context.Context, userID uuid.UUID, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

func SetTokenContext(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}
