package authz

import (
	"context"
	"errors"

	"github.com/codr1/PickleLadder/internal/ladder"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

// AuthUser is the caller resolved from a verified bearer token.
type AuthUser struct {
	ID          int64
	AuthSubject string
	Email       string
	IsAdmin     bool
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// IsAdmin reports whether user is a non-nil ladder administrator.
func IsAdmin(user *AuthUser) bool {
	return user != nil && user.IsAdmin
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireAdmin returns the authenticated user when it is an administrator.
func RequireAdmin(ctx context.Context) (*AuthUser, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrForbidden
	}
	return user, nil
}

// Caller converts the authenticated user into the identity ladder
// operations run under.
func Caller(user *AuthUser) ladder.Caller {
	if user == nil {
		return ladder.Caller{}
	}
	return ladder.Caller{UserID: user.ID, IsAdmin: user.IsAdmin}
}
