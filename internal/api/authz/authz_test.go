package authz

import (
	"context"
	"errors"
	"testing"
)

func TestRequireUserUnauthenticated(t *testing.T) {
	if _, err := RequireUser(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, err := RequireAdmin(context.Background()); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestRequireAdminForbiddenForPlayer(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 10})

	if _, err := RequireAdmin(ctx); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	user, err := RequireUser(ctx)
	if err != nil || user.ID != 10 {
		t.Fatalf("expected player 10, got %+v (%v)", user, err)
	}
}

func TestRequireAdminAllowed(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &AuthUser{ID: 1, IsAdmin: true})

	user, err := RequireAdmin(ctx)
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if !IsAdmin(user) {
		t.Fatalf("expected admin user")
	}
}

func TestCaller(t *testing.T) {
	caller := Caller(&AuthUser{ID: 7, IsAdmin: true})
	if caller.UserID != 7 || !caller.IsAdmin {
		t.Fatalf("unexpected caller %+v", caller)
	}
	if empty := Caller(nil); empty.UserID != 0 || empty.IsAdmin {
		t.Fatalf("nil user should map to the zero caller, got %+v", empty)
	}
}

func TestUserFromContextWrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), userContextKey{}, "not a user")
	if UserFromContext(ctx) != nil {
		t.Fatalf("expected nil for wrong value type")
	}
	//nolint:staticcheck // nil context is part of the contract
	if UserFromContext(nil) != nil {
		t.Fatalf("expected nil for nil context")
	}
}
