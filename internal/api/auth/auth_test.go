package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/codr1/PickleLadder/internal/config"
	"github.com/codr1/PickleLadder/internal/testutil"
)

const testSecret = "test-secret-with-enough-entropy"

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		Issuer:        "https://auth.example.com",
		Audience:      "authenticated",
		AdminSubjects: []string{"sub-admin"},
		JWTSecret:     testSecret,
	}
}

func signed(t *testing.T, secret, subject, email string, mutate func(*Claims)) string {
	t.Helper()

	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "https://auth.example.com",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(&claims)
	}
	token, err := SignToken(secret, claims)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestVerify(t *testing.T) {
	verifier, err := NewVerifier(testConfig())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}

	claims, err := verifier.Verify(signed(t, testSecret, "sub-1", "one@example.com", nil))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "sub-1" || claims.Email != "one@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong secret", token: signed(t, "another-secret", "sub-1", "", nil)},
		{name: "expired", token: signed(t, testSecret, "sub-1", "", func(c *Claims) {
			c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		})},
		{name: "no expiry", token: signed(t, testSecret, "sub-1", "", func(c *Claims) { c.ExpiresAt = nil })},
		{name: "wrong issuer", token: signed(t, testSecret, "sub-1", "", func(c *Claims) { c.Issuer = "https://evil.example.com" })},
		{name: "wrong audience", token: signed(t, testSecret, "sub-1", "", func(c *Claims) { c.Audience = jwt.ClaimStrings{"anon"} })},
		{name: "missing subject", token: signed(t, testSecret, "", "", nil)},
		{name: "garbage", token: "not.a.jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := verifier.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "  "
	if _, err := NewVerifier(cfg); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := BearerToken(r); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	r.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	if _, err := BearerToken(r); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for basic auth, got %v", err)
	}

	r.Header.Set("Authorization", "bearer  abc.def.ghi ")
	token, err := BearerToken(r)
	if err != nil || token != "abc.def.ghi" {
		t.Fatalf("BearerToken = %q, %v", token, err)
	}
}

func TestUserFromRequestRegistersAndPromotes(t *testing.T) {
	database := testutil.NewTestDB(t)
	verifier, err := NewVerifier(testConfig())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	authn := NewAuthenticator(verifier, database.Queries, testConfig().AdminSubjects)

	request := func(token string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		return r
	}

	player, err := authn.UserFromRequest(request(signed(t, testSecret, "sub-player", "Player@Example.com", nil)))
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if player.ID == 0 || player.IsAdmin || player.Email != "player@example.com" {
		t.Fatalf("unexpected player: %+v", player)
	}

	again, err := authn.UserFromRequest(request(signed(t, testSecret, "sub-player", "", nil)))
	if err != nil {
		t.Fatalf("player again: %v", err)
	}
	if again.ID != player.ID || again.Email != "player@example.com" {
		t.Fatalf("second sign-in should reuse the user and keep the email: %+v", again)
	}

	admin, err := authn.UserFromRequest(request(signed(t, testSecret, "sub-admin", "admin@example.com", nil)))
	if err != nil {
		t.Fatalf("admin: %v", err)
	}
	if !admin.IsAdmin {
		t.Fatalf("configured admin subject was not promoted")
	}
	stored, err := database.Queries.GetUserByID(t.Context(), admin.ID)
	if err != nil {
		t.Fatalf("load admin: %v", err)
	}
	if !stored.IsAdmin {
		t.Fatalf("promotion was not persisted")
	}

	if _, err := authn.UserFromRequest(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestUserFromRequestSkipsWriteForKnownSubject(t *testing.T) {
	database := testutil.NewTestDB(t)
	verifier, err := NewVerifier(testConfig())
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	authn := NewAuthenticator(verifier, database.Queries, testConfig().AdminSubjects)
	ctx := t.Context()

	resolve := func(email string) int64 {
		t.Helper()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/ladders", nil)
		r.Header.Set("Authorization", "Bearer "+signed(t, testSecret, "sub-reader", email, nil))
		user, err := authn.UserFromRequest(r)
		if err != nil {
			t.Fatalf("resolve %q: %v", email, err)
		}
		return user.ID
	}

	id := resolve("reader@example.com")
	stamp := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := database.ExecContext(ctx, "UPDATE users SET updated_at = ? WHERE id = ?", stamp, id); err != nil {
		t.Fatalf("stamp user: %v", err)
	}

	tests := []struct {
		name        string
		email       string
		wantEmail   string
		wantWritten bool
	}{
		{name: "same email", email: "Reader@Example.com", wantEmail: "reader@example.com"},
		{name: "no email claim", email: "", wantEmail: "reader@example.com"},
		{name: "changed email", email: "new-reader@example.com", wantEmail: "new-reader@example.com", wantWritten: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.email); got != id {
				t.Fatalf("resolved user %d, want %d", got, id)
			}
			stored, err := database.Queries.GetUserByID(ctx, id)
			if err != nil {
				t.Fatalf("load user: %v", err)
			}
			if stored.Email.String != tt.wantEmail {
				t.Fatalf("email = %q, want %q", stored.Email.String, tt.wantEmail)
			}
			if written := !stored.UpdatedAt.Equal(stamp); written != tt.wantWritten {
				t.Fatalf("user written = %v, want %v (updated_at %s)", written, tt.wantWritten, stored.UpdatedAt)
			}
		})
	}
}
