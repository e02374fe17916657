package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/api/authz"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

// Authenticator turns a verified bearer token into a local user, registering
// the user on first sight.
type Authenticator struct {
	verifier      *Verifier
	queries       *dbgen.Queries
	adminSubjects map[string]struct{}
}

func NewAuthenticator(verifier *Verifier, queries *dbgen.Queries, adminSubjects []string) *Authenticator {
	admins := make(map[string]struct{}, len(adminSubjects))
	for _, subject := range adminSubjects {
		if subject = strings.TrimSpace(subject); subject != "" {
			admins[subject] = struct{}{}
		}
	}
	return &Authenticator{verifier: verifier, queries: queries, adminSubjects: admins}
}

// UserFromRequest returns the caller for r. A request without an
// Authorization header yields (nil, ErrNoToken).
func (a *Authenticator) UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	claims, err := a.verifier.Verify(raw)
	if err != nil {
		return nil, err
	}
	return a.resolve(r.Context(), claims)
}

func (a *Authenticator) resolve(ctx context.Context, claims *Claims) (*authz.AuthUser, error) {
	email := sql.NullString{}
	if trimmed := strings.TrimSpace(claims.Email); trimmed != "" {
		email = sql.NullString{String: strings.ToLower(trimmed), Valid: true}
	}

	// Known subjects with an unchanged email resolve without a write.
	user, err := a.queries.GetUserByAuthSubject(ctx, claims.Subject)
	switch {
	case err == nil && (!email.Valid || email.String == user.Email.String):
	case err == nil || errors.Is(err, sql.ErrNoRows):
		user, err = a.queries.UpsertUserBySubject(ctx, dbgen.UpsertUserBySubjectParams{
			AuthSubject: claims.Subject,
			Email:       email,
		})
		if err != nil {
			return nil, fmt.Errorf("register user: %w", err)
		}
	default:
		return nil, fmt.Errorf("load user: %w", err)
	}

	if _, admin := a.adminSubjects[claims.Subject]; admin && !user.IsAdmin {
		if err := a.queries.SetUserAdmin(ctx, dbgen.SetUserAdminParams{IsAdmin: true, ID: user.ID}); err != nil {
			return nil, fmt.Errorf("promote admin: %w", err)
		}
		user.IsAdmin = true
		log.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("Promoted configured admin subject")
	}

	return &authz.AuthUser{
		ID:          user.ID,
		AuthSubject: user.AuthSubject,
		Email:       user.Email.String,
		IsAdmin:     user.IsAdmin,
	}, nil
}
