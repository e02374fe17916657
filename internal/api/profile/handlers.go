// internal/api/profile/handlers.go
package profile

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/api/apiutil"
	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/contact"
	appdb "github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

const (
	profileQueryTimeout = 5 * time.Second
	maxNameLength       = 60
)

var (
	queries       *dbgen.Queries
	defaultRegion = "US"
)

type profileResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone,omitempty"`
	PhoneDisplay string `json:"phoneDisplay,omitempty"`
	IsAdmin      bool   `json:"isAdmin"`
}

type profileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// InitHandlers must be called during server startup before handling requests.
// region is the default phone region for numbers entered without a country code.
func InitHandlers(database *appdb.DB, region string) {
	queries = nil
	if database != nil {
		queries = database.Queries
	}
	defaultRegion = "US"
	if strings.TrimSpace(region) != "" {
		defaultRegion = strings.ToUpper(strings.TrimSpace(region))
	}
}

// GET /api/v1/me
func HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "load profile")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), profileQueryTimeout)
	defer cancel()

	row, err := queries.GetUserByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to load profile")
		apiutil.WriteError(w, http.StatusInternalServerError, errors.New("failed to load profile"))
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, toResponse(row))
}

// PUT /api/v1/me
func HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if queries == nil {
		logger.Error().Msg("Database queries not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "update profile")
		return
	}

	var req profileRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	params, err := validate(req)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	params.ID = user.ID

	ctx, cancel := context.WithTimeout(r.Context(), profileQueryTimeout)
	defer cancel()

	row, err := queries.UpdateUserProfile(ctx, params)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			apiutil.WriteError(w, http.StatusNotFound, errors.New("user not found"))
			return
		}
		logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to update profile")
		apiutil.WriteError(w, http.StatusInternalServerError, errors.New("failed to update profile"))
		return
	}

	logger.Info().Int64("user_id", user.ID).Bool("has_phone", row.Phone.Valid).Msg("Profile updated")
	_ = apiutil.WriteJSON(w, http.StatusOK, toResponse(row))
}

func validate(req profileRequest) (dbgen.UpdateUserProfileParams, error) {
	first := strings.TrimSpace(req.FirstName)
	last := strings.TrimSpace(req.LastName)
	if first == "" {
		return dbgen.UpdateUserProfileParams{}, apiutil.FieldError{Field: "firstName", Reason: "is required"}
	}
	if utf8.RuneCountInString(first) > maxNameLength {
		return dbgen.UpdateUserProfileParams{}, apiutil.FieldError{Field: "firstName", Reason: "is too long"}
	}
	if utf8.RuneCountInString(last) > maxNameLength {
		return dbgen.UpdateUserProfileParams{}, apiutil.FieldError{Field: "lastName", Reason: "is too long"}
	}

	phone, err := contact.NormalizePhone(req.Phone, defaultRegion)
	if err != nil {
		return dbgen.UpdateUserProfileParams{}, apiutil.FieldError{Field: "phone", Reason: "is not a valid phone number"}
	}

	return dbgen.UpdateUserProfileParams{
		FirstName: first,
		LastName:  last,
		Phone:     sql.NullString{String: phone, Valid: phone != ""},
	}, nil
}

func toResponse(row dbgen.User) profileResponse {
	return profileResponse{
		ID:           row.ID,
		Email:        row.Email.String,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Phone:        row.Phone.String,
		PhoneDisplay: contact.DisplayPhone(row.Phone.String, defaultRegion),
		IsAdmin:      row.IsAdmin,
	}
}
