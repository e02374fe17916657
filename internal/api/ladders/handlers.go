// internal/api/ladders/handlers.go
package ladders

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/api/apiutil"
	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/api/htmx"
	"github.com/codr1/PickleLadder/internal/ladder"
)

const (
	ladderQueryTimeout = 5 * time.Second
	ladderIDPathKey    = "id"
	userIDPathKey      = "user_id"
)

var (
	service  *ladder.Service
	location = time.UTC
)

type createLadderRequest struct {
	Name         string  `json:"name"`
	SeasonEndsAt *string `json:"seasonEndsAt"`
}

type joinRequest struct {
	UserID *int64 `json:"userId"`
}

type renewRequest struct {
	ExpiresAt string `json:"expiresAt"`
}

type previewRequest struct {
	Order       []int64 `json:"order"`
	MovedID     int64   `json:"movedId"`
	TargetIndex int     `json:"targetIndex"`
}

type orderResponse struct {
	Order []int64 `json:"order"`
}

type commitRequest struct {
	Order           []int64 `json:"order"`
	ExpectedVersion *int64  `json:"expectedVersion"`
}

type commitResponse struct {
	RanksVersion int64 `json:"ranksVersion"`
}

type ladderListResponse struct {
	Ladders []ladder.Ladder `json:"ladders"`
}

// InitHandlers must be called during server startup before handling requests.
// loc interprets dates given without an offset; nil means UTC.
func InitHandlers(svc *ladder.Service, loc *time.Location) {
	service = svc
	location = time.UTC
	if loc != nil {
		location = loc
	}
}

// GET /api/v1/ladders
func HandleListLadders(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	if _, err := authz.RequireUser(r.Context()); err != nil {
		apiutil.WriteLadderError(w, r, err, "list ladders")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	ladders, err := service.ListLadders(ctx)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "list ladders")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, ladderListResponse{Ladders: ladders})
}

// POST /api/v1/ladders
func HandleCreateLadder(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "create ladder")
		return
	}

	var req createLadderRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	seasonEndsAt, err := apiutil.OptionalTimeField(req.SeasonEndsAt, "seasonEndsAt", location)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	created, err := service.CreateLadder(ctx, authz.Caller(user), req.Name, seasonEndsAt)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "create ladder")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, created)
}

// GET /api/v1/ladders/{id}/standings
func HandleStandings(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "load standings")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	standings, err := service.ListStandings(ctx, ladderID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "load standings")
		return
	}

	if htmx.IsRequest(r) {
		apiutil.RenderHTMLComponent(r.Context(), w, standingsTable(standings, user.ID, user.IsAdmin),
			"Failed to render standings", "Failed to render standings")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, standings)
}

// POST /api/v1/ladders/{id}/members
func HandleJoinLadder(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "join ladder")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	var req joinRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err)
			return
		}
	}
	userID := user.ID
	if req.UserID != nil {
		userID = *req.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	membership, err := service.JoinLadder(ctx, authz.Caller(user), ladderID, userID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "join ladder")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusCreated, membership)
}

// POST /api/v1/ladders/{id}/members/{user_id}/renew
func HandleRenewMembership(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "renew membership")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	memberID, err := apiutil.PathID(r, userIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	var req renewRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	expiresAt, err := apiutil.ParseTimeField(req.ExpiresAt, "expiresAt", location)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	membership, err := service.RenewMembership(ctx, authz.Caller(user), ladderID, memberID, expiresAt)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "renew membership")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, membership)
}

// POST /api/v1/ladders/{id}/ranks/preview
//
// Applies a single drag-and-drop move to the caller's working order without
// touching the store.
func HandlePreviewRanks(w http.ResponseWriter, r *http.Request) {
	if _, err := authz.RequireUser(r.Context()); err != nil {
		apiutil.WriteLadderError(w, r, err, "preview ranks")
		return
	}

	var req previewRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	order, err := ladder.Reorder(req.Order, req.MovedID, req.TargetIndex)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "preview ranks")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, orderResponse{Order: order})
}

// PUT /api/v1/ladders/{id}/ranks
func HandleCommitRanks(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "commit ranks")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	var req commitRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	if req.ExpectedVersion == nil {
		if raw := strings.TrimSpace(r.Header.Get("If-Match")); raw != "" {
			version, err := apiutil.ParseNonNegativeInt64Field(strings.Trim(raw, `"`), "If-Match")
			if err != nil {
				apiutil.WriteError(w, http.StatusBadRequest, err)
				return
			}
			req.ExpectedVersion = &version
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), ladderQueryTimeout)
	defer cancel()

	version, err := service.CommitRanks(ctx, authz.Caller(user), ladderID, req.Order, req.ExpectedVersion)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "commit ranks")
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, htmx.EventRanksCommitted)
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, commitResponse{RanksVersion: version})
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Ladder handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return false
	}
	return true
}
