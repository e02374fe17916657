// internal/api/matches/handlers.go
package matches

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/api/apiutil"
	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/api/htmx"
	"github.com/codr1/PickleLadder/internal/ladder"
	"github.com/codr1/PickleLadder/internal/ratelimit"
)

const (
	matchQueryTimeout = 5 * time.Second
	matchIDPathKey    = "id"
	ladderIDPathKey   = "id"
)

var (
	service    *ladder.Service
	limiter    *ratelimit.Limiter
	trustProxy bool
	location   = time.UTC
)

// Config carries the optional collaborators of the match handlers.
type Config struct {
	Limiter    *ratelimit.Limiter
	TrustProxy bool
	// Location interprets scheduled times given without an offset.
	Location *time.Location
}

type createMatchRequest struct {
	WeekNumber  int64    `json:"weekNumber"`
	PlayerIDs   [4]int64 `json:"playerIds"`
	ScheduledAt *string  `json:"scheduledAt"`
}

type submitResultRequest struct {
	Team   string `json:"team"`
	Score  string `json:"score"`
	Winner string `json:"winner"`
}

type confirmResultRequest struct {
	Team string `json:"team"`
}

type matchListResponse struct {
	Matches []ladder.Match `json:"matches"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *ladder.Service, cfg Config) {
	service = svc
	limiter = cfg.Limiter
	trustProxy = cfg.TrustProxy
	location = time.UTC
	if cfg.Location != nil {
		location = cfg.Location
	}
}

// GET /api/v1/ladders/{id}/matches
func HandleListLadderMatches(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireService(w, r); !ok {
		return
	}
	if _, err := authz.RequireUser(r.Context()); err != nil {
		apiutil.WriteLadderError(w, r, err, "list matches")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	matches, err := service.ListMatches(ctx, ladderID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "list matches")
		return
	}
	_ = apiutil.WriteJSON(w, http.StatusOK, matchListResponse{Matches: matches})
}

// POST /api/v1/ladders/{id}/matches
func HandleCreateMatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireService(w, r); !ok {
		return
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "create match")
		return
	}
	ladderID, err := apiutil.PathID(r, ladderIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	var req createMatchRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	scheduledAt, err := apiutil.OptionalTimeField(req.ScheduledAt, "scheduledAt", location)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := service.CreateMatch(ctx, authz.Caller(user), ladder.CreateMatchInput{
		LadderID:    ladderID,
		WeekNumber:  req.WeekNumber,
		PlayerIDs:   req.PlayerIDs,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "create match")
		return
	}

	_ = apiutil.WriteJSON(w, http.StatusCreated, match)
}

// GET /api/v1/matches/{id}
func HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireService(w, r); !ok {
		return
	}
	if _, err := authz.RequireUser(r.Context()); err != nil {
		apiutil.WriteLadderError(w, r, err, "load match")
		return
	}
	matchID, err := apiutil.PathID(r, matchIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := service.GetMatch(ctx, matchID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "load match")
		return
	}
	respondMatch(ctx, w, r, http.StatusOK, match)
}

// DELETE /api/v1/matches/{id}
func HandleCancelMatch(w http.ResponseWriter, r *http.Request) {
	user, matchID, ok := beginMatchAction(w, r, "cancel match")
	if !ok {
		return
	}
	if !allowMatchAction(w, r, user, "cancel match") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	if err := service.CancelMatch(ctx, authz.Caller(user), matchID); err != nil {
		apiutil.WriteLadderError(w, r, err, "cancel match")
		return
	}

	if htmx.IsRequest(r) {
		// htmx swaps the card out with the empty body.
		htmx.Trigger(w, htmx.EventMatchUpdated)
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/matches/{id}/results
func HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	user, matchID, ok := beginMatchAction(w, r, "submit result")
	if !ok {
		return
	}

	var req submitResultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return
	}
	winner, err := ladder.ParseTeam(req.Winner)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "submit result")
		return
	}
	if err := validateRequestTeam(req.Team); err != nil {
		apiutil.WriteLadderError(w, r, err, "submit result")
		return
	}
	if _, err := ladder.NormalizeScore(req.Score); err != nil {
		apiutil.WriteLadderError(w, r, err, "submit result")
		return
	}
	if !allowMatchAction(w, r, user, "submit result") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	team, err := resolveTeam(ctx, req.Team, matchID, user.ID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "submit result")
		return
	}

	match, err := service.SubmitTeamResult(ctx, authz.Caller(user), matchID, team, req.Score, winner)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "submit result")
		return
	}
	respondMatch(ctx, w, r, http.StatusOK, match)
}

// POST /api/v1/matches/{id}/confirm
func HandleConfirmResult(w http.ResponseWriter, r *http.Request) {
	user, matchID, ok := beginMatchAction(w, r, "confirm result")
	if !ok {
		return
	}

	var req confirmResultRequest
	if r.ContentLength != 0 {
		if err := apiutil.DecodeJSON(r, &req); err != nil {
			apiutil.WriteError(w, http.StatusBadRequest, err)
			return
		}
	}
	if err := validateRequestTeam(req.Team); err != nil {
		apiutil.WriteLadderError(w, r, err, "confirm result")
		return
	}
	if !allowMatchAction(w, r, user, "confirm result") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	team, err := resolveTeam(ctx, req.Team, matchID, user.ID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "confirm result")
		return
	}

	match, err := service.ConfirmOtherTeamResult(ctx, authz.Caller(user), matchID, team)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "confirm result")
		return
	}
	respondMatch(ctx, w, r, http.StatusOK, match)
}

// POST /api/v1/matches/{id}/force-complete
func HandleForceComplete(w http.ResponseWriter, r *http.Request) {
	user, matchID, ok := beginMatchAction(w, r, "force complete match")
	if !ok {
		return
	}
	if !allowMatchAction(w, r, user, "force complete match") {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), matchQueryTimeout)
	defer cancel()

	match, err := service.AdminForceComplete(ctx, authz.Caller(user), matchID)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "force complete match")
		return
	}

	respondMatch(ctx, w, r, http.StatusOK, match)
}

// beginMatchAction authenticates and parses the match id for a mutating
// match action.
func beginMatchAction(w http.ResponseWriter, r *http.Request, action string) (*authz.AuthUser, int64, bool) {
	if _, ok := requireService(w, r); !ok {
		return nil, 0, false
	}
	user, err := authz.RequireUser(r.Context())
	if err != nil {
		apiutil.WriteLadderError(w, r, err, action)
		return nil, 0, false
	}
	matchID, err := apiutil.PathID(r, matchIDPathKey)
	if err != nil {
		apiutil.WriteError(w, http.StatusBadRequest, err)
		return nil, 0, false
	}
	return user, matchID, true
}

// allowMatchAction applies the per-caller rate limit. Handlers call it once
// the request has been validated, so rejected input does not spend quota.
// Administrators are not limited.
func allowMatchAction(w http.ResponseWriter, r *http.Request, user *authz.AuthUser, action string) bool {
	if limiter == nil || user.IsAdmin {
		return true
	}
	ip := ratelimit.ClientIP(r, trustProxy)
	if result := limiter.Allow(user.ID, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(r.Context(), action, user.ID, ip, result.Reason)
		apiutil.WriteRateLimited(w, result)
		return false
	}
	return true
}

func validateRequestTeam(raw string) error {
	if raw == "" {
		return nil
	}
	_, err := ladder.ParseTeam(raw)
	return err
}

// resolveTeam parses raw, or when it is blank infers the caller's team.
// Only players may submit or confirm, so a blank team from anyone else is
// ErrNotOnTeam.
func resolveTeam(ctx context.Context, raw string, matchID, userID int64) (ladder.Team, error) {
	if raw != "" {
		return ladder.ParseTeam(raw)
	}
	match, err := service.GetMatch(ctx, matchID)
	if err != nil {
		return "", err
	}
	team, ok := match.TeamOf(userID)
	if !ok {
		return "", ladder.ErrNotOnTeam
	}
	return team, nil
}

// respondMatch writes match as JSON, or as a match card for htmx requests.
func respondMatch(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, match ladder.Match) {
	if !htmx.IsRequest(r) {
		_ = apiutil.WriteJSON(w, status, match)
		return
	}

	players, err := service.MatchParticipants(ctx, match)
	if err != nil {
		apiutil.WriteLadderError(w, r, err, "load match players")
		return
	}
	if r.Method != http.MethodGet {
		htmx.Trigger(w, htmx.EventMatchUpdated)
	}
	apiutil.RenderHTMLComponent(r.Context(), w, matchCard(match, players, location), "Failed to render match card", "Failed to render match")
}

func requireService(w http.ResponseWriter, r *http.Request) (*ladder.Service, bool) {
	if service == nil {
		log.Ctx(r.Context()).Error().Msg("Match handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return service, true
}
