package matches

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/codr1/PickleLadder/internal/api/apiutil"
	"github.com/codr1/PickleLadder/internal/api/authz"
	"github.com/codr1/PickleLadder/internal/api/htmx"
	"github.com/codr1/PickleLadder/internal/ladder"
	"github.com/codr1/PickleLadder/internal/ratelimit"
	"github.com/codr1/PickleLadder/internal/testutil"
)

type harness struct {
	mux      *http.ServeMux
	svc      *ladder.Service
	ladderID int64
	admin    *authz.AuthUser
	players  [4]*authz.AuthUser
}

func newHarness(t *testing.T, limiter *ratelimit.Limiter) *harness {
	t.Helper()

	database := testutil.NewTestDB(t)
	svc := ladder.NewService(database)
	InitHandlers(svc, Config{Limiter: limiter})
	t.Cleanup(func() { InitHandlers(nil, Config{}) })

	h := &harness{mux: http.NewServeMux(), svc: svc}
	h.mux.HandleFunc("GET /api/v1/ladders/{id}/matches", HandleListLadderMatches)
	h.mux.HandleFunc("POST /api/v1/ladders/{id}/matches", HandleCreateMatch)
	h.mux.HandleFunc("GET /api/v1/matches/{id}", HandleGetMatch)
	h.mux.HandleFunc("DELETE /api/v1/matches/{id}", HandleCancelMatch)
	h.mux.HandleFunc("POST /api/v1/matches/{id}/results", HandleSubmitResult)
	h.mux.HandleFunc("POST /api/v1/matches/{id}/confirm", HandleConfirmResult)
	h.mux.HandleFunc("POST /api/v1/matches/{id}/force-complete", HandleForceComplete)

	admin := testutil.CreateUser(t, database, "Ada", "Admin", true)
	h.admin = &authz.AuthUser{ID: admin.ID, IsAdmin: true}
	h.ladderID = testutil.CreateLadder(t, database, "Spring Doubles").ID

	names := [4][2]string{{"Alice", "Anders"}, {"Abe", "Archer"}, {"Bea", "Brooks"}, {"Ben", "Burke"}}
	for i, name := range names {
		user := testutil.CreateUser(t, database, name[0], name[1], false)
		testutil.AddMember(t, database, h.ladderID, user.ID)
		h.players[i] = &authz.AuthUser{ID: user.ID}
	}
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any, user *authz.AuthUser, hx bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	r := httptest.NewRequest(method, path, reader)
	r.RemoteAddr = "203.0.113.9:5000"
	if hx {
		r.Header.Set("HX-Request", "true")
	}
	if user != nil {
		r = r.WithContext(authz.ContextWithUser(r.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, r)
	return rec
}

func (h *harness) createMatch(t *testing.T) ladder.Match {
	t.Helper()

	ids := [4]int64{h.players[0].ID, h.players[1].ID, h.players[2].ID, h.players[3].ID}
	rec := h.do(t, http.MethodPost, matchesPath(h.ladderID), map[string]any{
		"weekNumber":  1,
		"playerIds":   ids,
		"scheduledAt": "2026-03-04T18:30:00Z",
	}, h.admin, false)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create match status = %d: %s", rec.Code, rec.Body.String())
	}
	return decodeMatch(t, rec)
}

func matchesPath(ladderID int64) string {
	return "/api/v1/ladders/" + itoa(ladderID) + "/matches"
}

func matchPath(matchID int64, suffix string) string {
	return "/api/v1/matches/" + itoa(matchID) + suffix
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func decodeMatch(t *testing.T, rec *httptest.ResponseRecorder) ladder.Match {
	t.Helper()

	var match ladder.Match
	if err := json.NewDecoder(rec.Body).Decode(&match); err != nil {
		t.Fatalf("decode match: %v", err)
	}
	return match
}

func (h *harness) scores(t *testing.T) map[int64]int64 {
	t.Helper()

	standings, err := h.svc.ListStandings(context.Background(), h.ladderID)
	if err != nil {
		t.Fatalf("list standings: %v", err)
	}
	scores := make(map[int64]int64, len(standings.Entries))
	for _, entry := range standings.Entries {
		scores[entry.UserID] = entry.Score
	}
	return scores
}

func TestAgreedResultsFinalizeMatch(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)
	if match.ScheduledAt == nil || !match.ScheduledAt.Equal(time.Date(2026, 3, 4, 18, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected scheduled time: %v", match.ScheduledAt)
	}

	rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{
		"score": "11-7, 11-9", "winner": "team_a",
	}, h.players[0], false)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit A status = %d: %s", rec.Code, rec.Body.String())
	}
	pending := decodeMatch(t, rec)
	if pending.Reconciliation.State != ladder.StateTeamPending || pending.Reconciliation.PendingTeam != ladder.TeamA {
		t.Fatalf("expected team_a pending, got %+v", pending.Reconciliation)
	}

	rec = h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{
		"team": "b", "score": "11-7,11-9", "winner": "a",
	}, h.players[2], false)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit B status = %d: %s", rec.Code, rec.Body.String())
	}
	done := decodeMatch(t, rec)
	if !done.Completed() {
		t.Fatalf("expected completed match, got status %s", done.Status)
	}

	scores := h.scores(t)
	want := map[int64]int64{
		h.players[0].ID: ladder.BaselineScore + ladder.WinPoints,
		h.players[1].ID: ladder.BaselineScore + ladder.WinPoints,
		h.players[2].ID: ladder.BaselineScore - ladder.LossPoints,
		h.players[3].ID: ladder.BaselineScore - ladder.LossPoints,
	}
	for id, score := range want {
		if scores[id] != score {
			t.Fatalf("user %d score = %d, want %d", id, scores[id], score)
		}
	}

	rec = h.do(t, http.MethodPost, matchPath(match.ID, "/confirm"), nil, h.players[3], false)
	if rec.Code != http.StatusConflict {
		t.Fatalf("confirm after completion status = %d, want 409", rec.Code)
	}
}

func TestConfirmWithEmptyBodyInfersTeam(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{
		"score": "9-11", "winner": "team_b",
	}, h.players[1], false); rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}

	rec := h.do(t, http.MethodPost, matchPath(match.ID, "/confirm"), nil, h.players[3], false)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm status = %d: %s", rec.Code, rec.Body.String())
	}
	confirmed := decodeMatch(t, rec)
	if !confirmed.Completed() || confirmed.TeamBResult == nil || confirmed.TeamBResult.SubmittedBy != h.players[3].ID {
		t.Fatalf("unexpected confirmed match: %+v", confirmed)
	}
}

func TestDisputeNeedsAdminForceComplete(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)

	h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, h.players[0], false)
	rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "7-11", "winner": "team_b"}, h.players[3], false)
	if disputed := decodeMatch(t, rec); disputed.Reconciliation.State != ladder.StateDispute {
		t.Fatalf("expected dispute, got %+v", disputed.Reconciliation)
	}

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/force-complete"), nil, h.players[0], false); rec.Code != http.StatusForbidden {
		t.Fatalf("player force-complete status = %d, want 403", rec.Code)
	}

	rec = h.do(t, http.MethodPost, matchPath(match.ID, "/force-complete"), nil, h.admin, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin force-complete status = %d: %s", rec.Code, rec.Body.String())
	}
	forced := decodeMatch(t, rec)
	if !forced.Completed() || forced.ForceCompletedBy == nil || *forced.ForceCompletedBy != h.admin.ID {
		t.Fatalf("unexpected forced match: %+v", forced)
	}
	if forced.TeamBResult == nil || forced.TeamBResult.Score != "11-7" {
		t.Fatalf("team A result should be copied onto team B: %+v", forced.TeamBResult)
	}
}

func TestCancelMatch(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)

	if rec := h.do(t, http.MethodDelete, matchPath(match.ID, ""), nil, h.players[0], false); rec.Code != http.StatusForbidden {
		t.Fatalf("player cancel status = %d, want 403", rec.Code)
	}
	if rec := h.do(t, http.MethodDelete, matchPath(match.ID, ""), nil, h.admin, false); rec.Code != http.StatusNoContent {
		t.Fatalf("admin cancel status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec := h.do(t, http.MethodGet, matchPath(match.ID, ""), nil, h.admin, false); rec.Code != http.StatusNotFound {
		t.Fatalf("get cancelled match status = %d, want 404", rec.Code)
	}

	second := h.createMatch(t)
	rec := h.do(t, http.MethodDelete, matchPath(second.ID, ""), nil, h.admin, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("htmx cancel status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("HX-Trigger"); got != htmx.EventMatchUpdated {
		t.Fatalf("HX-Trigger = %q, want %q", got, htmx.EventMatchUpdated)
	}
}

func TestSubmitValidationAndAuth(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, nil, false); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous submit status = %d, want 401", rec.Code)
	}

	rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-11", "winner": "team_a"}, h.players[0], false)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("tied score status = %d, want 400", rec.Code)
	}
	var body apiutil.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Field != "score" {
		t.Fatalf("expected score field error, got %+v (%v)", body, err)
	}

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, h.admin, false); rec.Code != http.StatusForbidden {
		t.Fatalf("non-player submit status = %d, want 403", rec.Code)
	}
	if rec := h.do(t, http.MethodPost, matchPath(match.ID+100, "/results"), map[string]string{"team": "team_a", "score": "11-7", "winner": "team_a"}, h.players[0], false); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown match status = %d, want 404", rec.Code)
	}
}

func TestMatchActionsAreRateLimited(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{Cooldown: time.Minute, MaxPerHour: 10, MaxIPPerHour: 100})
	defer limiter.Close()
	h := newHarness(t, limiter)
	match := h.createMatch(t)

	rejected := []map[string]string{
		{"score": "11-11", "winner": "team_a"},
		{"score": "11-7", "winner": "nobody"},
		{"team": "team_c", "score": "11-7", "winner": "team_a"},
	}
	for _, body := range rejected {
		if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), body, h.players[0], false); rec.Code != http.StatusBadRequest {
			t.Fatalf("invalid submit %v status = %d, want 400", body, rec.Code)
		}
	}

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, h.players[0], false); rec.Code != http.StatusOK {
		t.Fatalf("first valid submit status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := h.do(t, http.MethodPost, matchPath(match.ID, "/confirm"), nil, h.players[0], false)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("follow-up action status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After header")
	}

	if rec := h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "9-11", "winner": "team_b"}, h.players[2], false); rec.Code != http.StatusOK {
		t.Fatalf("other player submit status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminMatchActionsSkipRateLimit(t *testing.T) {
	limiter := ratelimit.New(&ratelimit.Config{Cooldown: time.Minute, MaxPerHour: 1, MaxIPPerHour: 100})
	defer limiter.Close()
	h := newHarness(t, limiter)
	disputed := h.createMatch(t)
	spare := h.createMatch(t)

	h.do(t, http.MethodPost, matchPath(disputed.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, h.players[0], false)
	h.do(t, http.MethodPost, matchPath(disputed.ID, "/results"), map[string]string{"score": "7-11", "winner": "team_b"}, h.players[3], false)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{name: "force complete", method: http.MethodPost, path: matchPath(disputed.ID, "/force-complete"), want: http.StatusOK},
		{name: "cancel", method: http.MethodDelete, path: matchPath(spare.ID, ""), want: http.StatusNoContent},
		{name: "force complete again", method: http.MethodPost, path: matchPath(disputed.ID, "/force-complete"), want: http.StatusConflict},
	}
	for _, tt := range tests {
		if rec := h.do(t, tt.method, tt.path, nil, h.admin, false); rec.Code != tt.want {
			t.Fatalf("%s status = %d, want %d: %s", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestGetMatchRendersCardForHTMX(t *testing.T) {
	h := newHarness(t, nil)
	match := h.createMatch(t)
	h.do(t, http.MethodPost, matchPath(match.ID, "/results"), map[string]string{"score": "11-7", "winner": "team_a"}, h.players[0], false)

	rec := h.do(t, http.MethodGet, matchPath(match.ID, ""), nil, h.players[3], true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	page := rec.Body.String()
	for _, want := range []string{"Alice Anders", "Ben Burke", "Awaiting confirmation", "Team A reported 11-7", "Team B: no result yet"} {
		if !strings.Contains(page, want) {
			t.Fatalf("card missing %q:\n%s", want, page)
		}
	}
}

func TestListLadderMatches(t *testing.T) {
	h := newHarness(t, nil)
	first := h.createMatch(t)

	rec := h.do(t, http.MethodGet, matchesPath(h.ladderID), nil, h.players[1], false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp matchListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Matches) != 1 || resp.Matches[0].ID != first.ID {
		t.Fatalf("unexpected matches: %+v", resp.Matches)
	}

	if rec := h.do(t, http.MethodGet, matchesPath(h.ladderID+50), nil, h.players[1], false); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown ladder status = %d, want 404", rec.Code)
	}
}
