// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/PickleLadder/internal/api"
	"github.com/codr1/PickleLadder/internal/api/auth"
	"github.com/codr1/PickleLadder/internal/api/ladders"
	"github.com/codr1/PickleLadder/internal/api/matches"
	"github.com/codr1/PickleLadder/internal/api/profile"
	"github.com/codr1/PickleLadder/internal/config"
	"github.com/codr1/PickleLadder/internal/db"
	"github.com/codr1/PickleLadder/internal/ladder"
	"github.com/codr1/PickleLadder/internal/metrics"
	"github.com/codr1/PickleLadder/internal/ratelimit"
)

type serverDeps struct {
	database *db.DB
	service  *ladder.Service
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
}

func newServer(cfg *config.Config, deps serverDeps) (*http.Server, error) {
	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("create token verifier: %w", err)
	}
	authn := auth.NewAuthenticator(verifier, deps.database.Queries, cfg.Auth.AdminSubjects)

	profile.InitHandlers(deps.database, cfg.Contact.DefaultRegion)
	ladders.InitHandlers(deps.service, cfg.Location())
	matches.InitHandlers(deps.service, matches.Config{
		Limiter:    deps.limiter,
		TrustProxy: cfg.RateLimit.TrustProxy,
		Location:   cfg.Location(),
	})

	router := http.NewServeMux()
	registerRoutes(router, cfg, deps.metrics)

	// Outermost last: request ids and logging wrap authentication.
	handler := api.ChainMiddleware(
		router,
		api.WithAuth(authn),
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
		deps.metrics.WithRequestMetrics,
	)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, nil
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, appMetrics *metrics.Metrics) {
	admin := func(h http.HandlerFunc) http.Handler {
		return api.WithAdmin(h)
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	if cfg.Features.EnableMetrics {
		mux.Handle("GET /metrics", appMetrics.Handler())
	}

	// Profile
	mux.HandleFunc("GET /api/v1/me", profile.HandleGetProfile)
	mux.HandleFunc("PUT /api/v1/me", profile.HandleUpdateProfile)

	// Ladders and standings
	mux.HandleFunc("GET /api/v1/ladders", ladders.HandleListLadders)
	mux.Handle("POST /api/v1/ladders", admin(ladders.HandleCreateLadder))
	mux.HandleFunc("GET /api/v1/ladders/{id}/standings", ladders.HandleStandings)
	mux.HandleFunc("POST /api/v1/ladders/{id}/members", ladders.HandleJoinLadder)
	mux.Handle("POST /api/v1/ladders/{id}/members/{user_id}/renew", admin(ladders.HandleRenewMembership))
	mux.HandleFunc("POST /api/v1/ladders/{id}/ranks/preview", ladders.HandlePreviewRanks)
	mux.Handle("PUT /api/v1/ladders/{id}/ranks", admin(ladders.HandleCommitRanks))

	// Matches
	mux.HandleFunc("GET /api/v1/ladders/{id}/matches", matches.HandleListLadderMatches)
	mux.Handle("POST /api/v1/ladders/{id}/matches", admin(matches.HandleCreateMatch))
	mux.HandleFunc("GET /api/v1/matches/{id}", matches.HandleGetMatch)
	mux.Handle("DELETE /api/v1/matches/{id}", admin(matches.HandleCancelMatch))
	mux.HandleFunc("POST /api/v1/matches/{id}/results", matches.HandleSubmitResult)
	mux.HandleFunc("POST /api/v1/matches/{id}/confirm", matches.HandleConfirmResult)
	mux.Handle("POST /api/v1/matches/{id}/force-complete", admin(matches.HandleForceComplete))
}
