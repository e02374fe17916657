// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/PickleLadder/internal/config"
	"github.com/codr1/PickleLadder/internal/db"
	"github.com/codr1/PickleLadder/internal/email"
	"github.com/codr1/PickleLadder/internal/ladder"
	"github.com/codr1/PickleLadder/internal/metrics"
	"github.com/codr1/PickleLadder/internal/ratelimit"
	"github.com/codr1/PickleLadder/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	configPath := flag.String("config", envOr("CONFIG_PATH", "config/app.yaml"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	appMetrics := metrics.New()

	svcOpts := []ladder.Option{ladder.WithObserver(appMetrics)}
	var notifier *email.MatchNotifier
	if cfg.Email.Enabled {
		client, err := email.NewSESClient(ctx, cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.FromAddress)
		if err != nil {
			return fmt.Errorf("create SES client: %w", err)
		}
		notifier = email.NewMatchNotifier(client, email.NotifierConfig{
			PhoneRegion: cfg.Contact.DefaultRegion,
			Location:    cfg.Location(),
			Observer:    appMetrics,
		})
		svcOpts = append(svcOpts, ladder.WithNotifier(notifier))
		log.Info().Str("region", cfg.Email.Region).Msg("Match emails enabled")
	} else {
		log.Info().Msg("Match emails disabled")
	}
	svc := ladder.NewService(database, svcOpts...)

	limiter := ratelimit.New(&ratelimit.Config{
		Cooldown:     cfg.RateLimit.MatchActionCooldown,
		MaxPerHour:   cfg.RateLimit.MatchActionMaxPerHour,
		MaxIPPerHour: cfg.RateLimit.MatchActionMaxIPPerHour,
	})
	defer limiter.Close()

	jobs, err := scheduler.New(cfg.Location())
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if _, err := scheduler.RegisterMembershipExpiryJob(jobs, svc, cfg.Jobs.MembershipExpiryCron, nil); err != nil {
		return fmt.Errorf("register membership expiry job: %w", err)
	}

	server, err := newServer(cfg, serverDeps{
		database: database,
		service:  svc,
		limiter:  limiter,
		metrics:  appMetrics,
	})
	if err != nil {
		return err
	}

	jobs.Start()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		var firstErr error
		if err := server.Shutdown(shutdownCtx); err != nil {
			firstErr = fmt.Errorf("shutdown error: %w", err)
		}
		if err := jobs.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if notifier != nil {
			notifier.Wait()
		}
		return firstErr
	})

	return g.Wait()
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
