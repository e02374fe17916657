// cmd/dbtools/migrate/main.go
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/config"
	"github.com/codr1/PickleLadder/internal/db"
)

func main() {
	var (
		configPath     = flag.String("config", "", "Path to app.yaml; its database filename is used when -db is empty")
		dbPath         = flag.String("db", "", "Path to SQLite database")
		migrationsPath = flag.String("migrations", "", "Migrations directory; the embedded set is used when empty")
		command        = flag.String("command", "", "Command to run (up, down, version, steps, force)")
		arg            = flag.String("n", "", "Step count for steps, version for force")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dbPath == "" && *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
		}
		*dbPath = cfg.Database.Filename
	}
	if *dbPath == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	absDB, err := filepath.Abs(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database path")
	}
	if err := os.MkdirAll(filepath.Dir(absDB), 0755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create database directory")
	}

	m, err := newMigrator(absDB, *migrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	logger := log.With().Str("db", absDB).Str("command", *command).Logger()
	if err := execute(m, *command, *arg); err != nil {
		logger.Fatal().Err(err).Msg("Migration command failed")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info().Msg("Database has no migrations applied")
	case err != nil:
		logger.Fatal().Err(err).Msg("Get version failed")
	default:
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migration command completed")
	}
}

func newMigrator(dbPath, migrationsPath string) (*migrate.Migrate, error) {
	if migrationsPath != "" {
		absMigrations, err := filepath.Abs(migrationsPath)
		if err != nil {
			return nil, fmt.Errorf("invalid migrations path: %w", err)
		}
		if _, err := os.Stat(absMigrations); err != nil {
			return nil, fmt.Errorf("migrations directory: %w", err)
		}
		return migrate.New("file://"+absMigrations, "sqlite3://"+dbPath)
	}

	sqlDB, err := sql.Open("sqlite3", dbPath+"?_fk=1")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db.NewMigrator(sqlDB)
}

func execute(m *migrate.Migrate, command, arg string) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "version":
		return nil
	case "steps":
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return fmt.Errorf("steps needs a non-zero -n, got %q", arg)
		}
		return ignoreNoChange(m.Steps(n))
	case "force":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force needs a version in -n, got %q", arg)
		}
		return m.Force(v)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
