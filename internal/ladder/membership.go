package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

type Ladder struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	IsActive     bool       `json:"isActive"`
	SeasonEndsAt *time.Time `json:"seasonEndsAt,omitempty"`
	RanksVersion int64      `json:"ranksVersion"`
}

func ladderFromRow(row dbgen.Ladder) Ladder {
	return Ladder{
		ID:           row.ID,
		Name:         row.Name,
		IsActive:     row.IsActive,
		SeasonEndsAt: fromNullTime(row.SeasonEndsAt),
		RanksVersion: row.RanksVersion,
	}
}

type Membership struct {
	ID        int64      `json:"id"`
	LadderID  int64      `json:"ladderId"`
	UserID    int64      `json:"userId"`
	Rank      *int64     `json:"rank,omitempty"`
	Score     int64      `json:"score"`
	WinStreak int64      `json:"winStreak"`
	Trend     string     `json:"trend"`
	IsActive  bool       `json:"isActive"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func membershipFromRow(row dbgen.LadderMembership) Membership {
	m := Membership{
		ID:        row.ID,
		LadderID:  row.LadderID,
		UserID:    row.UserID,
		Score:     row.Score,
		WinStreak: row.WinStreak,
		Trend:     row.Trend,
		IsActive:  row.IsActive,
		ExpiresAt: fromNullTime(row.ExpiresAt),
	}
	if row.Rank.Valid {
		rank := row.Rank.Int64
		m.Rank = &rank
	}
	return m
}

// CreateLadder adds a new active ladder. Names are unique.
func (s *Service) CreateLadder(ctx context.Context, caller Caller, name string, seasonEndsAt *time.Time) (Ladder, error) {
	if !caller.IsAdmin {
		return Ladder{}, ErrForbidden
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Ladder{}, invalid("name", "is required")
	}
	if seasonEndsAt != nil && !seasonEndsAt.After(s.now()) {
		return Ladder{}, invalid("seasonEndsAt", "must be in the future")
	}

	row, err := s.db.Queries.CreateLadder(ctx, dbgen.CreateLadderParams{
		Name:         name,
		SeasonEndsAt: toNullTime(seasonEndsAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return Ladder{}, ErrLadderExists
		}
		return Ladder{}, fmt.Errorf("create ladder: %w", err)
	}

	logger(ctx).Info().Int64("ladder_id", row.ID).Str("name", row.Name).Msg("Ladder created")
	return ladderFromRow(row), nil
}

func (s *Service) GetLadder(ctx context.Context, ladderID int64) (Ladder, error) {
	row, err := s.db.Queries.GetLadder(ctx, ladderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ladder{}, ErrLadderNotFound
		}
		return Ladder{}, fmt.Errorf("load ladder: %w", err)
	}
	return ladderFromRow(row), nil
}

func (s *Service) ListLadders(ctx context.Context) ([]Ladder, error) {
	rows, err := s.db.Queries.ListLadders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ladders: %w", err)
	}
	ladders := make([]Ladder, 0, len(rows))
	for _, row := range rows {
		ladders = append(ladders, ladderFromRow(row))
	}
	return ladders, nil
}

// JoinLadder enrolls userID at the bottom of the ladder. Users may join
// themselves; administrators may enroll anyone. Only an administrator may
// bring back a lapsed membership, which keeps its score and streak. Joining
// is closed once the ladder's season has ended.
func (s *Service) JoinLadder(ctx context.Context, caller Caller, ladderID, userID int64) (Membership, error) {
	if caller.UserID != userID && !caller.IsAdmin {
		return Membership{}, ErrForbidden
	}

	var joined dbgen.LadderMembership
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		l, err := tx.Queries.GetLadder(ctx, ladderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLadderNotFound
			}
			return fmt.Errorf("load ladder: %w", err)
		}
		if !l.IsActive {
			return ErrLadderInactive
		}
		if l.SeasonEndsAt.Valid && !l.SeasonEndsAt.Time.After(s.now()) {
			return ErrSeasonEnded
		}
		if _, err := tx.Queries.GetUserByID(ctx, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}

		bottom, err := nextRank(ctx, tx.Queries, ladderID)
		if err != nil {
			return err
		}

		existing, err := tx.Queries.GetMembership(ctx, dbgen.GetMembershipParams{LadderID: ladderID, UserID: userID})
		switch {
		case err == nil && existing.IsActive:
			return ErrAlreadyMember
		case err == nil:
			if !caller.IsAdmin {
				return ErrForbidden
			}
			joined, err = tx.Queries.ReactivateMembership(ctx, dbgen.ReactivateMembershipParams{
				Rank:      bottom,
				ExpiresAt: l.SeasonEndsAt,
				ID:        existing.ID,
			})
			if err != nil {
				return fmt.Errorf("reactivate membership: %w", err)
			}
			return nil
		case errors.Is(err, sql.ErrNoRows):
			joined, err = tx.Queries.CreateMembership(ctx, dbgen.CreateMembershipParams{
				LadderID:  ladderID,
				UserID:    userID,
				Rank:      bottom,
				ExpiresAt: l.SeasonEndsAt,
			})
			if err != nil {
				return fmt.Errorf("create membership: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("load membership: %w", err)
		}
	})
	if err != nil {
		return Membership{}, err
	}

	logger(ctx).Info().
		Int64("ladder_id", ladderID).
		Int64("user_id", userID).
		Int64("rank", joined.Rank.Int64).
		Msg("Ladder membership started")
	return membershipFromRow(joined), nil
}

// RenewMembership moves a membership's expiry to expiresAt. A membership that
// has already lapsed is reactivated at the bottom of the ladder.
func (s *Service) RenewMembership(ctx context.Context, caller Caller, ladderID, userID int64, expiresAt time.Time) (Membership, error) {
	if !caller.IsAdmin {
		return Membership{}, ErrForbidden
	}
	if !expiresAt.After(s.now()) {
		return Membership{}, invalid("expiresAt", "must be in the future")
	}
	expiry := toNullTime(&expiresAt)

	var renewed dbgen.LadderMembership
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		existing, err := tx.Queries.GetMembership(ctx, dbgen.GetMembershipParams{LadderID: ladderID, UserID: userID})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMembershipNotFound
			}
			return fmt.Errorf("load membership: %w", err)
		}

		if existing.IsActive {
			renewed, err = tx.Queries.UpdateMembershipExpiry(ctx, dbgen.UpdateMembershipExpiryParams{
				ExpiresAt: expiry,
				ID:        existing.ID,
			})
			if err != nil {
				return fmt.Errorf("update membership expiry: %w", err)
			}
			return nil
		}

		bottom, err := nextRank(ctx, tx.Queries, ladderID)
		if err != nil {
			return err
		}
		renewed, err = tx.Queries.ReactivateMembership(ctx, dbgen.ReactivateMembershipParams{
			Rank:      bottom,
			ExpiresAt: expiry,
			ID:        existing.ID,
		})
		if err != nil {
			return fmt.Errorf("reactivate membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return Membership{}, err
	}

	logger(ctx).Info().
		Int64("ladder_id", ladderID).
		Int64("user_id", userID).
		Time("expires_at", expiry.Time).
		Msg("Ladder membership renewed")
	return membershipFromRow(renewed), nil
}

// DeactivateExpired deactivates every active membership whose expiry is at or
// before now, then compacts the remaining ranks of each affected ladder to
// 1..N in their existing order. It returns the number of memberships
// deactivated.
func (s *Service) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := sql.NullTime{Time: now.UTC().Truncate(time.Second), Valid: true}

	deactivated := 0
	var ladders []int64
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		expired, err := tx.Queries.ListExpiredMemberships(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("list expired memberships: %w", err)
		}

		touched := make(map[int64]bool)
		for _, m := range expired {
			rows, err := tx.Queries.DeactivateMembership(ctx, m.ID)
			if err != nil {
				return fmt.Errorf("deactivate membership %d: %w", m.ID, err)
			}
			deactivated += int(rows)
			if rows > 0 && !touched[m.LadderID] {
				touched[m.LadderID] = true
				ladders = append(ladders, m.LadderID)
			}
		}

		for _, ladderID := range ladders {
			order, err := tx.Queries.ListActiveMembershipIDs(ctx, ladderID)
			if err != nil {
				return fmt.Errorf("list active memberships: %w", err)
			}
			if _, err := writeRanks(ctx, tx.Queries, ladderID, order); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if deactivated > 0 {
		s.observer.MembershipsDeactivated(deactivated)
		logger(ctx).Info().
			Int("deactivated", deactivated).
			Int("ladders", len(ladders)).
			Msg("Expired ladder memberships deactivated")
	}
	return deactivated, nil
}

func nextRank(ctx context.Context, q *dbgen.Queries, ladderID int64) (sql.NullInt64, error) {
	maxRank, err := q.GetMaxActiveRank(ctx, ladderID)
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("load max rank: %w", err)
	}
	return sql.NullInt64{Int64: maxRank + 1, Valid: true}, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
