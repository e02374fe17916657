package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

// Reorder moves movedID to targetIndex and returns the new order. The input
// slice is never modified and nothing is persisted.
func Reorder(order []int64, movedID int64, targetIndex int) ([]int64, error) {
	from := -1
	seen := make(map[int64]bool, len(order))
	for i, id := range order {
		if seen[id] {
			return nil, invalid("order", "membership %d appears more than once", id)
		}
		seen[id] = true
		if id == movedID {
			from = i
		}
	}
	if from < 0 {
		return nil, invalid("movedId", "membership %d is not in the order", movedID)
	}
	if targetIndex < 0 || targetIndex >= len(order) {
		return nil, invalid("targetIndex", "must be between 0 and %d", len(order)-1)
	}

	next := make([]int64, 0, len(order))
	next = append(next, order[:from]...)
	next = append(next, order[from+1:]...)
	return slices.Insert(next, targetIndex, movedID), nil
}

// Standing is one active membership as shown on the ladder.
type Standing struct {
	MembershipID int64      `json:"membershipId"`
	UserID       int64      `json:"userId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Rank         *int64     `json:"rank,omitempty"`
	Score        int64      `json:"score"`
	WinStreak    int64      `json:"winStreak"`
	Trend        string     `json:"trend"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

// Standings is a consistent snapshot of a ladder's active memberships.
// RanksVersion is passed back to CommitRanks to detect concurrent edits.
type Standings struct {
	LadderID     int64      `json:"ladderId"`
	LadderName   string     `json:"ladderName"`
	RanksVersion int64      `json:"ranksVersion"`
	Entries      []Standing `json:"entries"`
}

// Order returns the membership ids in rank order.
func (s Standings) Order() []int64 {
	order := make([]int64, 0, len(s.Entries))
	for _, e := range s.Entries {
		order = append(order, e.MembershipID)
	}
	return order
}

// ListStandings returns the ladder's active memberships ordered by rank with
// unranked memberships last. It reads without a transaction. The ranks
// version is loaded before the rows, so a concurrent rank commit can only
// make the returned version older than the rows and a commit built on it
// fails with ErrStaleRanks.
func (s *Service) ListStandings(ctx context.Context, ladderID int64) (Standings, error) {
	l, err := s.db.Queries.GetLadder(ctx, ladderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Standings{}, ErrLadderNotFound
		}
		return Standings{}, fmt.Errorf("load ladder: %w", err)
	}
	rows, err := s.db.Queries.ListLadderStandings(ctx, ladderID)
	if err != nil {
		return Standings{}, fmt.Errorf("list standings: %w", err)
	}

	standings := Standings{
		LadderID:     l.ID,
		LadderName:   l.Name,
		RanksVersion: l.RanksVersion,
		Entries:      make([]Standing, 0, len(rows)),
	}
	for _, row := range rows {
		entry := Standing{
			MembershipID: row.ID,
			UserID:       row.UserID,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Score:        row.Score,
			WinStreak:    row.WinStreak,
			Trend:        row.Trend,
			ExpiresAt:    fromNullTime(row.ExpiresAt),
		}
		if row.Rank.Valid {
			rank := row.Rank.Int64
			entry.Rank = &rank
		}
		standings.Entries = append(standings.Entries, entry)
	}
	return standings, nil
}

// CommitRanks persists finalOrder as ranks 1..N. finalOrder must be a
// permutation of the ladder's active memberships. When expectedVersion is
// set and the ladder's ranks changed since it was read, the commit is
// rejected with ErrStaleRanks. It returns the new ranks version.
func (s *Service) CommitRanks(ctx context.Context, caller Caller, ladderID int64, finalOrder []int64, expectedVersion *int64) (int64, error) {
	if !caller.IsAdmin {
		return 0, ErrForbidden
	}

	var version int64
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		l, err := tx.Queries.GetLadder(ctx, ladderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLadderNotFound
			}
			return fmt.Errorf("load ladder: %w", err)
		}
		if expectedVersion != nil && *expectedVersion != l.RanksVersion {
			return ErrStaleRanks
		}

		active, err := tx.Queries.ListActiveMembershipIDs(ctx, ladderID)
		if err != nil {
			return fmt.Errorf("list active memberships: %w", err)
		}
		if err := checkPermutation(active, finalOrder); err != nil {
			return err
		}

		version, err = writeRanks(ctx, tx.Queries, ladderID, finalOrder)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.observer.RanksCommitted()
	logger(ctx).Info().
		Int64("ladder_id", ladderID).
		Int64("admin_id", caller.UserID).
		Int("memberships", len(finalOrder)).
		Int64("ranks_version", version).
		Msg("Ladder ranks committed")
	return version, nil
}

func checkPermutation(active, order []int64) error {
	if len(order) != len(active) {
		return invalid("order", "expected %d memberships, got %d", len(active), len(order))
	}
	want := make(map[int64]bool, len(active))
	for _, id := range active {
		want[id] = true
	}
	seen := make(map[int64]bool, len(order))
	for _, id := range order {
		if seen[id] {
			return invalid("order", "membership %d appears more than once", id)
		}
		if !want[id] {
			return invalid("order", "membership %d is not an active member of the ladder", id)
		}
		seen[id] = true
	}
	return nil
}

// writeRanks clears the ladder's active ranks and assigns position+1 to each
// membership in order. Clearing first keeps the unique rank index satisfied
// while ranks move. It bumps and returns the ladder's ranks version.
func writeRanks(ctx context.Context, q *dbgen.Queries, ladderID int64, order []int64) (int64, error) {
	if err := q.ClearActiveRanks(ctx, ladderID); err != nil {
		return 0, fmt.Errorf("clear ranks: %w", err)
	}
	for i, id := range order {
		rows, err := q.SetMembershipRank(ctx, dbgen.SetMembershipRankParams{
			Rank:     sql.NullInt64{Int64: int64(i + 1), Valid: true},
			ID:       id,
			LadderID: ladderID,
		})
		if err != nil {
			return 0, fmt.Errorf("set rank for membership %d: %w", id, err)
		}
		if rows != 1 {
			return 0, fmt.Errorf("set rank for membership %d: %w", id, ErrMembershipNotFound)
		}
	}
	version, err := q.BumpLadderRanksVersion(ctx, ladderID)
	if err != nil {
		return 0, fmt.Errorf("bump ranks version: %w", err)
	}
	return version, nil
}
