package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

type CreateMatchInput struct {
	LadderID    int64
	WeekNumber  int64
	PlayerIDs   [4]int64
	ScheduledAt *time.Time
}

// CreateMatch schedules a doubles match between four active members of a
// ladder and notifies the players once the match is stored.
func (s *Service) CreateMatch(ctx context.Context, caller Caller, in CreateMatchInput) (Match, error) {
	if !caller.IsAdmin {
		return Match{}, ErrForbidden
	}
	if in.WeekNumber < 1 {
		return Match{}, invalid("weekNumber", "must be at least 1")
	}
	seen := make(map[int64]bool, len(in.PlayerIDs))
	for i, id := range in.PlayerIDs {
		if id <= 0 {
			return Match{}, invalid("playerIds", "player %d is missing", i+1)
		}
		if seen[id] {
			return Match{}, invalid("playerIds", "user %d appears more than once", id)
		}
		seen[id] = true
	}

	var created dbgen.Match
	var ladderName string
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		l, err := tx.Queries.GetLadder(ctx, in.LadderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrLadderNotFound
			}
			return fmt.Errorf("load ladder: %w", err)
		}
		if !l.IsActive {
			return ErrLadderInactive
		}
		ladderName = l.Name

		for _, id := range in.PlayerIDs {
			membership, err := tx.Queries.GetMembership(ctx, dbgen.GetMembershipParams{LadderID: in.LadderID, UserID: id})
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("load membership: %w", err)
			}
			if err != nil || !membership.IsActive {
				return invalid("playerIds", "user %d is not an active member of the ladder", id)
			}
		}

		created, err = tx.Queries.CreateMatch(ctx, dbgen.CreateMatchParams{
			LadderID:    in.LadderID,
			WeekNumber:  in.WeekNumber,
			Player1ID:   in.PlayerIDs[0],
			Player2ID:   in.PlayerIDs[1],
			Player3ID:   in.PlayerIDs[2],
			Player4ID:   in.PlayerIDs[3],
			ScheduledAt: toNullTime(in.ScheduledAt),
		})
		if err != nil {
			return fmt.Errorf("create match: %w", err)
		}
		return nil
	})
	if err != nil {
		return Match{}, err
	}

	match := matchFromRow(created)
	logger(ctx).Info().
		Int64("match_id", match.ID).
		Int64("ladder_id", match.LadderID).
		Int64("week_number", match.WeekNumber).
		Msg("Match scheduled")

	s.notify(ctx, match, ladderName, s.notifier.MatchScheduled)
	return match, nil
}

// GetMatch returns a match with its derived reconciliation status.
func (s *Service) GetMatch(ctx context.Context, matchID int64) (Match, error) {
	row, err := s.db.Queries.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrMatchNotFound
		}
		return Match{}, fmt.Errorf("load match: %w", err)
	}
	return matchFromRow(row), nil
}

// ListMatches returns a ladder's matches, newest week first.
func (s *Service) ListMatches(ctx context.Context, ladderID int64) ([]Match, error) {
	if _, err := s.db.Queries.GetLadder(ctx, ladderID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLadderNotFound
		}
		return nil, fmt.Errorf("load ladder: %w", err)
	}
	rows, err := s.db.Queries.ListLadderMatches(ctx, ladderID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	matches := make([]Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, matchFromRow(row))
	}
	return matches, nil
}

// MatchParticipants loads the four players of match in slot order: team A
// first, then team B.
func (s *Service) MatchParticipants(ctx context.Context, match Match) ([4]Participant, error) {
	players, err := loadParticipants(ctx, s.db.Queries, match.PlayerIDs())
	if err != nil {
		return players, fmt.Errorf("load match players: %w", err)
	}
	return players, nil
}

// SubmitTeamResult records team's result. When the other team has already
// submitted the same score and winner, the match is finalized in the same
// transaction.
func (s *Service) SubmitTeamResult(ctx context.Context, caller Caller, matchID int64, team Team, score string, winner Team) (Match, error) {
	if !team.Valid() {
		return Match{}, invalid("team", "must be team_a or team_b")
	}
	if !winner.Valid() {
		return Match{}, invalid("winner", "must be team_a or team_b")
	}
	normalized, err := NormalizeScore(score)
	if err != nil {
		return Match{}, err
	}

	var result Match
	finalized := false
	err = s.db.RunInTx(ctx, func(tx *db.DB) error {
		match, err := loadOpenMatch(ctx, tx.Queries, matchID)
		if err != nil {
			return err
		}
		if err := requireOnTeam(match, caller, team); err != nil {
			return err
		}
		if match.Result(team) != nil {
			return ErrAlreadySubmitted
		}

		sub := Submission{Score: normalized, Winner: winner, SubmittedBy: caller.UserID, SubmittedAt: s.stamp()}
		if err := writeSubmission(ctx, tx.Queries, matchID, team, sub); err != nil {
			return err
		}

		result, finalized, err = s.finalizeIfAgreed(ctx, tx.Queries, matchID)
		return err
	})
	if err != nil {
		return Match{}, err
	}

	s.observer.ResultRecorded("submit")
	if finalized {
		s.observer.MatchFinalized(false)
	}
	logger(ctx).Info().
		Int64("match_id", matchID).
		Str("team", string(team)).
		Int64("submitted_by", caller.UserID).
		Str("state", string(result.Reconciliation.State)).
		Bool("finalized", finalized).
		Msg("Match result submitted")
	return result, nil
}

// ConfirmOtherTeamResult copies the other team's submitted result onto team,
// attributed to the caller, and finalizes the match.
func (s *Service) ConfirmOtherTeamResult(ctx context.Context, caller Caller, matchID int64, team Team) (Match, error) {
	if !team.Valid() {
		return Match{}, invalid("team", "must be team_a or team_b")
	}

	var result Match
	finalized := false
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		match, err := loadOpenMatch(ctx, tx.Queries, matchID)
		if err != nil {
			return err
		}
		if err := requireOnTeam(match, caller, team); err != nil {
			return err
		}
		if match.Result(team) != nil {
			return ErrAlreadySubmitted
		}
		other := match.Result(team.Other())
		if other == nil {
			return ErrNothingToConfirm
		}

		sub := Submission{
			Score:       other.Score,
			Winner:      other.Winner,
			SubmittedBy: caller.UserID,
			SubmittedAt: s.stamp(),
		}
		if err := writeSubmission(ctx, tx.Queries, matchID, team, sub); err != nil {
			return err
		}

		result, finalized, err = s.finalizeIfAgreed(ctx, tx.Queries, matchID)
		return err
	})
	if err != nil {
		return Match{}, err
	}

	s.observer.ResultRecorded("confirm")
	if finalized {
		s.observer.MatchFinalized(false)
	}
	logger(ctx).Info().
		Int64("match_id", matchID).
		Str("team", string(team)).
		Int64("confirmed_by", caller.UserID).
		Msg("Match result confirmed")
	return result, nil
}

// FinalizeMatch completes an agreed match and applies the standings update.
// It reports false without error when the match was already completed, so
// repeated calls never reapply standings.
func (s *Service) FinalizeMatch(ctx context.Context, matchID int64) (bool, error) {
	finalized := false
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		row, err := tx.Queries.GetMatch(ctx, matchID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMatchNotFound
			}
			return fmt.Errorf("load match: %w", err)
		}
		match := matchFromRow(row)
		if match.Completed() {
			return nil
		}
		if match.Reconciliation.State != StateAgreed {
			return ErrNotAgreed
		}
		finalized, err = s.finalize(ctx, tx.Queries, match, match.TeamAResult.Winner)
		return err
	})
	if err != nil {
		return false, err
	}
	if finalized {
		s.observer.MatchFinalized(false)
	}
	return finalized, nil
}

// AdminForceComplete resolves a disputed or pending match. Team A's
// submission is authoritative when present, otherwise team B's. Both teams'
// score and winner are overwritten with it, and submitter fields are filled
// from it only where a team never submitted.
func (s *Service) AdminForceComplete(ctx context.Context, caller Caller, matchID int64) (Match, error) {
	if !caller.IsAdmin {
		return Match{}, ErrForbidden
	}

	var result Match
	var source Team
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		match, err := loadOpenMatch(ctx, tx.Queries, matchID)
		if err != nil {
			return err
		}

		var authoritative *Submission
		switch {
		case match.TeamAResult != nil:
			authoritative, source = match.TeamAResult, TeamA
		case match.TeamBResult != nil:
			authoritative, source = match.TeamBResult, TeamB
		default:
			return ErrNoSubmission
		}

		rows, err := tx.Queries.OverwriteMatchResults(ctx, dbgen.OverwriteMatchResultsParams{
			Score:            sql.NullString{String: authoritative.Score, Valid: true},
			Winner:           sql.NullString{String: string(authoritative.Winner), Valid: true},
			SubmittedBy:      sql.NullInt64{Int64: authoritative.SubmittedBy, Valid: true},
			SubmittedAt:      sql.NullTime{Time: authoritative.SubmittedAt, Valid: true},
			ForceCompletedBy: sql.NullInt64{Int64: caller.UserID, Valid: true},
			ID:               matchID,
		})
		if err != nil {
			return fmt.Errorf("overwrite results: %w", err)
		}
		if rows == 0 {
			return ErrMatchCompleted
		}

		if _, err := s.finalize(ctx, tx.Queries, match, authoritative.Winner); err != nil {
			return err
		}
		result, err = reloadMatch(ctx, tx.Queries, matchID)
		return err
	})
	if err != nil {
		return Match{}, err
	}

	s.observer.MatchFinalized(true)
	logger(ctx).Info().
		Int64("match_id", matchID).
		Int64("admin_id", caller.UserID).
		Str("source_team", string(source)).
		Msg("Match force-completed")
	return result, nil
}

// CancelMatch deletes a match that has not been completed and notifies its
// players. Standings are untouched.
func (s *Service) CancelMatch(ctx context.Context, caller Caller, matchID int64) error {
	if !caller.IsAdmin {
		return ErrForbidden
	}

	var cancelled Match
	var ladderName string
	err := s.db.RunInTx(ctx, func(tx *db.DB) error {
		match, err := loadOpenMatch(ctx, tx.Queries, matchID)
		if err != nil {
			return err
		}
		rows, err := tx.Queries.DeleteScheduledMatch(ctx, matchID)
		if err != nil {
			return fmt.Errorf("delete match: %w", err)
		}
		if rows == 0 {
			return ErrMatchCompleted
		}
		cancelled = match
		if l, err := tx.Queries.GetLadder(ctx, match.LadderID); err == nil {
			ladderName = l.Name
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.observer.MatchCancelled()
	logger(ctx).Info().
		Int64("match_id", matchID).
		Int64("admin_id", caller.UserID).
		Msg("Match cancelled")

	s.notify(ctx, cancelled, ladderName, s.notifier.MatchCancelled)
	return nil
}

// finalizeIfAgreed reloads the match and finalizes it when both submissions agree.
func (s *Service) finalizeIfAgreed(ctx context.Context, q *dbgen.Queries, matchID int64) (Match, bool, error) {
	match, err := reloadMatch(ctx, q, matchID)
	if err != nil {
		return Match{}, false, err
	}
	if match.Reconciliation.State != StateAgreed {
		return match, false, nil
	}
	finalized, err := s.finalize(ctx, q, match, match.TeamAResult.Winner)
	if err != nil {
		return Match{}, false, err
	}
	match, err = reloadMatch(ctx, q, matchID)
	return match, finalized, err
}

// finalize marks the match completed and applies the standings update. The
// completion write only matches rows that are not yet completed, so the
// standings update runs at most once per match. Callers must run it inside
// the transaction that made the match eligible.
func (s *Service) finalize(ctx context.Context, q *dbgen.Queries, match Match, winner Team) (bool, error) {
	completedAt := s.stamp()
	rows, err := q.CompleteMatch(ctx, dbgen.CompleteMatchParams{
		CompletedAt: sql.NullTime{Time: completedAt, Valid: true},
		ID:          match.ID,
	})
	if err != nil {
		return false, fmt.Errorf("complete match: %w", err)
	}
	if rows == 0 {
		return false, nil
	}
	if err := applyStandings(ctx, q, match, winner); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) notify(ctx context.Context, match Match, ladderName string, send func(context.Context, MatchNotice)) {
	players, err := loadParticipants(ctx, s.db.Queries, match.PlayerIDs())
	if err != nil {
		logger(ctx).Error().Err(err).Int64("match_id", match.ID).Msg("Failed to load players for match notification")
		return
	}
	send(ctx, MatchNotice{
		MatchID:     match.ID,
		LadderID:    match.LadderID,
		LadderName:  ladderName,
		WeekNumber:  match.WeekNumber,
		ScheduledAt: match.ScheduledAt,
		Players:     players,
	})
}

func loadOpenMatch(ctx context.Context, q *dbgen.Queries, matchID int64) (Match, error) {
	match, err := reloadMatch(ctx, q, matchID)
	if err != nil {
		return Match{}, err
	}
	if match.Completed() {
		return Match{}, ErrMatchCompleted
	}
	return match, nil
}

func reloadMatch(ctx context.Context, q *dbgen.Queries, matchID int64) (Match, error) {
	row, err := q.GetMatch(ctx, matchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrMatchNotFound
		}
		return Match{}, fmt.Errorf("load match: %w", err)
	}
	return matchFromRow(row), nil
}

func requireOnTeam(match Match, caller Caller, team Team) error {
	if onTeam, ok := match.TeamOf(caller.UserID); !ok || onTeam != team {
		return ErrNotOnTeam
	}
	return nil
}

func writeSubmission(ctx context.Context, q *dbgen.Queries, matchID int64, team Team, sub Submission) error {
	score := sql.NullString{String: sub.Score, Valid: true}
	winner := sql.NullString{String: string(sub.Winner), Valid: true}
	by := sql.NullInt64{Int64: sub.SubmittedBy, Valid: true}
	at := sql.NullTime{Time: sub.SubmittedAt, Valid: true}

	var rows int64
	var err error
	if team == TeamA {
		rows, err = q.SubmitTeamAResult(ctx, dbgen.SubmitTeamAResultParams{
			TeamAScore: score, TeamAWinner: winner, TeamASubmittedBy: by, TeamASubmittedAt: at, ID: matchID,
		})
	} else {
		rows, err = q.SubmitTeamBResult(ctx, dbgen.SubmitTeamBResultParams{
			TeamBScore: score, TeamBWinner: winner, TeamBSubmittedBy: by, TeamBSubmittedAt: at, ID: matchID,
		})
	}
	if err != nil {
		return fmt.Errorf("store %s result: %w", team, err)
	}
	if rows == 0 {
		return ErrAlreadySubmitted
	}
	return nil
}
