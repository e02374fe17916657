package ladder

import (
	"context"
	"fmt"

	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

const (
	// BaselineScore is the score a new membership starts with.
	BaselineScore int64 = 100
	// WinPoints is added to each winning player's score.
	WinPoints int64 = 10
	// LossPoints is subtracted from each losing player's score, floored at zero.
	LossPoints int64 = 5
)

const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendNone = "none"
)

// applyStandings credits the winning team and debits the losing team.
// Memberships that lapsed after the match was scheduled still take the
// result; only a missing membership row fails the update, which rolls back
// the surrounding transaction along with the completion write.
func applyStandings(ctx context.Context, q *dbgen.Queries, match Match, winner Team) error {
	winners, losers := match.TeamAPlayerIDs, match.TeamBPlayerIDs
	if winner == TeamB {
		winners, losers = losers, winners
	}

	for _, userID := range winners {
		rows, err := q.ApplyMatchWin(ctx, dbgen.ApplyMatchWinParams{
			Points:   WinPoints,
			LadderID: match.LadderID,
			UserID:   userID,
		})
		if err != nil {
			return fmt.Errorf("apply win for user %d: %w", userID, err)
		}
		if rows != 1 {
			return fmt.Errorf("apply win for user %d: %w", userID, ErrMembershipNotFound)
		}
	}

	for _, userID := range losers {
		rows, err := q.ApplyMatchLoss(ctx, dbgen.ApplyMatchLossParams{
			Points:   LossPoints,
			LadderID: match.LadderID,
			UserID:   userID,
		})
		if err != nil {
			return fmt.Errorf("apply loss for user %d: %w", userID, err)
		}
		if rows != 1 {
			return fmt.Errorf("apply loss for user %d: %w", userID, ErrMembershipNotFound)
		}
	}

	return nil
}
