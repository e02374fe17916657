package ladder

import (
	"time"

	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
)

// Match is the read model returned by every match operation. Reconciliation
// is derived from the two submissions each time a match is read.
type Match struct {
	ID               int64          `json:"id"`
	LadderID         int64          `json:"ladderId"`
	WeekNumber       int64          `json:"weekNumber"`
	TeamAPlayerIDs   [2]int64       `json:"teamAPlayerIds"`
	TeamBPlayerIDs   [2]int64       `json:"teamBPlayerIds"`
	Status           string         `json:"status"`
	ScheduledAt      *time.Time     `json:"scheduledAt,omitempty"`
	TeamAResult      *Submission    `json:"teamAResult,omitempty"`
	TeamBResult      *Submission    `json:"teamBResult,omitempty"`
	Reconciliation   Reconciliation `json:"reconciliation"`
	CompletedAt      *time.Time     `json:"completedAt,omitempty"`
	ForceCompletedBy *int64         `json:"forceCompletedBy,omitempty"`
}

func (m Match) Completed() bool {
	return m.Status == StatusCompleted
}

// TeamOf reports which team userID plays on.
func (m Match) TeamOf(userID int64) (Team, bool) {
	switch userID {
	case m.TeamAPlayerIDs[0], m.TeamAPlayerIDs[1]:
		return TeamA, true
	case m.TeamBPlayerIDs[0], m.TeamBPlayerIDs[1]:
		return TeamB, true
	}
	return "", false
}

// PlayerIDs returns the four players in slot order.
func (m Match) PlayerIDs() [4]int64 {
	return [4]int64{m.TeamAPlayerIDs[0], m.TeamAPlayerIDs[1], m.TeamBPlayerIDs[0], m.TeamBPlayerIDs[1]}
}

func (m Match) Result(team Team) *Submission {
	if team == TeamA {
		return m.TeamAResult
	}
	return m.TeamBResult
}

func matchFromRow(row dbgen.Match) Match {
	m := Match{
		ID:             row.ID,
		LadderID:       row.LadderID,
		WeekNumber:     row.WeekNumber,
		TeamAPlayerIDs: [2]int64{row.Player1ID, row.Player2ID},
		TeamBPlayerIDs: [2]int64{row.Player3ID, row.Player4ID},
		Status:         row.Status,
		ScheduledAt:    fromNullTime(row.ScheduledAt),
		CompletedAt:    fromNullTime(row.CompletedAt),
	}
	if row.TeamAScore.Valid {
		m.TeamAResult = &Submission{
			Score:       row.TeamAScore.String,
			Winner:      Team(row.TeamAWinner.String),
			SubmittedBy: row.TeamASubmittedBy.Int64,
			SubmittedAt: row.TeamASubmittedAt.Time.UTC(),
		}
	}
	if row.TeamBScore.Valid {
		m.TeamBResult = &Submission{
			Score:       row.TeamBScore.String,
			Winner:      Team(row.TeamBWinner.String),
			SubmittedBy: row.TeamBSubmittedBy.Int64,
			SubmittedAt: row.TeamBSubmittedAt.Time.UTC(),
		}
	}
	if row.ForceCompletedBy.Valid {
		id := row.ForceCompletedBy.Int64
		m.ForceCompletedBy = &id
	}
	m.Reconciliation = DeriveStatus(m.TeamAResult, m.TeamBResult)
	return m
}
