package ladder

import (
	"strconv"
	"strings"
	"time"
)

// Team identifies one side of a doubles match. Team A is players 1 and 2,
// team B is players 3 and 4.
type Team string

const (
	TeamA Team = "team_a"
	TeamB Team = "team_b"
)

// ParseTeam accepts the stored form ("team_a") and the short form ("a").
func ParseTeam(raw string) (Team, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "team_a", "a":
		return TeamA, nil
	case "team_b", "b":
		return TeamB, nil
	default:
		return "", invalid("team", "must be team_a or team_b")
	}
}

func (t Team) Valid() bool {
	return t == TeamA || t == TeamB
}

func (t Team) Other() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

const maxGamePoints = 99

// NormalizeScore validates a score string of one or more games written as
// "<a>-<b>" and separated by commas, and returns it in canonical form
// ("11-7, 9-11"). Each side is 0 to 99 and no game may be tied.
func NormalizeScore(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalid("score", "is required")
	}

	parts := strings.Split(raw, ",")
	games := make([]string, 0, len(parts))
	for i, part := range parts {
		sides := strings.Split(strings.TrimSpace(part), "-")
		if len(sides) != 2 {
			return "", invalid("score", "game %d must look like 11-7", i+1)
		}
		left, err := parseGamePoints(sides[0])
		if err != nil {
			return "", invalid("score", "game %d: %s", i+1, err.Error())
		}
		right, err := parseGamePoints(sides[1])
		if err != nil {
			return "", invalid("score", "game %d: %s", i+1, err.Error())
		}
		if left == right {
			return "", invalid("score", "game %d is tied", i+1)
		}
		games = append(games, strconv.Itoa(left)+"-"+strconv.Itoa(right))
	}
	return strings.Join(games, ", "), nil
}

type pointsError string

func (e pointsError) Error() string { return string(e) }

func parseGamePoints(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, pointsError("missing points")
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, pointsError("points must be whole numbers")
		}
	}
	points, err := strconv.Atoi(raw)
	if err != nil || points > maxGamePoints {
		return 0, pointsError("points must be between 0 and 99")
	}
	return points, nil
}

// Submission is one team's reported result.
type Submission struct {
	Score       string    `json:"score"`
	Winner      Team      `json:"winner"`
	SubmittedBy int64     `json:"submittedBy"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SameResult reports whether two submissions carry the same score and winner.
func (s Submission) SameResult(other Submission) bool {
	return s.Score == other.Score && s.Winner == other.Winner
}

type ReconciliationState string

const (
	StateNone        ReconciliationState = "none"
	StateTeamPending ReconciliationState = "team_pending"
	StateAgreed      ReconciliationState = "agreed"
	StateDispute     ReconciliationState = "dispute"
)

// Reconciliation is the derived status of a match's two submissions. It is
// computed on read and never stored. PendingTeam names the team that has
// submitted when State is team_pending; the other team still has to confirm.
type Reconciliation struct {
	State       ReconciliationState `json:"state"`
	PendingTeam Team                `json:"pendingTeam,omitempty"`
}

// AwaitingTeam returns the team that still needs to act on a team_pending
// match, or "" for any other state.
func (r Reconciliation) AwaitingTeam() Team {
	if r.State != StateTeamPending {
		return ""
	}
	return r.PendingTeam.Other()
}

// DeriveStatus compares the two submissions. Nil means the team has not submitted.
func DeriveStatus(teamA, teamB *Submission) Reconciliation {
	switch {
	case teamA == nil && teamB == nil:
		return Reconciliation{State: StateNone}
	case teamB == nil:
		return Reconciliation{State: StateTeamPending, PendingTeam: TeamA}
	case teamA == nil:
		return Reconciliation{State: StateTeamPending, PendingTeam: TeamB}
	case teamA.SameResult(*teamB):
		return Reconciliation{State: StateAgreed}
	default:
		return Reconciliation{State: StateDispute}
	}
}
