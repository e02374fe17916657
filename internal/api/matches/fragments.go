package matches

import (
	"context"
	"fmt"
	"html"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/codr1/PickleLadder/internal/ladder"
)

const matchTimeLayout = "Mon Jan 2, 3:04 PM"

var reconciliationLabels = map[ladder.ReconciliationState]string{
	ladder.StateNone:        "Awaiting results",
	ladder.StateTeamPending: "Awaiting confirmation",
	ladder.StateAgreed:      "Results agree",
	ladder.StateDispute:     "Results disputed",
}

func matchCard(match ladder.Match, players [4]ladder.Participant, loc *time.Location) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		status := reconciliationLabels[match.Reconciliation.State]
		if match.Completed() {
			status = "Completed"
			if match.ForceCompletedBy != nil {
				status = "Completed by admin"
			}
		}

		when := "Time to be arranged"
		if match.ScheduledAt != nil {
			when = match.ScheduledAt.In(loc).Format(matchTimeLayout)
		}

		if _, err := fmt.Fprintf(w, `<div id="match-%d" class="rounded-lg border border-gray-200 p-4" data-status="%s">`,
			match.ID, html.EscapeString(match.Status)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="flex justify-between text-sm text-gray-500"><span>Week %d</span><span>%s</span></div>`,
			match.WeekNumber, html.EscapeString(when)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="mt-2 font-medium">%s &amp; %s <span class="text-gray-400">vs</span> %s &amp; %s</div>`,
			html.EscapeString(players[0].Name()), html.EscapeString(players[1].Name()),
			html.EscapeString(players[2].Name()), html.EscapeString(players[3].Name())); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, `<div class="mt-1 text-sm" data-reconciliation="%s">%s</div>`,
			html.EscapeString(string(match.Reconciliation.State)), html.EscapeString(status)); err != nil {
			return err
		}
		for _, team := range []ladder.Team{ladder.TeamA, ladder.TeamB} {
			if err := resultLine(w, team, match.Result(team)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
}

func resultLine(w io.Writer, team ladder.Team, sub *ladder.Submission) error {
	label := "Team A"
	if team == ladder.TeamB {
		label = "Team B"
	}
	if sub == nil {
		_, err := fmt.Fprintf(w, `<div class="text-xs text-gray-400">%s: no result yet</div>`, label)
		return err
	}
	winner := "Team A"
	if sub.Winner == ladder.TeamB {
		winner = "Team B"
	}
	_, err := fmt.Fprintf(w, `<div class="text-xs">%s reported %s, %s won</div>`,
		label, html.EscapeString(sub.Score), winner)
	return err
}
