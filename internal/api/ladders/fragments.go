package ladders

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/PickleLadder/internal/ladder"
)

var trendGlyphs = map[string]string{
	ladder.TrendUp:   "&#9650;",
	ladder.TrendDown: "&#9660;",
	ladder.TrendNone: "&ndash;",
}

// standingsTable renders the ladder as table rows. Admins get draggable rows
// carrying the membership ids and the ranks version the commit must match.
func standingsTable(standings ladder.Standings, viewerID int64, admin bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<table id="standings-%d" class="min-w-full text-sm" data-ranks-version="%d">`,
			standings.LadderID, standings.RanksVersion); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<thead><tr><th>#</th><th>Player</th><th>Score</th><th>Streak</th><th>Trend</th></tr></thead><tbody>`); err != nil {
			return err
		}
		if len(standings.Entries) == 0 {
			if _, err := io.WriteString(w, `<tr><td colspan="5" class="text-gray-500">No active players yet</td></tr>`); err != nil {
				return err
			}
		}
		for _, entry := range standings.Entries {
			if err := standingRow(w, entry, viewerID, admin); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}

func standingRow(w io.Writer, entry ladder.Standing, viewerID int64, admin bool) error {
	classes := []string{"border-t"}
	if entry.UserID == viewerID {
		classes = append(classes, "font-semibold")
	}
	attrs := ""
	if admin {
		attrs = fmt.Sprintf(` draggable="true" data-membership-id="%d"`, entry.MembershipID)
	}

	rank := "&ndash;"
	if entry.Rank != nil {
		rank = fmt.Sprintf("%d", *entry.Rank)
	}
	name := strings.TrimSpace(entry.FirstName + " " + entry.LastName)
	if name == "" {
		name = "A ladder player"
	}
	glyph, ok := trendGlyphs[entry.Trend]
	if !ok {
		glyph = trendGlyphs[ladder.TrendNone]
	}

	_, err := fmt.Fprintf(w, `<tr class="%s"%s><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td data-trend="%s">%s</td></tr>`,
		strings.Join(classes, " "), attrs, rank, html.EscapeString(name),
		entry.Score, entry.WinStreak, html.EscapeString(entry.Trend), glyph)
	return err
}
