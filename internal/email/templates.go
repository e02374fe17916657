package email

import (
	"fmt"
	"strings"
	"time"
)

type MatchEmail struct {
	Subject string
	Body    string
}

type PlayerContact struct {
	Name  string
	Email string
	Phone string
}

type MatchDetails struct {
	LadderName    string
	WeekNumber    int64
	When          string
	RecipientName string
	Partner       PlayerContact
	Opponents     [2]PlayerContact
}

func FormatMatchTime(t time.Time) string {
	return t.Format("Monday, Jan 2, 2006 at 3:04 PM MST")
}

func BuildMatchScheduledEmail(details MatchDetails) MatchEmail {
	ladderName := ladderLabel(details.LadderName)
	subject := fmt.Sprintf("Week %d Match Scheduled - %s", details.WeekNumber, ladderName)

	lines := []string{
		fmt.Sprintf("Hi %s,", recipientLabel(details.RecipientName)),
		"",
		fmt.Sprintf("Your week %d doubles match on %s has been scheduled.", details.WeekNumber, ladderName),
		fmt.Sprintf("When: %s", whenLabel(details.When)),
		"",
		"Your partner:",
		contactLine(details.Partner),
		"",
		"Your opponents:",
		contactLine(details.Opponents[0]),
		contactLine(details.Opponents[1]),
		"",
		"Reach out to arrange a court. After the match, one player from each team submits the score, or confirms the score the other team entered.",
	}

	return MatchEmail{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

func BuildMatchCancelledEmail(details MatchDetails) MatchEmail {
	ladderName := ladderLabel(details.LadderName)
	subject := fmt.Sprintf("Week %d Match Cancelled - %s", details.WeekNumber, ladderName)

	lines := []string{
		fmt.Sprintf("Hi %s,", recipientLabel(details.RecipientName)),
		"",
		fmt.Sprintf("Your week %d doubles match on %s has been cancelled by the ladder administrator.", details.WeekNumber, ladderName),
		fmt.Sprintf("Scheduled for: %s", whenLabel(details.When)),
		"",
		fmt.Sprintf("Partner: %s", details.Partner.Name),
		fmt.Sprintf("Opponents: %s and %s", details.Opponents[0].Name, details.Opponents[1].Name),
		"",
		"No result was recorded and your standing is unchanged.",
	}

	return MatchEmail{
		Subject: subject,
		Body:    strings.Join(lines, "\n"),
	}
}

func contactLine(p PlayerContact) string {
	parts := []string{p.Name}
	if email := strings.TrimSpace(p.Email); email != "" {
		parts = append(parts, email)
	}
	if phone := strings.TrimSpace(p.Phone); phone != "" {
		parts = append(parts, phone)
	}
	return "  " + strings.Join(parts, " | ")
}

func ladderLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "the ladder"
	}
	return name
}

func recipientLabel(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}

func whenLabel(when string) string {
	when = strings.TrimSpace(when)
	if when == "" {
		return "TBD"
	}
	return when
}
