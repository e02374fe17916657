package email

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/contact"
	"github.com/codr1/PickleLadder/internal/ladder"
)

const matchEmailTimeout = 5 * time.Second

type NotifierConfig struct {
	// From overrides the client's default sender when set.
	From string
	// PhoneRegion decides whether phone numbers are shown in national or
	// international format.
	PhoneRegion string
	Location    *time.Location
	Observer    DeliveryObserver
}

// MatchNotifier emails the four players of a match when it is scheduled or
// cancelled. Sends run in the background on a context detached from the
// triggering request; failures are logged and counted, never returned.
type MatchNotifier struct {
	client   EmailSender
	cfg      NotifierConfig
	observer DeliveryObserver
	wg       sync.WaitGroup
}

func NewMatchNotifier(client EmailSender, cfg NotifierConfig) *MatchNotifier {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.PhoneRegion == "" {
		cfg.PhoneRegion = "US"
	}
	observer := cfg.Observer
	if observer == nil {
		observer = nopDeliveryObserver{}
	}
	return &MatchNotifier{client: client, cfg: cfg, observer: observer}
}

func (n *MatchNotifier) MatchScheduled(ctx context.Context, notice ladder.MatchNotice) {
	n.dispatch(ctx, "scheduled", notice, BuildMatchScheduledEmail)
}

func (n *MatchNotifier) MatchCancelled(ctx context.Context, notice ladder.MatchNotice) {
	n.dispatch(ctx, "cancelled", notice, BuildMatchCancelledEmail)
}

// Wait blocks until in-flight sends finish.
func (n *MatchNotifier) Wait() {
	n.wg.Wait()
}

func (n *MatchNotifier) dispatch(ctx context.Context, kind string, notice ladder.MatchNotice, build func(MatchDetails) MatchEmail) {
	if n == nil || n.client == nil {
		return
	}
	logger := notifierLogger(ctx)

	for slot, player := range notice.Players {
		recipient := strings.TrimSpace(player.Email)
		if recipient == "" {
			logger.Warn().
				Int64("match_id", notice.MatchID).
				Int64("user_id", player.UserID).
				Msg("Skipping match email for player without email address")
			continue
		}

		message := build(n.detailsFor(notice, slot))
		userID := player.UserID

		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			sendCtx, cancel := newEmailContext(ctx, matchEmailTimeout)
			defer cancel()
			if err := n.client.SendFrom(sendCtx, recipient, message.Subject, message.Body, n.cfg.From); err != nil {
				n.observer.EmailFailed(kind)
				logger.Error().
					Err(err).
					Str("kind", kind).
					Int64("match_id", notice.MatchID).
					Int64("user_id", userID).
					Msg("Failed to send match email")
				return
			}
			n.observer.EmailSent(kind)
		}()
	}
}

// detailsFor builds the email parameters from the point of view of the
// player in slot. Slots 0 and 1 are partners, as are 2 and 3.
func (n *MatchNotifier) detailsFor(notice ladder.MatchNotice, slot int) MatchDetails {
	partner := slot ^ 1
	opponents := [2]int{2, 3}
	if slot >= 2 {
		opponents = [2]int{0, 1}
	}

	details := MatchDetails{
		LadderName:    notice.LadderName,
		WeekNumber:    notice.WeekNumber,
		RecipientName: notice.Players[slot].FirstName,
		Partner:       n.contactFor(notice.Players[partner]),
		Opponents: [2]PlayerContact{
			n.contactFor(notice.Players[opponents[0]]),
			n.contactFor(notice.Players[opponents[1]]),
		},
	}
	if notice.ScheduledAt != nil {
		details.When = FormatMatchTime(notice.ScheduledAt.In(n.cfg.Location))
	}
	return details
}

func (n *MatchNotifier) contactFor(p ladder.Participant) PlayerContact {
	return PlayerContact{
		Name:  p.Name(),
		Email: p.Email,
		Phone: contact.DisplayPhone(p.Phone, n.cfg.PhoneRegion),
	}
}

func notifierLogger(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		fallback := log.With().Str("component", "email").Logger()
		return &fallback
	}
	return l
}

// newEmailContext keeps the request's values for logging but drops its
// cancellation, so a finished request does not abort its notifications.
func newEmailContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
