// Package ladder implements the doubles ladder league: match result
// reconciliation, standings updates, rank reordering and memberships.
package ladder

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

// Caller is the authenticated user an operation runs on behalf of.
type Caller struct {
	UserID  int64
	IsAdmin bool
}

// Participant carries the contact details a match notification needs.
type Participant struct {
	UserID    int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

func (p Participant) Name() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	case p.LastName != "":
		return p.LastName
	default:
		return "A ladder player"
	}
}

// MatchNotice describes a scheduled or cancelled match to its four players.
// Players are in slot order: team A first, then team B.
type MatchNotice struct {
	MatchID     int64
	LadderID    int64
	LadderName  string
	WeekNumber  int64
	ScheduledAt *time.Time
	Players     [4]Participant
}

// Notifier delivers match notifications. Implementations must not block the
// caller on delivery and must handle their own failures.
type Notifier interface {
	MatchScheduled(ctx context.Context, notice MatchNotice)
	MatchCancelled(ctx context.Context, notice MatchNotice)
}

// Observer receives counts of committed state transitions.
type Observer interface {
	ResultRecorded(kind string)
	MatchFinalized(forced bool)
	MatchCancelled()
	RanksCommitted()
	MembershipsDeactivated(n int)
}

type nopNotifier struct{}

func (nopNotifier) MatchScheduled(context.Context, MatchNotice) {}
func (nopNotifier) MatchCancelled(context.Context, MatchNotice) {}

type nopObserver struct{}

func (nopObserver) ResultRecorded(string)      {}
func (nopObserver) MatchFinalized(bool)        {}
func (nopObserver) MatchCancelled()            {}
func (nopObserver) RanksCommitted()            {}
func (nopObserver) MembershipsDeactivated(int) {}

// Service runs ladder operations against the database. Every mutating
// operation executes in a single transaction.
type Service struct {
	db       *db.DB
	notifier Notifier
	observer Observer
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides the time source used for submission and completion stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(database *db.DB, opts ...Option) *Service {
	s := &Service{
		db:       database,
		notifier: nopNotifier{},
		observer: nopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// stamp returns the current time in the form timestamps are stored in:
// UTC with second precision, so stored values compare correctly as text.
func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil || t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC().Truncate(time.Second), Valid: true}
}

func fromNullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func logger(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		fallback := log.With().Str("component", "ladder").Logger()
		return &fallback
	}
	return l
}

// loadParticipants reads the contact details of the four match players.
func loadParticipants(ctx context.Context, q *dbgen.Queries, ids [4]int64) ([4]Participant, error) {
	var players [4]Participant
	for i, id := range ids {
		user, err := q.GetUserByID(ctx, id)
		if err != nil {
			return players, err
		}
		players[i] = Participant{
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email.String,
			Phone:     user.Phone.String,
		}
	}
	return players, nil
}
