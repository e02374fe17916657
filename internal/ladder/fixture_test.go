package ladder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
	"github.com/codr1/PickleLadder/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu        sync.Mutex
	scheduled []MatchNotice
	cancelled []MatchNotice
}

func (n *recordingNotifier) MatchScheduled(_ context.Context, notice MatchNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scheduled = append(n.scheduled, notice)
}

func (n *recordingNotifier) MatchCancelled(_ context.Context, notice MatchNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, notice)
}

type countingObserver struct {
	mu          sync.Mutex
	recorded    map[string]int
	finalized   int
	forced      int
	cancelled   int
	commits     int
	deactivated int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{recorded: make(map[string]int)}
}

func (o *countingObserver) ResultRecorded(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recorded[kind]++
}

func (o *countingObserver) MatchFinalized(forced bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finalized++
	if forced {
		o.forced++
	}
}

func (o *countingObserver) MatchCancelled() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelled++
}

func (o *countingObserver) RanksCommitted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.commits++
}

func (o *countingObserver) MembershipsDeactivated(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deactivated += n
}

type fixture struct {
	db       *db.DB
	svc      *Service
	notifier *recordingNotifier
	observer *countingObserver
	admin    Caller
	ladder   dbgen.Ladder
	players  [4]dbgen.User
	members  [4]dbgen.LadderMembership
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	database := testutil.NewTestDB(t)
	f := &fixture{
		db:       database,
		notifier: &recordingNotifier{},
		observer: newCountingObserver(),
	}
	f.svc = NewService(database,
		WithNotifier(f.notifier),
		WithObserver(f.observer),
		WithClock(func() time.Time { return fixedNow }),
	)

	admin := testutil.CreateUser(t, database, "Ada", "Admin", true)
	f.admin = Caller{UserID: admin.ID, IsAdmin: true}
	f.ladder = testutil.CreateLadder(t, database, "Spring Doubles")

	names := [4][2]string{{"Alice", "Anders"}, {"Abe", "Archer"}, {"Bea", "Brooks"}, {"Ben", "Burke"}}
	for i, name := range names {
		f.players[i] = testutil.CreateUser(t, database, name[0], name[1], false)
		f.members[i] = testutil.AddMember(t, database, f.ladder.ID, f.players[i].ID)
	}
	return f
}

func (f *fixture) caller(slot int) Caller {
	return Caller{UserID: f.players[slot].ID}
}

func (f *fixture) playerIDs() [4]int64 {
	return [4]int64{f.players[0].ID, f.players[1].ID, f.players[2].ID, f.players[3].ID}
}

func (f *fixture) createMatch(t *testing.T) Match {
	t.Helper()

	match, err := f.svc.CreateMatch(context.Background(), f.admin, CreateMatchInput{
		LadderID:   f.ladder.ID,
		WeekNumber: 1,
		PlayerIDs:  f.playerIDs(),
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return match
}

func (f *fixture) membership(t *testing.T, slot int) dbgen.LadderMembership {
	t.Helper()

	m, err := f.db.Queries.GetMembership(context.Background(), dbgen.GetMembershipParams{
		LadderID: f.ladder.ID,
		UserID:   f.players[slot].ID,
	})
	if err != nil {
		t.Fatalf("load membership for slot %d: %v", slot, err)
	}
	return m
}

func (f *fixture) assertStanding(t *testing.T, slot int, score, streak int64, trend string) {
	t.Helper()

	m := f.membership(t, slot)
	if m.Score != score || m.WinStreak != streak || m.Trend != trend {
		t.Fatalf("slot %d: got score=%d streak=%d trend=%s, want score=%d streak=%d trend=%s",
			slot, m.Score, m.WinStreak, m.Trend, score, streak, trend)
	}
}

func (f *fixture) assertUntouched(t *testing.T) {
	t.Helper()

	for slot := range f.players {
		f.assertStanding(t, slot, BaselineScore, 0, TrendNone)
	}
}
