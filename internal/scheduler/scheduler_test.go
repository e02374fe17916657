package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeExpirer struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
	called  chan struct{}
}

func newFakeExpirer(err error) *fakeExpirer {
	return &fakeExpirer{err: err, called: make(chan struct{}, 4)}
}

func (f *fakeExpirer) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	f.cutoffs = append(f.cutoffs, now)
	f.mu.Unlock()
	select {
	case f.called <- struct{}{}:
	default:
	}
	if f.err != nil {
		return 0, f.err
	}
	return 2, nil
}

// runAndWait triggers job until the expirer sees a call. Singleton mode drops
// a trigger that lands while the previous run is still finishing.
func runAndWait(t *testing.T, job interface{ RunNow() error }, f *fakeExpirer) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if err := job.RunNow(); err != nil {
			t.Fatalf("run now: %v", err)
		}
		select {
		case <-f.called:
			return
		case <-time.After(100 * time.Millisecond):
		case <-deadline:
			t.Fatal("expiry job did not run")
		}
	}
}

func TestMembershipExpiryJobRunsWithCutoff(t *testing.T) {
	svc, err := New(time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc.Start()
	defer svc.Stop()

	fixed := time.Date(2026, 3, 1, 3, 15, 0, 0, time.FixedZone("EST", -5*60*60))
	expirer := newFakeExpirer(nil)
	job, err := RegisterMembershipExpiryJob(svc, expirer, "15 3 * * *", func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("register job: %v", err)
	}
	if job.Name() != MembershipExpiryJobName {
		t.Fatalf("job name = %q", job.Name())
	}

	runAndWait(t, job, expirer)

	expirer.mu.Lock()
	defer expirer.mu.Unlock()
	if len(expirer.cutoffs) == 0 {
		t.Fatalf("no cutoffs recorded")
	}
	for _, cutoff := range expirer.cutoffs {
		if !cutoff.Equal(fixed) || cutoff.Location() != time.UTC {
			t.Fatalf("unexpected cutoff %v", cutoff)
		}
	}
}

func TestMembershipExpiryJobSurvivesErrors(t *testing.T) {
	svc, err := New(nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	svc.Start()
	defer svc.Stop()

	expirer := newFakeExpirer(errors.New("database is locked"))
	job, err := RegisterMembershipExpiryJob(svc, expirer, "15 3 * * *", nil)
	if err != nil {
		t.Fatalf("register job: %v", err)
	}
	for i := 0; i < 2; i++ {
		runAndWait(t, job, expirer)
	}
}

func TestAddJobValidation(t *testing.T) {
	svc, err := New(nil)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	defer svc.Stop()

	noop := func() error { return nil }
	if _, err := svc.AddJob(" ", "* * * * *", noop); !errors.Is(err, ErrEmptyJobName) {
		t.Fatalf("expected ErrEmptyJobName, got %v", err)
	}
	if _, err := svc.AddJob("job", "", noop); !errors.Is(err, ErrEmptyCronExpr) {
		t.Fatalf("expected ErrEmptyCronExpr, got %v", err)
	}
	if _, err := svc.AddJob("job", "not a cron", noop); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
	if _, err := RegisterMembershipExpiryJob(svc, nil, "* * * * *", nil); err == nil {
		t.Fatalf("expected error for nil expirer")
	}

	var nilSvc *Service
	if _, err := nilSvc.AddJob("job", "* * * * *", noop); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := nilSvc.Stop(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("expected ErrNotInitialized on stop, got %v", err)
	}
}
