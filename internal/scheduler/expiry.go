package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"
)

const (
	MembershipExpiryJobName = "membership_expiry"
	expiryJobTimeout        = 2 * time.Minute
)

// MembershipExpirer deactivates lapsed ladder memberships.
type MembershipExpirer interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}

// RegisterMembershipExpiryJob runs expirer on cronExpr. now supplies the
// cutoff; nil means the wall clock.
func RegisterMembershipExpiryJob(s *Service, expirer MembershipExpirer, cronExpr string, now func() time.Time) (gocron.Job, error) {
	if expirer == nil {
		return nil, fmt.Errorf("membership expiry job requires an expirer")
	}
	if now == nil {
		now = time.Now
	}

	jobLogger := log.With().
		Str("component", "membership_expiry_job").
		Str("job_name", MembershipExpiryJobName).
		Logger()

	return s.AddJob(MembershipExpiryJobName, cronExpr, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), expiryJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		cutoff := now().UTC()
		count, err := expirer.DeactivateExpired(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("deactivate expired memberships: %w", err)
		}
		if count > 0 {
			jobLogger.Info().Int("deactivated", count).Time("cutoff", cutoff).Msg("Expired memberships deactivated")
		}
		return nil
	})
}
