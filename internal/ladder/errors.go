package ladder

import (
	"errors"
	"fmt"
)

var (
	ErrLadderNotFound     = errors.New("ladder not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrUserNotFound       = errors.New("user not found")

	ErrForbidden = errors.New("forbidden")
	ErrNotOnTeam = errors.New("caller is not on the submitting team")

	ErrMatchCompleted   = errors.New("match already completed")
	ErrAlreadySubmitted = errors.New("team already submitted a result")
	ErrNothingToConfirm = errors.New("other team has not submitted a result")
	ErrNoSubmission     = errors.New("no result has been submitted")
	ErrNotAgreed        = errors.New("submitted results do not agree")
	ErrStaleRanks       = errors.New("ranks changed since they were loaded")
	ErrLadderInactive   = errors.New("ladder is not active")
	ErrLadderExists     = errors.New("ladder name already in use")
	ErrAlreadyMember    = errors.New("user is already an active member")
	ErrSeasonEnded      = errors.New("ladder season has ended")
)

// ValidationError reports input that was rejected before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsStateConflict reports whether err is a precondition failure against the
// current state of a match, ladder or membership.
func IsStateConflict(err error) bool {
	for _, target := range []error{
		ErrMatchCompleted,
		ErrAlreadySubmitted,
		ErrNothingToConfirm,
		ErrNoSubmission,
		ErrNotAgreed,
		ErrStaleRanks,
		ErrLadderInactive,
		ErrLadderExists,
		ErrAlreadyMember,
		ErrSeasonEnded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err names a missing ladder, match, membership or user.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLadderNotFound) ||
		errors.Is(err, ErrMatchNotFound) ||
		errors.Is(err, ErrMembershipNotFound) ||
		errors.Is(err, ErrUserNotFound)
}
