package subscription

import (
	"errors"
	"fmt"
)

// Subscription domain errors
var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrSubscriptionDisabled = errors.New("subscription is disabled")
	ErrServiceDisabled      = errors.New("service disabled by operator")
	ErrNotPassive           = errors.New("subscription is not in passive mode")
	ErrInvalidURL           = errors.New("invalid third-party URL")
)

// CooldownError is returned when a manual trigger lands inside the cooldown
// window. RemainingSeconds is rounded up.
type CooldownError struct {
	RemainingSeconds int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("manual trigger on cooldown, retry in %d seconds", e.RemainingSeconds)
}

// ExternalServiceError reports that the third-party endpoint itself failed
// during a poll, as opposed to an internal storage or scheduling failure.
type ExternalServiceError struct {
	Endpoint string
	Err      error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("poll %s: %v", e.Endpoint, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }
