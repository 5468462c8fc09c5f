package subscription

import (
	"context"
)

// Service defines the subscription registry interface
type Service interface {
	// SubscribePassive derives the service host from the API URL, probes
	// the service-info endpoint (falling back to defaults on failure) and
	// creates or updates the passive subscription in place.
	SubscribePassive(ctx context.Context, userID string, req SubscribePassiveRequest) (*SubscribePassiveResponse, error)

	// SubscribeActive validates the notify code, resolves its user and
	// creates or updates the active subscription, issuing a fresh token.
	SubscribeActive(ctx context.Context, req SubscribeActiveRequest) (*SubscribeActiveResponse, error)

	List(ctx context.Context, userID string) ([]SubscriptionResponse, error)
	SetActiveFlag(ctx context.Context, id, userID string, active bool) error
	Delete(ctx context.Context, id, userID string) error

	// TriggerManualPoll polls one passive subscription immediately, subject
	// to a cooldown enforced in storage.
	TriggerManualPoll(ctx context.Context, id, userID string) (*TriggerPollResponse, error)

	// SetServiceStatus is the operator kill switch for a service host.
	SetServiceStatus(ctx context.Context, serviceHost string, req SetServiceStatusRequest) (int, error)
}
