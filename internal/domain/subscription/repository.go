package subscription

import (
	"context"
	"time"
)

// Repository defines the subscription repository interface. The uniqueness of
// (user_id, service_host, mode) and the manual-trigger cooldown both live in
// the storage layer so concurrent callers cannot race past them.
type Repository interface {
	// Upsert creates the subscription or, when one already exists for
	// (UserID, ServiceHost, Mode), updates it in place. It returns the
	// stored entity and whether an existing record was updated.
	Upsert(ctx context.Context, sub *Subscription) (*Subscription, bool, error)

	GetByID(ctx context.Context, id string) (*Subscription, error)
	GetByIDForUser(ctx context.Context, id, userID string) (*Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*Subscription, error)

	// ListPollable returns passive subscriptions that are enabled by both
	// the owner and the operator and carry an API endpoint.
	ListPollable(ctx context.Context) ([]*Subscription, error)

	SetActiveFlag(ctx context.Context, id, userID string, active bool) error
	Delete(ctx context.Context, id, userID string) error

	// SetToken stores a freshly issued push token. The token embeds the
	// subscription id, so it can only be signed after the upsert.
	SetToken(ctx context.Context, id, token string) error

	// WithinTransaction runs fn inside one transaction; repository calls
	// made with the context fn receives join it.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// SetServiceStatus flips the operator kill switch for every
	// subscription on a service host and returns how many were affected.
	SetServiceStatus(ctx context.Context, serviceHost string, active bool, reason *string) (int, error)

	// StampPolled records a poll attempt start for the given subscriptions.
	StampPolled(ctx context.Context, ids []string, at time.Time) error

	// ClaimManualTrigger atomically stamps LastManualTriggerAt when the
	// cooldown has elapsed. When the claim fails it returns the previous
	// trigger time so the caller can report the remaining wait.
	ClaimManualTrigger(ctx context.Context, id string, now time.Time, cooldown time.Duration) (bool, *time.Time, error)

	// RecordNotification atomically increments the notification counter and
	// stamps LastNotificationAt.
	RecordNotification(ctx context.Context, id string, at time.Time) error
}
