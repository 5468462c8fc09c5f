package notification

import (
	"context"
)

// Repository defines the notification repository interface. Deduplication is
// a storage-level uniqueness guarantee on (subscription_id, external_id),
// sparse over missing external ids, never a check-then-insert in Go.
type Repository interface {
	// Insert persists the notification. It returns false without error when
	// a record with the same (SubscriptionID, ExternalID) already exists,
	// filling n.ID with the stored record's id.
	Insert(ctx context.Context, n *Notification) (bool, error)

	GetByID(ctx context.Context, id, userID string) (*Notification, error)
	ListUnread(ctx context.Context, req ExternalListRequest) ([]*Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	MarkRead(ctx context.Context, id, userID string) (*Notification, error)
	MarkReadBatch(ctx context.Context, ids []string, userID string) (int, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Delete(ctx context.Context, id, userID string) error

	Stats(ctx context.Context, userID string) (*StatsResponse, error)
}
