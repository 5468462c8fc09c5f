package notification

import (
	"context"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
)

// Service defines the notification store and ingestion interface. Pushes and
// polls share the same dedup/persist path.
type Service interface {
	// IngestPush validates a pushed payload against its subscription token
	// and persists it idempotently.
	IngestPush(ctx context.Context, req PushRequest) (*ReceiveResponse, error)

	// IngestPolled maps one normalized polled payload onto a notification
	// for the given subscription. It reports whether a new record was
	// created; duplicates are not errors.
	IngestPolled(ctx context.Context, sub *subscription.Subscription, payload RawPayload) (bool, error)

	// External API operations, scoped to the token's user.
	ListUnread(ctx context.Context, req ExternalListRequest) (*ExternalListResponse, error)
	MarkRead(ctx context.Context, id, userID string) (*MarkReadResponse, error)
	MarkReadBatch(ctx context.Context, userID string, req MarkReadBatchRequest) (int, error)
	Delete(ctx context.Context, id, userID string) error
	Stats(ctx context.Context, userID string) (*StatsResponse, error)

	// Subscribe attaches an SSE listener for a user's new notifications.
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())
}
