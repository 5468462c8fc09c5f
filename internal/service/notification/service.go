package notification

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/domain/user"
	"github.com/LoosePrince/Huisheen/internal/pkg/sse"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/LoosePrince/Huisheen/internal/pkg/validator"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type service struct {
	repo   notification.Repository
	subs   subscription.Repository
	users  user.Repository
	tokens token.Service
	hub    *sse.Hub
	logger *slog.Logger
}

// NewNotificationService creates the notification store service.
func NewNotificationService(
	repo notification.Repository,
	subs subscription.Repository,
	users user.Repository,
	tokens token.Service,
	hub *sse.Hub,
	logger *slog.Logger,
) notification.Service {
	return &service{
		repo:   repo,
		subs:   subs,
		users:  users,
		tokens: tokens,
		hub:    hub,
		logger: logger,
	}
}

// IngestPush implements notification.Service. A replayed push is acknowledged
// as a duplicate, not rejected.
func (s *service) IngestPush(ctx context.Context, req notification.PushRequest) (*notification.ReceiveResponse, error) {
	if validator.IsEmpty(req.Title) || validator.IsEmpty(req.Content) {
		return nil, validator.ValidationErrors{{Field: "title", Message: "title and content are required"}}
	}

	claims, err := s.tokens.VerifySubscriptionToken(req.Token)
	if err != nil {
		return nil, err
	}

	sub, err := s.subs.GetByID(ctx, claims.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.ServiceActive {
		return nil, subscription.ErrServiceDisabled
	}
	if !sub.IsActive {
		return nil, subscription.ErrSubscriptionDisabled
	}

	// The token proves the subscription; the notifyId must prove it names
	// the same owner.
	owner, err := s.users.GetByID(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	if req.NotifyID != owner.NotifyID {
		return nil, auth.ErrIdentityMismatch
	}

	externalID := req.ExternalID
	if validator.IsEmpty(externalID) {
		// Pushes always dedup. Without a sender-supplied id each delivery
		// gets a unique synthesized one, so retries of the same HTTP call
		// are the sender's responsibility to mark.
		externalID = "push:" + uuid.New().String()
	}

	source := notification.Source{Name: sub.ThirdPartyName, URL: sub.ThirdPartyURL}
	if req.Source != nil && !validator.IsEmpty(req.Source.Name) {
		source = *req.Source
	}

	var callbackURL *string
	if !validator.IsEmpty(req.CallbackURL) {
		cb := truncate(req.CallbackURL, notification.MaxCallbackURLLen)
		callbackURL = &cb
	}

	redacted := req
	redacted.Token = ""
	raw, err := json.Marshal(redacted)
	if err != nil {
		return nil, err
	}

	n := &notification.Notification{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Title:          truncate(req.Title, notification.MaxTitleLen),
		Content:        truncate(req.Content, notification.MaxContentLen),
		Type:           coerceType(req.Type),
		Priority:       coercePriority(req.Priority),
		Source:         source,
		CallbackURL:    callbackURL,
		ExternalID:     &externalID,
		Metadata:       req.Metadata,
		RawData:        raw,
	}

	created, err := s.persist(ctx, n)
	if err != nil {
		return nil, err
	}

	return &notification.ReceiveResponse{
		NotificationID: n.ID,
		Duplicate:      !created,
	}, nil
}

// IngestPolled implements notification.Service. Unlike pushes, polled
// payloads without an id-like field get no external id and are never
// deduplicated.
func (s *service) IngestPolled(ctx context.Context, sub *subscription.Subscription, payload notification.RawPayload) (bool, error) {
	ex, err := extractPayload(payload)
	if err != nil {
		return false, err
	}

	n := &notification.Notification{
		UserID:         sub.UserID,
		SubscriptionID: sub.ID,
		Title:          ex.Title,
		Content:        ex.Content,
		Type:           ex.Type,
		Priority:       ex.Priority,
		Source:         notification.Source{Name: sub.ThirdPartyName, URL: sub.ThirdPartyURL},
		CallbackURL:    ex.CallbackURL,
		ExternalID:     ex.ExternalID,
		Metadata:       ex.Metadata,
		RawData:        json.RawMessage(payload),
	}

	return s.persist(ctx, n)
}

// persist runs the shared dedup/persist path: insert, bump the subscription
// counters and publish to stream subscribers only when a record was created.
func (s *service) persist(ctx context.Context, n *notification.Notification) (bool, error) {
	created, err := s.repo.Insert(ctx, n)
	if err != nil {
		return false, err
	}
	if !created {
		return false, nil
	}

	if err := s.subs.RecordNotification(ctx, n.SubscriptionID, n.ReceivedAt); err != nil {
		s.logger.Error("failed to bump notification counter",
			"subscription_id", n.SubscriptionID, "error", err)
	}

	s.hub.Publish(n.UserID, sse.Event{
		UserID: n.UserID,
		Event:  "notification",
		Data:   notification.ToResponse(n),
	})

	return true, nil
}

// ListUnread implements notification.Service.
func (s *service) ListUnread(ctx context.Context, req notification.ExternalListRequest) (*notification.ExternalListResponse, error) {
	if req.Limit <= 0 {
		req.Limit = defaultListLimit
	}
	if req.Limit > maxListLimit {
		req.Limit = maxListLimit
	}

	items, err := s.repo.ListUnread(ctx, req)
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountUnread(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]notification.NotificationResponse, len(items))
	for i, n := range items {
		out[i] = notification.ToResponse(n)
	}
	return &notification.ExternalListResponse{
		Notifications: out,
		TotalUnread:   total,
		Returned:      len(out),
	}, nil
}

// MarkRead implements notification.Service.
func (s *service) MarkRead(ctx context.Context, id, userID string) (*notification.MarkReadResponse, error) {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return &notification.MarkReadResponse{
		ID:     n.ID,
		IsRead: n.IsRead,
		ReadAt: n.ReadAt,
	}, nil
}

// MarkReadBatch implements notification.Service.
func (s *service) MarkReadBatch(ctx context.Context, userID string, req notification.MarkReadBatchRequest) (int, error) {
	if len(req.NotificationIDs) == 0 {
		return s.repo.MarkAllRead(ctx, userID)
	}
	return s.repo.MarkReadBatch(ctx, req.NotificationIDs, userID)
}

// Delete implements notification.Service.
func (s *service) Delete(ctx context.Context, id, userID string) error {
	return s.repo.Delete(ctx, id, userID)
}

// Stats implements notification.Service.
func (s *service) Stats(ctx context.Context, userID string) (*notification.StatsResponse, error) {
	return s.repo.Stats(ctx, userID)
}

// Subscribe implements notification.Service.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)
	go func() {
		defer close(out)
		for ev := range ch {
			data, ok := ev.Data.(notification.NotificationResponse)
			if !ok {
				continue
			}
			select {
			case out <- notification.SSEEvent{Event: ev.Event, Data: data}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}
