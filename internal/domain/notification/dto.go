package notification

import (
	"encoding/json"
	"time"
)

// ============= Request DTOs =============

// PushRequest is the payload a third party sends to the active ingestion
// endpoint. Unknown type/priority values are coerced, not rejected.
type PushRequest struct {
	NotifyID    string                 `json:"notifyId"`
	Token       string                 `json:"token"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	Type        string                 `json:"type,omitempty"`
	Priority    string                 `json:"priority,omitempty"`
	CallbackURL string                 `json:"callbackUrl,omitempty"`
	ExternalID  string                 `json:"externalId,omitempty"`
	Source      *Source                `json:"source,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// ExternalListRequest filters the unread listing for the external API.
type ExternalListRequest struct {
	UserID   string
	Limit    int
	Type     string
	Priority string
	Since    *time.Time
}

// MarkReadBatchRequest acknowledges several notifications at once.
type MarkReadBatchRequest struct {
	NotificationIDs []string `json:"notificationIds"`
}

// ============= Response DTOs =============

// NotificationResponse is the external-facing view of a notification.
type NotificationResponse struct {
	ID          string                 `json:"id"`
	Title       string                 `json:"title"`
	Content     string                 `json:"content"`
	Type        Type                   `json:"type"`
	Priority    Priority               `json:"priority"`
	Source      Source                 `json:"source"`
	CallbackURL *string                `json:"callbackUrl,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	IsRead      bool                   `json:"isRead"`
	ReadAt      *time.Time             `json:"readAt,omitempty"`
	ReceivedAt  time.Time              `json:"receivedAt"`
}

// ReceiveResponse acknowledges a push. Duplicate is true when the payload was
// already stored; retries are success-no-ops.
type ReceiveResponse struct {
	NotificationID string `json:"notificationId"`
	Duplicate      bool   `json:"duplicate,omitempty"`
}

// ExternalListResponse is the unread listing for the external API.
type ExternalListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	TotalUnread   int                    `json:"totalUnread"`
	Returned      int                    `json:"returned"`
}

// StatsResponse summarizes a user's inbox.
type StatsResponse struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
	Read   int `json:"read"`
	Today  int `json:"today"`
}

// MarkReadResponse reports an acknowledgement.
type MarkReadResponse struct {
	ID     string     `json:"id"`
	IsRead bool       `json:"isRead"`
	ReadAt *time.Time `json:"readAt,omitempty"`
}

// ============= SSE =============

// SSEEvent is pushed to stream subscribers when a notification lands.
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

// SSETokenResponse carries a short-lived stream token.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ToResponse converts an entity to its external view.
func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		Type:        n.Type,
		Priority:    n.Priority,
		Source:      n.Source,
		CallbackURL: n.CallbackURL,
		Metadata:    n.Metadata,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		ReceivedAt:  n.ReceivedAt,
	}
}

// RawPayload is one normalized third-party payload as delivered by a poll.
type RawPayload = json.RawMessage
