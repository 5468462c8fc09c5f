package notification

import (
	"encoding/json"
	"time"
)

// Type classifies a notification
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
	TypeSuccess Type = "success"
)

// Priority orders notifications for display
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Field length maxima. Payloads come from untrusted third parties and are
// truncated rather than rejected.
const (
	MaxTitleLen       = 200
	MaxContentLen     = 2000
	MaxCallbackURLLen = 500
)

// ValidType reports whether t is a known notification type.
func ValidType(t Type) bool {
	switch t {
	case TypeInfo, TypeWarning, TypeError, TypeSuccess:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Source is a snapshot of where a notification came from, taken at ingestion
// time so deleting the subscription keeps the provenance readable.
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
	Icon string `json:"icon,omitempty"`
}

// Notification is one delivered message.
type Notification struct {
	ID             string
	UserID         string
	SubscriptionID string
	Title          string
	Content        string
	Type           Type
	Priority       Priority
	Source         Source
	CallbackURL    *string

	// ExternalID is the dedup key within a subscription. Nil means the
	// source supplied no stable id and the record is never deduplicated.
	ExternalID *string

	Metadata   map[string]interface{}
	RawData    json.RawMessage
	IsRead     bool
	ReadAt     *time.Time
	ReceivedAt time.Time
}
