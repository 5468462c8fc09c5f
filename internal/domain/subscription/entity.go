package subscription

import (
	"time"
)

// Mode determines how notifications reach the platform
type Mode string

const (
	// ModeActive means the third party pushes directly using a signed token
	ModeActive Mode = "active"
	// ModePassive means the platform polls the third party on a timer
	ModePassive Mode = "passive"
)

// Subscription binds one user to one external service in one mode.
// At most one subscription exists per (user, serviceHost, mode).
type Subscription struct {
	ID     string
	UserID string

	// ServiceHost is the lower-cased host:port extracted from the
	// third-party URL. It is the identity key for the one-subscription-
	// per-service-per-mode rule and is derived once at creation time.
	ServiceHost    string
	ThirdPartyName string
	ThirdPartyURL  string
	Mode           Mode

	// Passive mode
	APIEndpoint            *string
	PollingIntervalMinutes int
	LastPolledAt           *time.Time
	LastManualTriggerAt    *time.Time

	// Active mode
	Token *string

	// IsActive is the owner's enable/disable toggle. ServiceActive is the
	// operator kill switch and overrides the owner's toggle.
	IsActive            bool
	ServiceActive       bool
	ServiceStatusReason *string

	SubscribedAt       time.Time
	LastNotificationAt *time.Time
	NotificationCount  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Pollable reports whether the background scheduler should consider this
// subscription at all.
func (s *Subscription) Pollable() bool {
	return s.Mode == ModePassive &&
		s.IsActive &&
		s.ServiceActive &&
		s.APIEndpoint != nil && *s.APIEndpoint != ""
}

// Due reports whether the polling interval has elapsed at the given time.
// A never-polled subscription is always due.
func (s *Subscription) Due(now time.Time) bool {
	if s.LastPolledAt == nil {
		return true
	}
	interval := time.Duration(s.PollingIntervalMinutes) * time.Minute
	return !now.Before(s.LastPolledAt.Add(interval))
}

// Accepting reports whether the subscription may receive notifications.
func (s *Subscription) Accepting() bool {
	return s.IsActive && s.ServiceActive
}
