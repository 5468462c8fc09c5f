package subscription

import "time"

// ============= Request DTOs =============

// SubscribePassiveRequest creates or refreshes a passive subscription.
type SubscribePassiveRequest struct {
	APIURL string `json:"apiUrl"`
}

// SubscribeActiveRequest verifies a notify code and creates or refreshes an
// active subscription, issuing a fresh push token.
type SubscribeActiveRequest struct {
	NotifyCode     string `json:"notifyCode"`
	ThirdPartyName string `json:"thirdPartyName"`
	ThirdPartyURL  string `json:"thirdPartyUrl"`
}

// SetStatusRequest toggles the owner's enable/disable flag.
type SetStatusRequest struct {
	IsActive bool `json:"isActive"`
}

// SetServiceStatusRequest is the operator kill switch for a whole service host.
type SetServiceStatusRequest struct {
	IsActive bool   `json:"isActive"`
	Reason   string `json:"reason,omitempty"`
}

// ============= Response DTOs =============

// SubscriptionResponse is the owner-facing view of a subscription. The push
// token is never included.
type SubscriptionResponse struct {
	ID                     string     `json:"id"`
	ServiceHost            string     `json:"serviceHost"`
	ThirdPartyName         string     `json:"thirdPartyName"`
	ThirdPartyURL          string     `json:"thirdPartyUrl"`
	Mode                   Mode       `json:"mode"`
	APIEndpoint            *string    `json:"apiEndpoint,omitempty"`
	PollingIntervalMinutes int        `json:"pollingInterval,omitempty"`
	IsActive               bool       `json:"isActive"`
	ServiceActive          bool       `json:"serviceActive"`
	SubscribedAt           time.Time  `json:"subscribedAt"`
	LastPolledAt           *time.Time `json:"lastPolledAt,omitempty"`
	LastNotificationAt     *time.Time `json:"lastNotificationAt,omitempty"`
	NotificationCount      int        `json:"notificationCount"`
}

// SubscribePassiveResponse reports the subscription and what the service-info
// probe discovered (or the defaults it fell back to).
type SubscribePassiveResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	Updated      bool                 `json:"updated"`
	ServiceInfo  ServiceInfo          `json:"serviceInfo"`
}

// SubscribeActiveResponse carries the freshly issued push token. This is the
// only time the token is returned.
type SubscribeActiveResponse struct {
	Subscription SubscriptionResponse `json:"subscription"`
	Updated      bool                 `json:"updated"`
	Token        string               `json:"token"`
}

// TriggerPollResponse is the immediate feedback for a manual poll.
type TriggerPollResponse struct {
	NewNotifications  int       `json:"newNotifications"`
	NotificationCount int       `json:"notificationCount"`
	PolledAt          time.Time `json:"polledAt"`
}

// ServiceInfo is the self-describing metadata a third party may expose at
// {scheme}://{host}/api/service-info.
type ServiceInfo struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	PollingInterval int    `json:"polling_interval,omitempty"`
	APIEndpoint     string `json:"api_endpoint,omitempty"`
	OwnerNotifyID   string `json:"owner_notify_id,omitempty"`
}

// ToResponse converts an entity to its owner-facing view.
func ToResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:                     s.ID,
		ServiceHost:            s.ServiceHost,
		ThirdPartyName:         s.ThirdPartyName,
		ThirdPartyURL:          s.ThirdPartyURL,
		Mode:                   s.Mode,
		APIEndpoint:            s.APIEndpoint,
		PollingIntervalMinutes: s.PollingIntervalMinutes,
		IsActive:               s.IsActive,
		ServiceActive:          s.ServiceActive,
		SubscribedAt:           s.SubscribedAt,
		LastPolledAt:           s.LastPolledAt,
		LastNotificationAt:     s.LastNotificationAt,
		NotificationCount:      s.NotificationCount,
	}
}
