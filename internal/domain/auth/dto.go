package auth

import "time"

// ============= Request DTOs =============

// ExchangeNotifyCodeRequest asks for a 30-day external read-access token in
// exchange for a short-lived notify code.
type ExchangeNotifyCodeRequest struct {
	NotifyCode     string `json:"notifyCode"`
	ThirdPartyName string `json:"thirdPartyName"`
	ThirdPartyURL  string `json:"thirdPartyUrl,omitempty"`
}

// ============= Response DTOs =============

// ExchangeNotifyCodeResponse carries the issued external API token.
type ExchangeNotifyCodeResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserInfo  UserInfo  `json:"userInfo"`
}

type UserInfo struct {
	NotifyID string `json:"notifyId"`
	Username string `json:"username"`
}

// NotifyCodeResponse carries a freshly rotated notify code for the owner.
type NotifyCodeResponse struct {
	NotifyCode string    `json:"notifyCode"`
	ExpiresAt  time.Time `json:"expiresAt"`
}
