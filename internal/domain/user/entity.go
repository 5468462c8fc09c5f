package user

import (
	"time"
)

// User is owned by the account system. This core reads it to resolve notify
// identities and only ever mutates the verification code fields.
type User struct {
	ID       string
	Username string
	Email    string

	// NotifyID is the stable opaque identity embedded in notify codes,
	// formatted as three dash-separated groups of four hex digits.
	NotifyID string

	// VerificationCode is the short-lived bootstrap code for new
	// subscriptions. Rotating it invalidates the previous code.
	VerificationCode        *string
	VerificationCodeExpires *time.Time

	IsActive  bool
	IsAdmin   bool
	CreatedAt time.Time
}
