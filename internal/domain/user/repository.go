package user

import (
	"context"
	"time"
)

// Repository defines the user repository interface
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByNotifyID(ctx context.Context, notifyID string) (*User, error)

	// RotateNotifyCode stores a freshly generated verification code,
	// replacing any previous one.
	RotateNotifyCode(ctx context.Context, userID string, code string, expiresAt time.Time) error
}
