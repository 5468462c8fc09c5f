package auth

import (
	"context"

	"github.com/LoosePrince/Huisheen/internal/domain/user"
)

// Service issues and exchanges notify-code credentials.
type Service interface {
	// GenerateNotifyCode rotates the caller's verification code and returns
	// the full notify code string. The previous code becomes invalid.
	GenerateNotifyCode(ctx context.Context, userID string) (*NotifyCodeResponse, error)

	// ResolveNotifyCode parses and verifies a notify code, returning the
	// user it identifies. Expired codes for the right user are reported
	// distinctly from wrong codes.
	ResolveNotifyCode(ctx context.Context, notifyCode string) (*user.User, error)

	// ExchangeNotifyCode validates a notify code and issues a 30-day
	// external read-access token.
	ExchangeNotifyCode(ctx context.Context, req ExchangeNotifyCodeRequest) (*ExchangeNotifyCodeResponse, error)
}
