package auth

import (
	"context"
	"errors"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/user"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/LoosePrince/Huisheen/internal/pkg/validator"
)

// notifyCodeValidity is how long a freshly rotated verification code lives.
const notifyCodeValidity = 5 * time.Minute

type service struct {
	users  user.Repository
	tokens token.Service
	domain string
}

// NewAuthService creates the notify-code service. domain is the public
// website domain embedded in generated notify codes.
func NewAuthService(users user.Repository, tokens token.Service, domain string) auth.Service {
	return &service{
		users:  users,
		tokens: tokens,
		domain: domain,
	}
}

// GenerateNotifyCode implements auth.Service.
func (s *service) GenerateNotifyCode(ctx context.Context, userID string) (*auth.NotifyCodeResponse, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserDisabled
	}

	code, err := token.NewVerificationCode()
	if err != nil {
		return nil, err
	}
	expiresAt := time.Now().Add(notifyCodeValidity)

	if err := s.users.RotateNotifyCode(ctx, u.ID, code, expiresAt); err != nil {
		return nil, err
	}

	return &auth.NotifyCodeResponse{
		NotifyCode: token.FormatNotifyCode(u.NotifyID, code, s.domain),
		ExpiresAt:  expiresAt,
	}, nil
}

// ExchangeNotifyCode implements auth.Service.
func (s *service) ExchangeNotifyCode(ctx context.Context, req auth.ExchangeNotifyCodeRequest) (*auth.ExchangeNotifyCodeResponse, error) {
	if validator.IsEmpty(req.ThirdPartyName) {
		return nil, validator.ValidationErrors{{Field: "thirdPartyName", Message: "third party name is required"}}
	}

	u, err := s.ResolveNotifyCode(ctx, req.NotifyCode)
	if err != nil {
		return nil, err
	}

	tok, expiresAt, err := s.tokens.GenerateExternalToken(u.NotifyID, u.ID, req.ThirdPartyName)
	if err != nil {
		return nil, err
	}

	return &auth.ExchangeNotifyCodeResponse{
		Token:     tok,
		ExpiresAt: expiresAt,
		UserInfo: auth.UserInfo{
			NotifyID: u.NotifyID,
			Username: u.Username,
		},
	}, nil
}

// ResolveNotifyCode implements auth.Service.
func (s *service) ResolveNotifyCode(ctx context.Context, notifyCode string) (*user.User, error) {
	notifyID, code, err := token.ParseNotifyCode(notifyCode)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByNotifyID(ctx, notifyID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, auth.ErrInvalidNotifyCode
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, user.ErrUserDisabled
	}

	if u.VerificationCode == nil || *u.VerificationCode != code {
		return nil, auth.ErrInvalidNotifyCode
	}
	if u.VerificationCodeExpires == nil || !u.VerificationCodeExpires.After(time.Now()) {
		return nil, auth.ErrNotifyCodeExpired
	}

	return u, nil
}
