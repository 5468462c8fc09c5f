package token

import (
	"errors"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// SubscriptionClaims binds a push token to one subscription, its owner and
// its mode.
type SubscriptionClaims struct {
	SubscriptionID string
	UserID         string
	ThirdPartyName string
	Mode           subscription.Mode
}

// ExternalClaims identify a third party holding a read-access token.
type ExternalClaims struct {
	NotifyID       string
	UserID         string
	ThirdPartyName string
}

// Service signs and verifies every credential the platform issues. It is
// stateless: verification never touches storage.
type Service interface {
	GenerateSubscriptionToken(subscriptionID, userID, thirdPartyName string, mode subscription.Mode) (string, error)
	VerifySubscriptionToken(tokenString string) (*SubscriptionClaims, error)

	GenerateExternalToken(notifyID, userID, thirdPartyName string) (token string, expiresAt time.Time, err error)
	VerifyExternalToken(tokenString string) (*ExternalClaims, error)

	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)

	JWTAuth() *jwtauth.JWTAuth
}

type tokenService struct {
	subscriptionValidity time.Duration
	externalValidity     time.Duration
	tokenAuth            *jwtauth.JWTAuth
}

// NewTokenService creates a token service. subscriptionValidity and
// externalValidity are duration strings such as "8760h" and "720h".
func NewTokenService(secretKey, subscriptionValidity, externalValidity string) (Service, error) {
	subDur, err := time.ParseDuration(subscriptionValidity)
	if err != nil {
		return nil, err
	}
	extDur, err := time.ParseDuration(externalValidity)
	if err != nil {
		return nil, err
	}
	return &tokenService{
		subscriptionValidity: subDur,
		externalValidity:     extDur,
		tokenAuth:            jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (s *tokenService) JWTAuth() *jwtauth.JWTAuth {
	return s.tokenAuth
}

func (s *tokenService) GenerateSubscriptionToken(subscriptionID, userID, thirdPartyName string, mode subscription.Mode) (string, error) {
	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"type":             "subscription",
		"subscription_id":  subscriptionID,
		"user_id":          userID,
		"third_party_name": thirdPartyName,
		"mode":             string(mode),
		"exp":              time.Now().Add(s.subscriptionValidity).Unix(),
	})
	return tokenString, err
}

func (s *tokenService) VerifySubscriptionToken(tokenString string) (*SubscriptionClaims, error) {
	tok, err := s.verify(tokenString, "subscription")
	if err != nil {
		return nil, err
	}
	claims := &SubscriptionClaims{
		SubscriptionID: stringClaim(tok, "subscription_id"),
		UserID:         stringClaim(tok, "user_id"),
		ThirdPartyName: stringClaim(tok, "third_party_name"),
		Mode:           subscription.Mode(stringClaim(tok, "mode")),
	}
	if claims.SubscriptionID == "" || claims.UserID == "" {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

func (s *tokenService) GenerateExternalToken(notifyID, userID, thirdPartyName string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.externalValidity)
	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"type":             "external_api",
		"notify_id":        notifyID,
		"user_id":          userID,
		"third_party_name": thirdPartyName,
		"exp":              expiresAt.Unix(),
	})
	return tokenString, expiresAt, err
}

func (s *tokenService) VerifyExternalToken(tokenString string) (*ExternalClaims, error) {
	tok, err := s.verify(tokenString, "external_api")
	if err != nil {
		return nil, err
	}
	claims := &ExternalClaims{
		NotifyID:       stringClaim(tok, "notify_id"),
		UserID:         stringClaim(tok, "user_id"),
		ThirdPartyName: stringClaim(tok, "third_party_name"),
	}
	if claims.NotifyID == "" || claims.UserID == "" {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// GenerateSSEToken generates a short-lived token for stream connections
func (s *tokenService) GenerateSSEToken(userID string) (string, int, error) {
	expiresIn := 300 // 5 minutes in seconds
	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"type":    "sse",
		"user_id": userID,
		"exp":     time.Now().Add(5 * time.Minute).Unix(),
	})
	if err != nil {
		return "", 0, err
	}
	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates a stream token and returns the user ID
func (s *tokenService) ValidateSSEToken(tokenString string) (string, error) {
	tok, err := s.verify(tokenString, "sse")
	if err != nil {
		return "", err
	}
	userID := stringClaim(tok, "user_id")
	if userID == "" {
		return "", auth.ErrInvalidToken
	}
	return userID, nil
}

// verify checks signature and expiry only, then the token type. Expired
// tokens are reported distinctly from malformed or badly signed ones.
func (s *tokenService) verify(tokenString, wantType string) (jwt.Token, error) {
	tok, err := jwtauth.VerifyToken(s.tokenAuth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return nil, auth.ErrTokenExpired
		}
		return nil, auth.ErrInvalidToken
	}
	if stringClaim(tok, "type") != wantType {
		return nil, auth.ErrWrongTokenType
	}
	return tok, nil
}

func stringClaim(tok jwt.Token, key string) string {
	val, ok := tok.Get(key)
	if !ok {
		return ""
	}
	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}
