package auth

import "errors"

// Auth domain errors. Expired credentials are distinct from malformed or
// badly signed ones so handlers can report them separately.
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrTokenExpired      = errors.New("token expired")
	ErrInvalidNotifyCode = errors.New("invalid notify code")
	ErrNotifyCodeExpired = errors.New("notify code expired or not issued")
	ErrIdentityMismatch  = errors.New("notify id does not match token owner")
	ErrWrongTokenType    = errors.New("wrong token type")
)
