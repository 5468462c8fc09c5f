package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/domain/user"
	"github.com/LoosePrince/Huisheen/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// A failing third-party endpoint is the service's fault, not ours
	var external *subscription.ExternalServiceError
	if errors.As(err, &external) {
		BadGateway(w, "Third-party service request failed", map[string]string{
			"endpoint": external.Endpoint,
		})
		return
	}

	// Manual trigger cooldown carries the remaining wait
	var cooldown *subscription.CooldownError
	if errors.As(err, &cooldown) {
		TooManyRequests(w, "Manual poll is on cooldown", map[string]string{
			"retry_after_seconds": strconv.Itoa(cooldown.RemainingSeconds),
		})
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrWrongTokenType):
		Unauthorized(w, "Wrong token type")
	case errors.Is(err, auth.ErrNotifyCodeExpired):
		Unauthorized(w, "Notify code expired")
	case errors.Is(err, auth.ErrInvalidNotifyCode):
		Unauthorized(w, "Invalid notify code")
	case errors.Is(err, auth.ErrIdentityMismatch):
		Forbidden(w, "Notify identity does not match the subscription owner")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserDisabled):
		Forbidden(w, "User account is disabled")

	// Subscription domain errors
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		NotFound(w, "Subscription not found")
	case errors.Is(err, subscription.ErrSubscriptionDisabled):
		Forbidden(w, "Subscription is disabled")
	case errors.Is(err, subscription.ErrServiceDisabled):
		Forbidden(w, "Service is disabled by the operator")
	case errors.Is(err, subscription.ErrNotPassive):
		BadRequest(w, "Subscription is not in passive mode", nil)
	case errors.Is(err, subscription.ErrInvalidURL):
		BadRequest(w, "Invalid third-party URL", nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrEmptyPayload):
		BadRequest(w, "Payload has no usable content", nil)

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
