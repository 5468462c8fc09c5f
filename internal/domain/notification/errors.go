package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrEmptyPayload         = errors.New("payload has no usable content")
)
