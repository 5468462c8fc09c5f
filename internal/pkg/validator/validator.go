package validator

import (
	"net/url"
	"regexp"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Notify id: three groups of four lowercase hex digits.
var notifyIDRegex = regexp.MustCompile(`^[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}$`)

func IsValidNotifyID(notifyID string) bool {
	return notifyIDRegex.MatchString(notifyID)
}

var uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// UUID validation
func IsValidUUID(uuid string) bool {
	return uuidRegex.MatchString(strings.ToLower(uuid))
}

// ServiceHost derives the identity key of a third-party service from any of
// its URLs: the lowercased host (including port when present). Scheme must be
// http or https and a host must be present.
func ServiceHost(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errUnsupportedScheme}
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errMissingHost}
	}
	return strings.ToLower(u.Host), nil
}

// BaseURL returns scheme://host for a service URL, the prefix probe and poll
// requests are built on.
func BaseURL(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errUnsupportedScheme}
	}
	if u.Host == "" {
		return "", &url.Error{Op: "parse", URL: rawURL, Err: errMissingHost}
	}
	return u.Scheme + "://" + strings.ToLower(u.Host), nil
}

// IsValidThirdPartyURL reports whether a URL can identify a service.
func IsValidThirdPartyURL(rawURL string) bool {
	_, err := ServiceHost(rawURL)
	return err == nil
}

type parseError string

func (e parseError) Error() string { return string(e) }

const (
	errUnsupportedScheme = parseError("scheme must be http or https")
	errMissingHost       = parseError("missing host")
)
