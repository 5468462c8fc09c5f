package notification

import (
	"encoding/json"
	"strings"

	"github.com/LoosePrince/Huisheen/internal/domain/notification"
)

// Field aliases accepted from third-party payloads, in priority order.
var (
	titleKeys    = []string{"title", "subject", "message"}
	contentKeys  = []string{"content", "body", "description", "message"}
	idKeys       = []string{"id", "uuid", "external_id"}
	callbackKeys = []string{"callback_url", "callbackUrl", "link", "url"}
)

// extracted is the usable part of one arbitrary third-party payload.
type extracted struct {
	Title       string
	Content     string
	Type        notification.Type
	Priority    notification.Priority
	ExternalID  *string
	CallbackURL *string
	Metadata    map[string]interface{}
}

// extractPayload pulls notification fields out of an arbitrary JSON object
// using the field aliases above. Payloads yielding neither title nor content
// are rejected; everything else is coerced and truncated, never refused.
func extractPayload(payload json.RawMessage) (*extracted, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return nil, notification.ErrEmptyPayload
	}

	title := firstString(fields, titleKeys)
	content := firstString(fields, contentKeys)
	if title == "" && content == "" {
		return nil, notification.ErrEmptyPayload
	}
	if title == "" {
		title = content
	}
	if content == "" {
		content = title
	}

	out := &extracted{
		Title:    truncate(title, notification.MaxTitleLen),
		Content:  truncate(content, notification.MaxContentLen),
		Type:     coerceType(firstString(fields, []string{"type"})),
		Priority: coercePriority(firstString(fields, []string{"priority"})),
	}

	if id := firstScalar(fields, idKeys); id != "" {
		out.ExternalID = &id
	}
	if cb := firstString(fields, callbackKeys); cb != "" {
		cb = truncate(cb, notification.MaxCallbackURLLen)
		out.CallbackURL = &cb
	}
	if meta, ok := fields["metadata"].(map[string]interface{}); ok {
		out.Metadata = meta
	}

	return out, nil
}

// coerceType maps unknown notification types to info.
func coerceType(raw string) notification.Type {
	t := notification.Type(strings.ToLower(strings.TrimSpace(raw)))
	if notification.ValidType(t) {
		return t
	}
	return notification.TypeInfo
}

// coercePriority maps unknown priorities to normal.
func coercePriority(raw string) notification.Priority {
	p := notification.Priority(strings.ToLower(strings.TrimSpace(raw)))
	if notification.ValidPriority(p) {
		return p
	}
	return notification.PriorityNormal
}

// firstString returns the first non-empty string value among keys.
func firstString(fields map[string]interface{}, keys []string) string {
	for _, key := range keys {
		if s, ok := fields[key].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstScalar is like firstString but also accepts numeric ids, rendering
// them the way the payload spelled them.
func firstScalar(fields map[string]interface{}, keys []string) string {
	for _, key := range keys {
		switch v := fields[key].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		case float64:
			b, err := json.Marshal(v)
			if err == nil {
				return string(b)
			}
		}
	}
	return ""
}

// truncate limits s to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
