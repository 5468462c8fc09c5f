package poller

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Normalize maps a third-party poll response body onto a flat list of
// notification payloads. Recognized shapes, tried in order:
//
//	[ {...}, ... ]                  bare array
//	{ "notifications": [ ... ] }    wrapped array
//	{ "data": [ ... ] }             wrapped array
//	{ ... }                         single payload
//
// An empty array normalizes to an empty list, not an error.
func Normalize(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("parse response array: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	for _, key := range []string{"notifications", "data"} {
		wrapped, ok := envelope[key]
		if !ok {
			continue
		}
		inner := bytes.TrimSpace(wrapped)
		if len(inner) == 0 || inner[0] != '[' {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("parse %s array: %w", key, err)
		}
		return items, nil
	}

	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
