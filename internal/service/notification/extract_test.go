package notification

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPayloadFieldAliases(t *testing.T) {
	cases := []struct {
		name        string
		payload     string
		wantTitle   string
		wantContent string
	}{
		{
			name:        "canonical fields",
			payload:     `{"title":"T","content":"C"}`,
			wantTitle:   "T",
			wantContent: "C",
		},
		{
			name:        "subject and body",
			payload:     `{"subject":"S","body":"B"}`,
			wantTitle:   "S",
			wantContent: "B",
		},
		{
			name:        "message fills both",
			payload:     `{"message":"M"}`,
			wantTitle:   "M",
			wantContent: "M",
		},
		{
			name:        "title preferred over subject",
			payload:     `{"title":"T","subject":"S","description":"D"}`,
			wantTitle:   "T",
			wantContent: "D",
		},
		{
			name:        "content copied from title when missing",
			payload:     `{"title":"only title"}`,
			wantTitle:   "only title",
			wantContent: "only title",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := extractPayload(json.RawMessage(c.payload))
			require.NoError(t, err)
			assert.Equal(t, c.wantTitle, got.Title)
			assert.Equal(t, c.wantContent, got.Content)
		})
	}
}

func TestExtractPayloadRejectsUnusable(t *testing.T) {
	for _, payload := range []string{
		`{}`,
		`{"count":3}`,
		`{"title":"   "}`,
		`"just a string"`,
		`[1,2,3]`,
	} {
		_, err := extractPayload(json.RawMessage(payload))
		assert.ErrorIs(t, err, notification.ErrEmptyPayload, "payload %s", payload)
	}
}

func TestExtractPayloadCoercion(t *testing.T) {
	got, err := extractPayload(json.RawMessage(`{"title":"T","type":"CRITICAL","priority":"whatever"}`))
	require.NoError(t, err)
	assert.Equal(t, notification.TypeInfo, got.Type)
	assert.Equal(t, notification.PriorityNormal, got.Priority)

	got, err = extractPayload(json.RawMessage(`{"title":"T","type":"Warning","priority":"URGENT"}`))
	require.NoError(t, err)
	assert.Equal(t, notification.TypeWarning, got.Type)
	assert.Equal(t, notification.PriorityUrgent, got.Priority)
}

func TestExtractPayloadExternalID(t *testing.T) {
	got, err := extractPayload(json.RawMessage(`{"title":"T","id":"evt-1"}`))
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "evt-1", *got.ExternalID)

	// Numeric ids are kept
	got, err = extractPayload(json.RawMessage(`{"title":"T","id":42}`))
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "42", *got.ExternalID)

	// uuid and external_id are accepted aliases
	got, err = extractPayload(json.RawMessage(`{"title":"T","external_id":"x-9"}`))
	require.NoError(t, err)
	require.NotNil(t, got.ExternalID)
	assert.Equal(t, "x-9", *got.ExternalID)

	// No id-like field means no dedup key
	got, err = extractPayload(json.RawMessage(`{"title":"T"}`))
	require.NoError(t, err)
	assert.Nil(t, got.ExternalID)
}

func TestExtractPayloadCallbackAliases(t *testing.T) {
	for alias, want := range map[string]string{
		"callback_url": "https://a.example/1",
		"callbackUrl":  "https://a.example/2",
		"link":         "https://a.example/3",
		"url":          "https://a.example/4",
	} {
		payload := `{"title":"T","` + alias + `":"` + want + `"}`
		got, err := extractPayload(json.RawMessage(payload))
		require.NoError(t, err)
		require.NotNil(t, got.CallbackURL, "alias %s", alias)
		assert.Equal(t, want, *got.CallbackURL)
	}
}

func TestExtractPayloadTruncation(t *testing.T) {
	long := strings.Repeat("x", 3000)
	payload, err := json.Marshal(map[string]string{"title": long, "content": long, "url": "https://e.com/" + long})
	require.NoError(t, err)

	got, err := extractPayload(payload)
	require.NoError(t, err)
	assert.Len(t, got.Title, notification.MaxTitleLen)
	assert.Len(t, got.Content, notification.MaxContentLen)
	require.NotNil(t, got.CallbackURL)
	assert.Len(t, *got.CallbackURL, notification.MaxCallbackURLLen)
}

func TestExtractPayloadMetadata(t *testing.T) {
	got, err := extractPayload(json.RawMessage(`{"title":"T","metadata":{"k":"v","n":1}}`))
	require.NoError(t, err)
	assert.Equal(t, "v", got.Metadata["k"])
}
