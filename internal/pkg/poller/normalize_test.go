package poller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareArray(t *testing.T) {
	payloads, err := Normalize([]byte(`[{"title":"a"},{"title":"b"}]`))
	require.NoError(t, err)
	require.Len(t, payloads, 2)
	assert.JSONEq(t, `{"title":"a"}`, string(payloads[0]))
}

func TestNormalizeNotificationsEnvelope(t *testing.T) {
	payloads, err := Normalize([]byte(`{"notifications":[{"title":"a"}],"count":1}`))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"title":"a"}`, string(payloads[0]))
}

func TestNormalizeDataEnvelope(t *testing.T) {
	payloads, err := Normalize([]byte(`{"data":[{"title":"a"},{"title":"b"},{"title":"c"}]}`))
	require.NoError(t, err)
	assert.Len(t, payloads, 3)
}

func TestNormalizeNotificationsWinsOverData(t *testing.T) {
	payloads, err := Normalize([]byte(`{"notifications":[{"title":"n"}],"data":[{"title":"d"}]}`))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"title":"n"}`, string(payloads[0]))
}

func TestNormalizeSingleObject(t *testing.T) {
	payloads, err := Normalize([]byte(`{"title":"only one"}`))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"title":"only one"}`, string(payloads[0]))
}

func TestNormalizeNonArrayEnvelopeFieldFallsThrough(t *testing.T) {
	// notifications holds a string, so the whole object is the payload
	payloads, err := Normalize([]byte(`{"notifications":"nope","title":"x"}`))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"notifications":"nope","title":"x"}`, string(payloads[0]))
}

func TestNormalizeEmptyArray(t *testing.T) {
	payloads, err := Normalize([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, payloads)
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Normalize([]byte(`not json`))
	assert.Error(t, err)

	_, err = Normalize([]byte(``))
	assert.Error(t, err)

	_, err = Normalize([]byte(`[1, {"broken"`))
	assert.Error(t, err)
}
