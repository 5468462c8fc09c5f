package poller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeParsesServiceInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, serviceInfoPath, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Weather Service","polling_interval":15,"api_endpoint":"/api/notifications"}`))
	}))
	defer srv.Close()

	info, err := NewProber(2*time.Second).Probe(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Weather Service", info.Name)
	assert.Equal(t, 15, info.PollingInterval)
	assert.Equal(t, "/api/notifications", info.APIEndpoint)
}

func TestProbeDoesNotRetryHTTPErrors(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewProber(2*time.Second).Probe(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Equal(t, int64(1), hits.Load())
}

func TestProbeRejectsMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	_, err := NewProber(2*time.Second).Probe(context.Background(), srv.URL)
	assert.Error(t, err)
}
