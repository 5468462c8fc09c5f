package poller

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	subs    []*subscription.Subscription
	stamped map[string]time.Time
}

func newFakeStore(subs ...*subscription.Subscription) *fakeStore {
	return &fakeStore{subs: subs, stamped: make(map[string]time.Time)}
}

func (f *fakeStore) ListPollable(ctx context.Context) ([]*subscription.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*subscription.Subscription
	for _, s := range f.subs {
		if s.Pollable() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) StampPolled(ctx context.Context, ids []string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range ids {
		f.stamped[id] = at
	}
	return nil
}

type fakeIngestor struct {
	mu       sync.Mutex
	received map[string][]string // subscription id -> payload titles
}

func newFakeIngestor() *fakeIngestor {
	return &fakeIngestor{received: make(map[string][]string)}
}

func (f *fakeIngestor) IngestPolled(ctx context.Context, sub *subscription.Subscription, payload json.RawMessage) (bool, error) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received[sub.ID] = append(f.received[sub.ID], body.Title)
	return true, nil
}

func (f *fakeIngestor) titles(subID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.received[subID]...)
}

func passiveSub(id, endpoint string, lastPolled *time.Time, interval int) *subscription.Subscription {
	return &subscription.Subscription{
		ID:                     id,
		UserID:                 "user-" + id,
		ServiceHost:            "svc.example.com",
		ThirdPartyName:         "Example",
		Mode:                   subscription.ModePassive,
		APIEndpoint:            &endpoint,
		PollingIntervalMinutes: interval,
		LastPolledAt:           lastPolled,
		IsActive:               true,
		ServiceActive:          true,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunTickOneRequestPerEndpointGroup(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"notifications":[{"title":"shared"}]}`))
	}))
	defer srv.Close()

	endpoint := srv.URL + "/api/notifications"
	store := newFakeStore(
		passiveSub("s1", endpoint, nil, 5),
		passiveSub("s2", endpoint, nil, 5),
		passiveSub("s3", endpoint, nil, 5),
	)
	ingest := newFakeIngestor()
	p := New(store, ingest, testLogger(), 5*time.Second, 4)

	require.NoError(t, p.RunTick(context.Background(), time.Now()))

	assert.Equal(t, int64(1), hits.Load(), "endpoint group must be fetched once")
	for _, id := range []string{"s1", "s2", "s3"} {
		assert.Equal(t, []string{"shared"}, ingest.titles(id), "every member receives the payload")
		_, ok := store.stamped[id]
		assert.True(t, ok, "every member is stamped")
	}
}

func TestRunTickSkipsGroupsNotDue(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	recent := time.Now().Add(-1 * time.Minute)
	store := newFakeStore(passiveSub("s1", srv.URL, &recent, 10))
	p := New(store, newFakeIngestor(), testLogger(), 5*time.Second, 4)

	require.NoError(t, p.RunTick(context.Background(), time.Now()))
	assert.Equal(t, int64(0), hits.Load())
	assert.Empty(t, store.stamped, "members of a skipped group keep their timestamps")
}

func TestRunTickGroupDueWhenAnyMemberDue(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[{"title":"x"}]`))
	}))
	defer srv.Close()

	recent := time.Now().Add(-1 * time.Minute)
	store := newFakeStore(
		passiveSub("fresh", srv.URL, &recent, 30),
		passiveSub("overdue", srv.URL, nil, 30),
	)
	ingest := newFakeIngestor()
	p := New(store, ingest, testLogger(), 5*time.Second, 4)

	require.NoError(t, p.RunTick(context.Background(), time.Now()))

	assert.Equal(t, int64(1), hits.Load())
	// The not-yet-due member rides along with its group.
	assert.Equal(t, []string{"x"}, ingest.titles("fresh"))
	assert.Equal(t, []string{"x"}, ingest.titles("overdue"))
}

func TestRunTickStampsBeforeRequestOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := newFakeStore(passiveSub("s1", srv.URL, nil, 5))
	ingest := newFakeIngestor()
	p := New(store, ingest, testLogger(), 5*time.Second, 4)

	require.NoError(t, p.RunTick(context.Background(), time.Now()))

	_, ok := store.stamped["s1"]
	assert.True(t, ok, "failed poll still counts as an attempt")
	assert.Empty(t, ingest.titles("s1"))
}

func TestRunTickIsolatesFailingGroup(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"title":"ok"}]`))
	}))
	defer good.Close()

	store := newFakeStore(
		passiveSub("bad", bad.URL, nil, 5),
		passiveSub("good", good.URL, nil, 5),
	)
	ingest := newFakeIngestor()
	p := New(store, ingest, testLogger(), 5*time.Second, 4)

	require.NoError(t, p.RunTick(context.Background(), time.Now()))

	assert.Empty(t, ingest.titles("bad"))
	assert.Equal(t, []string{"ok"}, ingest.titles("good"))
}

func TestPollOne(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"title":"a"},{"title":"b"}]}`))
	}))
	defer srv.Close()

	sub := passiveSub("s1", srv.URL, nil, 5)
	store := newFakeStore(sub)
	ingest := newFakeIngestor()
	p := New(store, ingest, testLogger(), 5*time.Second, 4)

	result, err := p.PollOne(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Payloads)
	assert.Equal(t, 2, result.NewNotifications)
	assert.Equal(t, []string{"a", "b"}, ingest.titles("s1"), "payloads arrive in order")
	_, ok := store.stamped["s1"]
	assert.True(t, ok)
}

func TestPollOneRejectsNonPollable(t *testing.T) {
	sub := passiveSub("s1", "http://example.com", nil, 5)
	sub.IsActive = false

	p := New(newFakeStore(), newFakeIngestor(), testLogger(), time.Second, 1)
	_, err := p.PollOne(context.Background(), sub)
	assert.ErrorIs(t, err, subscription.ErrNotPassive)
}
