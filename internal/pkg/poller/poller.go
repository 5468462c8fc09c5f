package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"golang.org/x/sync/errgroup"
)

// maxResponseBytes caps how much of a poll response is read.
const maxResponseBytes = 4 << 20

// SubscriptionStore is the slice of subscription storage the poller needs.
type SubscriptionStore interface {
	ListPollable(ctx context.Context) ([]*subscription.Subscription, error)
	StampPolled(ctx context.Context, ids []string, at time.Time) error
}

// Ingestor persists normalized payloads for a subscription.
type Ingestor interface {
	IngestPolled(ctx context.Context, sub *subscription.Subscription, payload json.RawMessage) (bool, error)
}

// PollResult reports what a single fetch produced.
type PollResult struct {
	Payloads         int
	NewNotifications int
	PolledAt         time.Time
}

// Poller fetches third-party endpoints and feeds their payloads into the
// notification store. Subscriptions sharing an endpoint URL are polled with
// one request per tick, however many users subscribe to it.
type Poller struct {
	store         SubscriptionStore
	ingest        Ingestor
	client        *http.Client
	logger        *slog.Logger
	maxConcurrent int
}

// New creates a poller. pollTimeout bounds each HTTP request and
// maxConcurrent bounds how many endpoint groups are fetched at once.
func New(store SubscriptionStore, ingest Ingestor, logger *slog.Logger, pollTimeout time.Duration, maxConcurrent int) *Poller {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Poller{
		store:         store,
		ingest:        ingest,
		client:        &http.Client{Timeout: pollTimeout},
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// RunTick performs one scheduling pass: it groups pollable subscriptions by
// endpoint, fetches every group with at least one due member, and fans the
// payloads out to the group's members. A failing group never fails the tick.
func (p *Poller) RunTick(ctx context.Context, now time.Time) error {
	subs, err := p.store.ListPollable(ctx)
	if err != nil {
		return fmt.Errorf("list pollable subscriptions: %w", err)
	}

	groups := make(map[string][]*subscription.Subscription)
	for _, sub := range subs {
		if !sub.Pollable() {
			continue
		}
		endpoint := *sub.APIEndpoint
		groups[endpoint] = append(groups[endpoint], sub)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.maxConcurrent)

	polled := 0
	for endpoint, members := range groups {
		due := false
		for _, m := range members {
			if m.Due(now) {
				due = true
				break
			}
		}
		if !due {
			continue
		}
		polled++

		endpoint, members := endpoint, members
		g.Go(func() error {
			p.pollGroup(gctx, endpoint, members, now)
			return nil
		})
	}

	_ = g.Wait()

	if polled > 0 {
		p.logger.Debug("poll tick finished",
			"groups_total", len(groups),
			"groups_polled", polled,
			"subscriptions", len(subs))
	}
	return nil
}

// PollOne fetches a single subscription's endpoint immediately, outside the
// group schedule. The caller is expected to have claimed any cooldown.
func (p *Poller) PollOne(ctx context.Context, sub *subscription.Subscription) (*PollResult, error) {
	if !sub.Pollable() {
		return nil, subscription.ErrNotPassive
	}

	now := time.Now()
	if err := p.store.StampPolled(ctx, []string{sub.ID}, now); err != nil {
		return nil, fmt.Errorf("stamp poll time: %w", err)
	}

	payloads, err := p.fetch(ctx, *sub.APIEndpoint)
	if err != nil {
		return nil, err
	}

	created := 0
	for _, payload := range payloads {
		ok, err := p.ingest.IngestPolled(ctx, sub, payload)
		if err != nil {
			p.logger.Warn("payload rejected during manual poll",
				"subscription_id", sub.ID, "error", err)
			continue
		}
		if ok {
			created++
		}
	}

	return &PollResult{
		Payloads:         len(payloads),
		NewNotifications: created,
		PolledAt:         now,
	}, nil
}

// pollGroup performs one fetch for an endpoint and delivers the payloads to
// every member subscription. All members are stamped before the request so a
// slow or failing endpoint is not retried until its interval elapses again.
func (p *Poller) pollGroup(ctx context.Context, endpoint string, members []*subscription.Subscription, now time.Time) {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	if err := p.store.StampPolled(ctx, ids, now); err != nil {
		p.logger.Error("failed to stamp poll time", "endpoint", endpoint, "error", err)
		return
	}

	payloads, err := p.fetch(ctx, endpoint)
	if err != nil {
		p.logger.Warn("poll failed", "endpoint", endpoint, "subscriptions", len(members), "error", err)
		return
	}
	if len(payloads) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, member := range members {
		member := member
		wg.Add(1)
		go func() {
			defer wg.Done()
			created := 0
			for _, payload := range payloads {
				ok, err := p.ingest.IngestPolled(ctx, member, payload)
				if err != nil {
					p.logger.Warn("payload rejected",
						"subscription_id", member.ID, "endpoint", endpoint, "error", err)
					continue
				}
				if ok {
					created++
				}
			}
			if created > 0 {
				p.logger.Info("poll delivered notifications",
					"subscription_id", member.ID, "endpoint", endpoint, "created", created)
			}
		}()
	}
	wg.Wait()
}

// fetch performs the GET and normalizes the response body.
func (p *Poller) fetch(ctx context.Context, endpoint string) ([]json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &subscription.ExternalServiceError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &subscription.ExternalServiceError{Endpoint: endpoint, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &subscription.ExternalServiceError{Endpoint: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	payloads, err := Normalize(body)
	if err != nil {
		return nil, &subscription.ExternalServiceError{Endpoint: endpoint, Err: err}
	}
	return payloads, nil
}
