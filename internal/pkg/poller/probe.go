package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/codeGROOVE-dev/retry"
)

const (
	serviceInfoPath = "/api/service-info"
	userAgent       = "Huisheen-Polling-Service/1.0"
)

// Prober fetches a third-party service's self-description.
type Prober struct {
	client *http.Client
}

// NewProber creates a prober. timeout bounds each probe request.
func NewProber(timeout time.Duration) *Prober {
	return &Prober{
		client: &http.Client{Timeout: timeout},
	}
}

// Probe fetches {baseURL}/api/service-info. One retry covers transient
// network failures; HTTP error statuses are not retried.
func (p *Prober) Probe(ctx context.Context, baseURL string) (*subscription.ServiceInfo, error) {
	var info subscription.ServiceInfo

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+serviceInfoPath, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("User-Agent", userAgent)
			req.Header.Set("Accept", "application/json")

			resp, err := p.client.Do(req)
			if err != nil {
				return fmt.Errorf("probe %s: %w", baseURL, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(fmt.Errorf("probe %s: unexpected status %d", baseURL, resp.StatusCode))
			}

			body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			if err != nil {
				return fmt.Errorf("probe %s: read body: %w", baseURL, err)
			}
			if err := json.Unmarshal(body, &info); err != nil {
				return retry.Unrecoverable(fmt.Errorf("probe %s: parse service info: %w", baseURL, err))
			}
			return nil
		},
		retry.Attempts(2),
		retry.Delay(500*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &info, nil
}
