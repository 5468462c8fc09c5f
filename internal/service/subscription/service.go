package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/auth"
	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/pkg/poller"
	"github.com/LoosePrince/Huisheen/internal/pkg/token"
	"github.com/LoosePrince/Huisheen/internal/pkg/validator"
)

// manualTriggerCooldown throttles on-demand polls per subscription.
const manualTriggerCooldown = 60 * time.Second

type service struct {
	subs            subscription.Repository
	authSvc         auth.Service
	tokens          token.Service
	prober          *poller.Prober
	poll            *poller.Poller
	logger          *slog.Logger
	defaultInterval int
}

// NewSubscriptionService creates the subscription registry service.
func NewSubscriptionService(
	subs subscription.Repository,
	authSvc auth.Service,
	tokens token.Service,
	prober *poller.Prober,
	poll *poller.Poller,
	logger *slog.Logger,
	defaultInterval int,
) subscription.Service {
	return &service{
		subs:            subs,
		authSvc:         authSvc,
		tokens:          tokens,
		prober:          prober,
		poll:            poll,
		logger:          logger,
		defaultInterval: defaultInterval,
	}
}

// SubscribePassive implements subscription.Service. The service-info probe is
// best effort: an unreachable or malformed endpoint falls back to defaults
// and the provided URL is polled directly.
func (s *service) SubscribePassive(ctx context.Context, userID string, req subscription.SubscribePassiveRequest) (*subscription.SubscribePassiveResponse, error) {
	serviceHost, err := validator.ServiceHost(req.APIURL)
	if err != nil {
		return nil, subscription.ErrInvalidURL
	}
	baseURL, err := validator.BaseURL(req.APIURL)
	if err != nil {
		return nil, subscription.ErrInvalidURL
	}

	info := s.probeServiceInfo(ctx, baseURL, serviceHost)

	endpoint := resolveEndpoint(baseURL, info.APIEndpoint, req.APIURL)
	interval := info.PollingInterval
	if interval <= 0 {
		interval = s.defaultInterval
	}

	stored, updated, err := s.subs.Upsert(ctx, &subscription.Subscription{
		UserID:                 userID,
		ServiceHost:            serviceHost,
		ThirdPartyName:         info.Name,
		ThirdPartyURL:          baseURL,
		Mode:                   subscription.ModePassive,
		APIEndpoint:            &endpoint,
		PollingIntervalMinutes: interval,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("passive subscription saved",
		"subscription_id", stored.ID, "service_host", serviceHost, "updated", updated)

	return &subscription.SubscribePassiveResponse{
		Subscription: subscription.ToResponse(stored),
		Updated:      updated,
		ServiceInfo:  info,
	}, nil
}

// SubscribeActive implements subscription.Service. A fresh push token is
// issued on every call, including re-subscribes.
func (s *service) SubscribeActive(ctx context.Context, req subscription.SubscribeActiveRequest) (*subscription.SubscribeActiveResponse, error) {
	if validator.IsEmpty(req.ThirdPartyName) {
		return nil, validator.ValidationErrors{{Field: "thirdPartyName", Message: "third party name is required"}}
	}

	u, err := s.authSvc.ResolveNotifyCode(ctx, req.NotifyCode)
	if err != nil {
		return nil, err
	}

	serviceHost, err := validator.ServiceHost(req.ThirdPartyURL)
	if err != nil {
		return nil, subscription.ErrInvalidURL
	}

	// The token embeds the subscription id, so it is signed between the
	// upsert and the token write; the transaction keeps the pair atomic.
	var (
		stored    *subscription.Subscription
		updated   bool
		pushToken string
	)
	err = s.subs.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		stored, updated, err = s.subs.Upsert(ctx, &subscription.Subscription{
			UserID:         u.ID,
			ServiceHost:    serviceHost,
			ThirdPartyName: req.ThirdPartyName,
			ThirdPartyURL:  req.ThirdPartyURL,
			Mode:           subscription.ModeActive,
		})
		if err != nil {
			return err
		}
		pushToken, err = s.tokens.GenerateSubscriptionToken(stored.ID, u.ID, req.ThirdPartyName, subscription.ModeActive)
		if err != nil {
			return err
		}
		return s.subs.SetToken(ctx, stored.ID, pushToken)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("active subscription saved",
		"subscription_id", stored.ID, "service_host", serviceHost, "updated", updated)

	return &subscription.SubscribeActiveResponse{
		Subscription: subscription.ToResponse(stored),
		Updated:      updated,
		Token:        pushToken,
	}, nil
}

// List implements subscription.Service.
func (s *service) List(ctx context.Context, userID string) ([]subscription.SubscriptionResponse, error) {
	subs, err := s.subs.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]subscription.SubscriptionResponse, len(subs))
	for i, sub := range subs {
		out[i] = subscription.ToResponse(sub)
	}
	return out, nil
}

// SetActiveFlag implements subscription.Service. Re-enabling is refused while
// the operator kill switch is off; the owner's toggle never overrides it.
func (s *service) SetActiveFlag(ctx context.Context, id, userID string, active bool) error {
	sub, err := s.subs.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return err
	}
	if active && !sub.ServiceActive {
		return subscription.ErrServiceDisabled
	}
	return s.subs.SetActiveFlag(ctx, id, userID, active)
}

// Delete implements subscription.Service.
func (s *service) Delete(ctx context.Context, id, userID string) error {
	return s.subs.Delete(ctx, id, userID)
}

// TriggerManualPoll implements subscription.Service.
func (s *service) TriggerManualPoll(ctx context.Context, id, userID string) (*subscription.TriggerPollResponse, error) {
	sub, err := s.subs.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if sub.Mode != subscription.ModePassive {
		return nil, subscription.ErrNotPassive
	}
	if !sub.ServiceActive {
		return nil, subscription.ErrServiceDisabled
	}
	if !sub.IsActive {
		return nil, subscription.ErrSubscriptionDisabled
	}

	now := time.Now()
	claimed, prev, err := s.subs.ClaimManualTrigger(ctx, id, now, manualTriggerCooldown)
	if err != nil {
		return nil, err
	}
	if !claimed {
		remaining := manualTriggerCooldown
		if prev != nil {
			remaining = prev.Add(manualTriggerCooldown).Sub(now)
		}
		return nil, &subscription.CooldownError{
			RemainingSeconds: int(math.Ceil(remaining.Seconds())),
		}
	}

	result, err := s.poll.PollOne(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("manual poll: %w", err)
	}

	refreshed, err := s.subs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &subscription.TriggerPollResponse{
		NewNotifications:  result.NewNotifications,
		NotificationCount: refreshed.NotificationCount,
		PolledAt:          result.PolledAt,
	}, nil
}

// SetServiceStatus implements subscription.Service.
func (s *service) SetServiceStatus(ctx context.Context, serviceHost string, req subscription.SetServiceStatusRequest) (int, error) {
	serviceHost = strings.ToLower(strings.TrimSpace(serviceHost))
	if serviceHost == "" {
		return 0, validator.ValidationErrors{{Field: "serviceHost", Message: "service host is required"}}
	}

	var reason *string
	if req.Reason != "" {
		reason = &req.Reason
	}

	affected, err := s.subs.SetServiceStatus(ctx, serviceHost, req.IsActive, reason)
	if err != nil {
		return 0, err
	}

	s.logger.Info("service status changed",
		"service_host", serviceHost, "active", req.IsActive, "affected", affected)
	return affected, nil
}

// probeServiceInfo fetches the service's self-description, falling back to a
// synthesized name when the probe fails.
func (s *service) probeServiceInfo(ctx context.Context, baseURL, serviceHost string) subscription.ServiceInfo {
	info, err := s.prober.Probe(ctx, baseURL)
	if err != nil || info == nil || validator.IsEmpty(info.Name) {
		if err != nil {
			s.logger.Warn("service info probe failed, using defaults",
				"base_url", baseURL, "error", err)
		}
		hostname := serviceHost
		if h, _, ok := strings.Cut(serviceHost, ":"); ok {
			hostname = h
		}
		return subscription.ServiceInfo{
			Name: fmt.Sprintf("Third-party service (%s)", hostname),
		}
	}
	return *info
}

// resolveEndpoint decides which URL gets polled. A path from service info is
// joined onto the base URL; an absolute URL is taken as-is; otherwise the URL
// the user supplied is polled directly.
func resolveEndpoint(baseURL, infoEndpoint, requestedURL string) string {
	switch {
	case strings.HasPrefix(infoEndpoint, "/"):
		return baseURL + infoEndpoint
	case strings.HasPrefix(infoEndpoint, "http://"), strings.HasPrefix(infoEndpoint, "https://"):
		if _, err := url.Parse(infoEndpoint); err == nil {
			return infoEndpoint
		}
	}
	return strings.TrimSpace(requestedURL)
}
