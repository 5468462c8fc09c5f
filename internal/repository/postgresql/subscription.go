package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/subscription"
	"github.com/LoosePrince/Huisheen/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type subscriptionRepositoryImpl struct {
	db *database.DB
}

func NewSubscriptionRepository(db *database.DB) subscription.Repository {
	return &subscriptionRepositoryImpl{db: db}
}

const subscriptionColumns = `id, user_id, service_host, third_party_name, third_party_url, mode,
		api_endpoint, polling_interval_minutes, last_polled_at, last_manual_trigger_at, token,
		is_active, service_active, service_status_reason,
		subscribed_at, last_notification_at, notification_count, created_at, updated_at`

// Upsert implements subscription.Repository. The (user_id, service_host, mode)
// unique constraint makes re-subscribing update the existing row in place,
// resetting subscribed_at. xmax = 0 distinguishes a fresh insert from a
// conflict update.
func (r *subscriptionRepositoryImpl) Upsert(ctx context.Context, sub *subscription.Subscription) (*subscription.Subscription, bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO subscriptions (
			user_id, service_host, third_party_name, third_party_url, mode,
			api_endpoint, polling_interval_minutes, token
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, service_host, mode) DO UPDATE SET
			third_party_name = EXCLUDED.third_party_name,
			third_party_url = EXCLUDED.third_party_url,
			api_endpoint = EXCLUDED.api_endpoint,
			polling_interval_minutes = EXCLUDED.polling_interval_minutes,
			token = COALESCE(EXCLUDED.token, subscriptions.token),
			is_active = TRUE,
			subscribed_at = NOW(),
			updated_at = NOW()
		RETURNING ` + subscriptionColumns + `, (xmax <> 0) AS updated
	`

	var stored subscription.Subscription
	var updated bool
	err := q.QueryRow(ctx, query,
		sub.UserID,
		sub.ServiceHost,
		sub.ThirdPartyName,
		sub.ThirdPartyURL,
		sub.Mode,
		sub.APIEndpoint,
		sub.PollingIntervalMinutes,
		sub.Token,
	).Scan(append(subscriptionFields(&stored), &updated)...)
	if err != nil {
		return nil, false, err
	}
	return &stored, updated, nil
}

// WithinTransaction implements subscription.Repository.
func (r *subscriptionRepositoryImpl) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return WithTransaction(ctx, r.db, fn)
}

// GetByID implements subscription.Repository.
func (r *subscriptionRepositoryImpl) GetByID(ctx context.Context, id string) (*subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`

	return scanSubscription(q.QueryRow(ctx, query, id))
}

// GetByIDForUser implements subscription.Repository.
func (r *subscriptionRepositoryImpl) GetByIDForUser(ctx context.Context, id, userID string) (*subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2`

	return scanSubscription(q.QueryRow(ctx, query, id, userID))
}

// ListByUser implements subscription.Repository.
func (r *subscriptionRepositoryImpl) ListByUser(ctx context.Context, userID string) ([]*subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY subscribed_at DESC
	`

	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// ListPollable implements subscription.Repository.
func (r *subscriptionRepositoryImpl) ListPollable(ctx context.Context) ([]*subscription.Subscription, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE mode = 'passive'
		  AND is_active = TRUE
		  AND service_active = TRUE
		  AND api_endpoint IS NOT NULL
		ORDER BY api_endpoint, id
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectSubscriptions(rows)
}

// SetActiveFlag implements subscription.Repository.
func (r *subscriptionRepositoryImpl) SetActiveFlag(ctx context.Context, id, userID string, active bool) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`

	tag, err := q.Exec(ctx, query, active, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

// SetToken implements subscription.Repository.
func (r *subscriptionRepositoryImpl) SetToken(ctx context.Context, id, token string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET token = $1, updated_at = NOW()
		WHERE id = $2
	`

	tag, err := q.Exec(ctx, query, token, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

// Delete implements subscription.Repository. Stored notifications keep their
// source snapshot, so they survive the delete untouched.
func (r *subscriptionRepositoryImpl) Delete(ctx context.Context, id, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`

	tag, err := q.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return subscription.ErrSubscriptionNotFound
	}
	return nil
}

// SetServiceStatus implements subscription.Repository.
func (r *subscriptionRepositoryImpl) SetServiceStatus(ctx context.Context, serviceHost string, active bool, reason *string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET service_active = $1, service_status_reason = $2, updated_at = NOW()
		WHERE service_host = $3
	`

	tag, err := q.Exec(ctx, query, active, reason, serviceHost)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// StampPolled implements subscription.Repository.
func (r *subscriptionRepositoryImpl) StampPolled(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET last_polled_at = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`

	_, err := q.Exec(ctx, query, at, ids)
	return err
}

// ClaimManualTrigger implements subscription.Repository. The conditional
// update is the cooldown gate: only one of several concurrent triggers can
// move the timestamp past the cutoff.
func (r *subscriptionRepositoryImpl) ClaimManualTrigger(ctx context.Context, id string, now time.Time, cooldown time.Duration) (bool, *time.Time, error) {
	q := GetQuerier(ctx, r.db)

	cutoff := now.Add(-cooldown)

	claimQuery := `
		UPDATE subscriptions
		SET last_manual_trigger_at = $1, updated_at = NOW()
		WHERE id = $2
		  AND (last_manual_trigger_at IS NULL OR last_manual_trigger_at <= $3)
	`

	tag, err := q.Exec(ctx, claimQuery, now, id, cutoff)
	if err != nil {
		return false, nil, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil, nil
	}

	var prev *time.Time
	err = q.QueryRow(ctx, `SELECT last_manual_trigger_at FROM subscriptions WHERE id = $1`, id).Scan(&prev)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil, subscription.ErrSubscriptionNotFound
		}
		return false, nil, err
	}
	return false, prev, nil
}

// RecordNotification implements subscription.Repository.
func (r *subscriptionRepositoryImpl) RecordNotification(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE subscriptions
		SET notification_count = notification_count + 1,
		    last_notification_at = $1,
		    updated_at = NOW()
		WHERE id = $2
	`

	_, err := q.Exec(ctx, query, at, id)
	return err
}

func subscriptionFields(s *subscription.Subscription) []interface{} {
	return []interface{}{
		&s.ID,
		&s.UserID,
		&s.ServiceHost,
		&s.ThirdPartyName,
		&s.ThirdPartyURL,
		&s.Mode,
		&s.APIEndpoint,
		&s.PollingIntervalMinutes,
		&s.LastPolledAt,
		&s.LastManualTriggerAt,
		&s.Token,
		&s.IsActive,
		&s.ServiceActive,
		&s.ServiceStatusReason,
		&s.SubscribedAt,
		&s.LastNotificationAt,
		&s.NotificationCount,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var s subscription.Subscription
	if err := row.Scan(subscriptionFields(&s)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, subscription.ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func collectSubscriptions(rows pgx.Rows) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		if err := rows.Scan(subscriptionFields(&s)...); err != nil {
			return nil, err
		}
		subs = append(subs, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}
