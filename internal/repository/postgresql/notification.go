package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LoosePrince/Huisheen/internal/domain/notification"
	"github.com/LoosePrince/Huisheen/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type notificationRepositoryImpl struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepositoryImpl{db: db}
}

const notificationColumns = `id, user_id, subscription_id, title, content, type, priority,
		source, callback_url, external_id, metadata, raw_data, is_read, read_at, received_at`

// Insert implements notification.Repository. The partial unique index on
// (subscription_id, external_id) absorbs replays: a conflicting insert is
// reported as a duplicate carrying the stored row's id, not an error.
func (r *notificationRepositoryImpl) Insert(ctx context.Context, n *notification.Notification) (bool, error) {
	q := GetQuerier(ctx, r.db)

	sourceJSON, err := json.Marshal(n.Source)
	if err != nil {
		return false, fmt.Errorf("marshal source: %w", err)
	}
	var metadataJSON []byte
	if n.Metadata != nil {
		metadataJSON, err = json.Marshal(n.Metadata)
		if err != nil {
			return false, fmt.Errorf("marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO notifications (
			user_id, subscription_id, title, content, type, priority,
			source, callback_url, external_id, metadata, raw_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (subscription_id, external_id) WHERE external_id IS NOT NULL
		DO NOTHING
		RETURNING id, received_at
	`

	err = q.QueryRow(ctx, query,
		n.UserID,
		n.SubscriptionID,
		n.Title,
		n.Content,
		n.Type,
		n.Priority,
		sourceJSON,
		n.CallbackURL,
		n.ExternalID,
		metadataJSON,
		[]byte(n.RawData),
	).Scan(&n.ID, &n.ReceivedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Replay: hand back the stored row so retries see a stable id.
			dupErr := q.QueryRow(ctx,
				`SELECT id, received_at FROM notifications WHERE subscription_id = $1 AND external_id = $2`,
				n.SubscriptionID, n.ExternalID,
			).Scan(&n.ID, &n.ReceivedAt)
			if dupErr != nil {
				return false, fmt.Errorf("load duplicate notification: %w", dupErr)
			}
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetByID implements notification.Repository.
func (r *notificationRepositoryImpl) GetByID(ctx context.Context, id, userID string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1 AND user_id = $2`

	return scanNotification(q.QueryRow(ctx, query, id, userID))
}

// ListUnread implements notification.Repository.
func (r *notificationRepositoryImpl) ListUnread(ctx context.Context, req notification.ExternalListRequest) ([]*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
	`
	args := []interface{}{req.UserID}

	if req.Type != "" {
		args = append(args, req.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if req.Priority != "" {
		args = append(args, req.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}
	if req.Since != nil {
		args = append(args, *req.Since)
		query += fmt.Sprintf(" AND received_at > $%d", len(args))
	}

	args = append(args, req.Limit)
	query += fmt.Sprintf(" ORDER BY received_at DESC LIMIT $%d", len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountUnread implements notification.Repository.
func (r *notificationRepositoryImpl) CountUnread(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	).Scan(&count)
	return count, err
}

// MarkRead implements notification.Repository. Marking an already-read
// notification keeps its original read_at.
func (r *notificationRepositoryImpl) MarkRead(ctx context.Context, id, userID string) (*notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING ` + notificationColumns + `
	`

	return scanNotification(q.QueryRow(ctx, query, id, userID))
}

// MarkReadBatch implements notification.Repository.
func (r *notificationRepositoryImpl) MarkReadBatch(ctx context.Context, ids []string, userID string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE id = ANY($1) AND user_id = $2
	`

	tag, err := q.Exec(ctx, query, ids, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// MarkAllRead implements notification.Repository.
func (r *notificationRepositoryImpl) MarkAllRead(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
		WHERE user_id = $1 AND is_read = FALSE
	`

	tag, err := q.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// Delete implements notification.Repository.
func (r *notificationRepositoryImpl) Delete(ctx context.Context, id, userID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// Stats implements notification.Repository.
func (r *notificationRepositoryImpl) Stats(ctx context.Context, userID string) (*notification.StatsResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_read = FALSE),
			COUNT(*) FILTER (WHERE received_at >= date_trunc('day', NOW()))
		FROM notifications
		WHERE user_id = $1
	`

	var stats notification.StatsResponse
	err := q.QueryRow(ctx, query, userID).Scan(&stats.Total, &stats.Unread, &stats.Today)
	if err != nil {
		return nil, err
	}
	stats.Read = stats.Total - stats.Unread
	return &stats, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	var sourceJSON, metadataJSON, rawJSON []byte
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.SubscriptionID,
		&n.Title,
		&n.Content,
		&n.Type,
		&n.Priority,
		&sourceJSON,
		&n.CallbackURL,
		&n.ExternalID,
		&metadataJSON,
		&rawJSON,
		&n.IsRead,
		&n.ReadAt,
		&n.ReceivedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}
	if len(sourceJSON) > 0 {
		if err := json.Unmarshal(sourceJSON, &n.Source); err != nil {
			return nil, fmt.Errorf("unmarshal source: %w", err)
		}
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &n.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	n.RawData = rawJSON
	return &n, nil
}
