package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/LoosePrince/Huisheen/internal/domain/user"
	"github.com/LoosePrince/Huisheen/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.Repository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, username, email, notify_id, verification_code, verification_code_expires,
		is_active, is_admin, created_at`

// GetByID implements user.Repository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (*user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	return scanUser(q.QueryRow(ctx, query, id))
}

// GetByNotifyID implements user.Repository.
func (r *userRepositoryImpl) GetByNotifyID(ctx context.Context, notifyID string) (*user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE notify_id = $1`

	return scanUser(q.QueryRow(ctx, query, notifyID))
}

// RotateNotifyCode implements user.Repository.
func (r *userRepositoryImpl) RotateNotifyCode(ctx context.Context, userID string, code string, expiresAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE users
		SET verification_code = $1, verification_code_expires = $2
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, code, expiresAt, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.NotifyID,
		&u.VerificationCode,
		&u.VerificationCodeExpires,
		&u.IsActive,
		&u.IsAdmin,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
