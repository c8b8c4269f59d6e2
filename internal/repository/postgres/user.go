package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/metalofmeat1/telegram-bot-for-selling/internal/domain"
	"github.com/metalofmeat1/telegram-bot-for-selling/pkg/database"
	apperrors "github.com/metalofmeat1/telegram-bot-for-selling/pkg/errors"
)

// UserRepository implements repository.UserRepository using PostgreSQL.
type UserRepository struct {
	pool database.DBTX
}

// NewUserRepository creates a new PostgreSQL-backed user repository.
func NewUserRepository(pool database.DBTX) *UserRepository {
	return &UserRepository{pool: pool}
}

// Upsert inserts the user or refreshes their names.
func (r *UserRepository) Upsert(ctx context.Context, u *domain.User) (err error) {
	query := `
		INSERT INTO users (user_id, first_name, last_name, phone)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    phone = COALESCE(EXCLUDED.phone, users.phone),
		    updated_at = NOW()`

	ctx, end := database.TraceQuery(ctx, "UpsertUser", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, u.ID, u.FirstName, u.LastName, u.Phone); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by Telegram id.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (_ *domain.User, err error) {
	query := `
		SELECT user_id, first_name, last_name, phone
		FROM users
		WHERE user_id = $1`

	ctx, end := database.TraceQuery(ctx, "GetUserByID", query)
	defer func() { end(err) }()

	var u domain.User
	err = r.pool.QueryRow(ctx, query, userID).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user", fmt.Sprint(userID))
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}
