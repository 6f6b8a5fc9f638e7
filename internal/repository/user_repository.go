package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-escalation/internal/domain"
)

// UserRepository is the Postgres-backed user directory.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, username string) (domain.User, bool, error)
	GetAccountManager(ctx context.Context) (domain.User, bool, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, username, name, email, is_account_manager, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, name, email, is_account_manager)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Username,
		user.Name,
		user.Email,
		user.IsAccountManager,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetUser(ctx context.Context, username string) (domain.User, bool, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return r.fetchSingle(ctx, query, username)
}

// GetAccountManager returns the longest-standing account manager.
func (r *userRepository) GetAccountManager(ctx context.Context) (domain.User, bool, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE is_account_manager ORDER BY created_at ASC LIMIT 1`
	return r.fetchSingle(ctx, query)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, args ...any) (domain.User, bool, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Username,
		&user.Name,
		&user.Email,
		&user.IsAccountManager,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, err
	}
	return user, true, nil
}
