package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phantomorder/soulbingo-bot/internal/domain/entities"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
)

var ErrUserNotFound = errors.New("user not found")

// UserRepository provides access to user data in the database.
type UserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new UserRepository with the provided database pool.
func NewUserRepository(db postgres.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts a new user or refreshes the username of an existing one.
// The souls balance is never touched here.
func (r *UserRepository) Upsert(ctx context.Context, user *entities.User) error {
	query := `
		INSERT INTO users (id, username)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username
	`

	if _, err := r.db.Exec(ctx, query, user.ID, user.Username); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	query := `
		SELECT id, username, souls, created_at
		FROM users
		WHERE id = $1
	`

	var user entities.User
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Souls,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

// AddSouls applies a signed point delta to a user's balance, creating the
// row if the user has never interacted before.
func (r *UserRepository) AddSouls(ctx context.Context, userID int64, delta int64) error {
	query := `
		INSERT INTO users (id, souls)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET
			souls = users.souls + EXCLUDED.souls
	`

	if _, err := r.db.Exec(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("add souls: %w", err)
	}

	return nil
}

// SetSouls overwrites a user's balance; used by the admin panel.
func (r *UserRepository) SetSouls(ctx context.Context, userID int64, souls int64) error {
	tag, err := r.db.Exec(ctx, "UPDATE users SET souls = $2 WHERE id = $1", userID, souls)
	if err != nil {
		return fmt.Errorf("set souls: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListTop returns the highest-balance users, ordered descending.
func (r *UserRepository) ListTop(ctx context.Context, limit int) ([]*entities.User, error) {
	query := `
		SELECT id, username, souls, created_at
		FROM users
		ORDER BY souls DESC, id
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list top users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ListAll returns every user ordered by balance, for the admin panel.
func (r *UserRepository) ListAll(ctx context.Context) ([]*entities.User, error) {
	query := `
		SELECT id, username, souls, created_at
		FROM users
		ORDER BY souls DESC, id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

func scanUsers(rows pgx.Rows) ([]*entities.User, error) {
	var users []*entities.User
	for rows.Next() {
		var user entities.User
		if err := rows.Scan(&user.ID, &user.Username, &user.Souls, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}
