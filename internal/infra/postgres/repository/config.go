package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
)

var ErrConfigNotFound = errors.New("config key not found")

// ConfigRepository stores free-form key-value configuration managed through
// the admin panel (and a few bot-internal keys like the leaderboard message).
type ConfigRepository struct {
	db postgres.DBTX
}

// NewConfigRepository creates a new ConfigRepository with the provided database pool.
func NewConfigRepository(db postgres.DBTX) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get returns the value stored under key.
func (r *ConfigRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRow(ctx, "SELECT value FROM system_config WHERE key = $1", key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrConfigNotFound
		}
		return "", fmt.Errorf("get config: %w", err)
	}

	return value, nil
}

// Set upserts a key-value pair.
func (r *ConfigRepository) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO system_config (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	if _, err := r.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set config: %w", err)
	}

	return nil
}

// All returns the full key-value map.
func (r *ConfigRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, "SELECT key, value FROM system_config")
	if err != nil {
		return nil, fmt.Errorf("list config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan config: %w", err)
		}
		values[k] = v
	}

	return values, rows.Err()
}
