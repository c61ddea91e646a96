package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the part of *pgxpool.Pool the repositories use.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TokenRepository is the durable store for API credentials, one per device.
type TokenRepository struct {
	db Querier
}

func NewTokenRepository(db Querier) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetToken returns an empty string when the device has no stored token.
func (r *TokenRepository) GetToken(ctx context.Context, deviceID string) (string, error) {
	query := `SELECT token FROM auth_tokens WHERE device_id = $1`

	var token string
	err := r.db.QueryRow(ctx, query, deviceID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) SaveToken(ctx context.Context, deviceID, token string) error {
	query := `
		INSERT INTO auth_tokens (device_id, token, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (device_id) DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.Exec(ctx, query, deviceID, token, time.Now()); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, deviceID string) error {
	query := `DELETE FROM auth_tokens WHERE device_id = $1`
	if _, err := r.db.Exec(ctx, query, deviceID); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (r *TokenRepository) CompareAndDeleteToken(ctx context.Context, deviceID, token string) error {
	query := `DELETE FROM auth_tokens WHERE device_id = $1 AND token = $2`
	if _, err := r.db.Exec(ctx, query, deviceID, token); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}
