// Package tokens provides a PostgreSQL-backed repository for the opaque
// bearer tokens used in the server's authentication flow. The unique
// constraint on user_id keeps the token stable per user: concurrent logins
// all receive the already-stored key.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ekazakov/taskmate/internal/common"
	"github.com/ekazakov/taskmate/internal/dbx"
	"github.com/ekazakov/taskmate/internal/server/models"
)

// PostgresRepository implements token storage over a dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts key for userID, or returns the existing key when the
// user already holds a token. The no-op DO UPDATE makes RETURNING yield the
// surviving row either way.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID int64, key string) (string, error) {
	query := `
		INSERT INTO auth_tokens (key, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET key = auth_tokens.key
		RETURNING key
	`
	var stored string
	if err := r.db.QueryRowContext(ctx, query, key, userID).Scan(&stored); err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return stored, nil
}

// Find returns the token row for the given key string.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, key string) (*models.AuthToken, error) {
	query := `
		SELECT key, user_id, created_at
		FROM auth_tokens
		WHERE key = $1
	`
	token := &models.AuthToken{}
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&token.Key, &token.UserID, &token.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}

// DeleteByUserID removes the user's token, if any. Deleting an absent token
// is not an error: logout only guarantees the token is gone afterwards.
func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	query := `
		DELETE FROM auth_tokens
		WHERE user_id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
