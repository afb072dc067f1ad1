package repository

import (
	"context"
	"errors"

	uuid "github.com/gofrs/uuid/v5"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talantix/portal/internal/entity"
)

type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) SaveToken(ctx context.Context, token entity.UserToken) error {
	q := `
	INSERT INTO user_tokens (id, user_id, code, purpose, created_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(
		ctx, q,
		token.ID, token.UserID, token.Code, token.Purpose, token.CreatedAt, token.ExpiresAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// FindByCode matches by the submitted code value alone; expiry and purpose
// are the caller's checks so they surface as distinct failures.
func (r *TokenRepository) FindByCode(ctx context.Context, code string) (entity.UserToken, error) {
	var token entity.UserToken

	q := `
	SELECT id, user_id, code, purpose, created_at, expires_at
	FROM user_tokens
	WHERE code = $1
	ORDER BY created_at DESC
	LIMIT 1
	`

	err := r.db.QueryRow(ctx, q, code).Scan(
		&token.ID, &token.UserID, &token.Code, &token.Purpose, &token.CreatedAt, &token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return token, entity.ErrNotFound
		}

		return token, err
	}

	return token, nil
}

func (r *TokenRepository) LastByUserAndPurpose(
	ctx context.Context,
	userID uuid.UUID,
	purpose entity.TokenPurpose,
) (entity.UserToken, error) {
	var token entity.UserToken

	q := `
	SELECT id, user_id, code, purpose, created_at, expires_at
	FROM user_tokens
	WHERE user_id = $1 AND purpose = $2
	ORDER BY created_at DESC
	LIMIT 1
	`

	err := r.db.QueryRow(ctx, q, userID, purpose).Scan(
		&token.ID, &token.UserID, &token.Code, &token.Purpose, &token.CreatedAt, &token.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return token, entity.ErrNotFound
		}

		return token, err
	}

	return token, nil
}

func (r *TokenRepository) DeleteToken(ctx context.Context, tokenID uuid.UUID) error {
	q := `DELETE FROM user_tokens WHERE id = $1`

	result, err := r.db.Exec(ctx, q, tokenID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) error {
	q := `DELETE FROM user_tokens WHERE NOW() > expires_at`

	_, err := r.db.Exec(ctx, q)
	if err != nil {
		return err
	}

	return nil
}
