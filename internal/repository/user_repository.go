package repository

import (
	"context"
	"errors"
	"time"

	uuid "github.com/gofrs/uuid/v5"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/talantix/portal/internal/entity"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, first_name, last_name, email, password_hash, role, status,
	is_active, failed_login_attempts, locked_until, created_at, updated_at`

func (r *UserRepository) scanUser(row pgx.Row) (entity.User, error) {
	var u entity.User

	err := row.Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash,
		&u.Role, &u.Status, &u.IsActive, &u.FailedLoginAttempts,
		&u.LockedUntil, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, entity.ErrNotFound
		}

		return u, err
	}

	return u, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user entity.User) error {
	q := `
	INSERT INTO users (
		id, first_name, last_name, email, password_hash, role, status,
		is_active, failed_login_attempts, locked_until, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.db.Exec(
		ctx, q,
		user.ID, user.FirstName, user.LastName, user.Email, user.PasswordHash,
		user.Role, user.Status, user.IsActive, user.FailedLoginAttempts,
		user.LockedUntil, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// FindByEmail looks the account up case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (entity.User, error) {
	q := `SELECT` + userColumns + `
	FROM users
	WHERE LOWER(email) = LOWER($1)`

	return r.scanUser(r.db.QueryRow(ctx, q, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.User, error) {
	q := `SELECT` + userColumns + `
	FROM users
	WHERE id = $1`

	return r.scanUser(r.db.QueryRow(ctx, q, id))
}

// UpdateLoginState persists the failure counter and lockout deadline after
// a login attempt. Concurrent failures against one account may race here;
// only the shared counter store is atomic.
func (r *UserRepository) UpdateLoginState(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	q := `UPDATE users SET failed_login_attempts = $2, locked_until = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, q, id, attempts, lockedUntil)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	q := `
	UPDATE users
	SET password_hash = $2, failed_login_attempts = 0, locked_until = NULL, updated_at = NOW()
	WHERE id = $1`

	result, err := r.db.Exec(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	q := `UPDATE users SET email = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, q, id, email)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	q := `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, q, id, status)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// ListUsers returns a page of accounts matching the search term by name or
// email. The term is LIKE-escaped so user input cannot inject wildcards.
func (r *UserRepository) ListUsers(ctx context.Context, search string, limit, offset int) ([]entity.User, error) {
	q := `SELECT` + userColumns + `
	FROM users
	WHERE status != 'deleted'
	  AND ($1 = '' OR first_name ILIKE $2 ESCAPE '\'
	       OR last_name ILIKE $2 ESCAPE '\'
	       OR email ILIKE $2 ESCAPE '\')
	ORDER BY created_at DESC
	LIMIT $3 OFFSET $4`

	pattern := "%" + EscapeLike(search) + "%"

	rows, err := r.db.Query(ctx, q, search, pattern, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entity.User

	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
