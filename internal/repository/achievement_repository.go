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

type AchievementRepository struct {
	db *pgxpool.Pool
}

func NewAchievementRepository(db *pgxpool.Pool) *AchievementRepository {
	return &AchievementRepository{db: db}
}

const achievementColumns = `
	id, user_id, title, description, category, level, status, points,
	document_path, rejection_reason, moderator_id, created_at, updated_at`

func (r *AchievementRepository) scanAchievement(row pgx.Row) (entity.Achievement, error) {
	var a entity.Achievement

	err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &a.Description, &a.Category, &a.Level,
		&a.Status, &a.Points, &a.DocumentPath, &a.RejectionReason,
		&a.ModeratorID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return a, entity.ErrNotFound
		}

		return a, err
	}

	return a, nil
}

func (r *AchievementRepository) CreateAchievement(ctx context.Context, a entity.Achievement) error {
	q := `
	INSERT INTO achievements (
		id, user_id, title, description, category, level, status, points,
		document_path, rejection_reason, moderator_id, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(
		ctx, q,
		a.ID, a.UserID, a.Title, a.Description, a.Category, a.Level,
		a.Status, a.Points, a.DocumentPath, a.RejectionReason,
		a.ModeratorID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *AchievementRepository) FindByID(ctx context.Context, id uuid.UUID) (entity.Achievement, error) {
	q := `SELECT` + achievementColumns + `
	FROM achievements
	WHERE id = $1`

	return r.scanAchievement(r.db.QueryRow(ctx, q, id))
}

func (r *AchievementRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error) {
	q := `SELECT` + achievementColumns + `
	FROM achievements
	WHERE user_id = $1
	ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entity.Achievement

	for rows.Next() {
		a, err := r.scanAchievement(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *AchievementRepository) ListPending(ctx context.Context, limit, offset int) ([]entity.Achievement, error) {
	q := `SELECT` + achievementColumns + `
	FROM achievements
	WHERE status = 'pending'
	ORDER BY created_at ASC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entity.Achievement

	for rows.Next() {
		a, err := r.scanAchievement(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// SetModeration finalizes one moderation decision: status, awarded points,
// the deciding moderator and, for rejections, the reason.
func (r *AchievementRepository) SetModeration(
	ctx context.Context,
	id uuid.UUID,
	status entity.AchievementStatus,
	points int,
	moderatorID uuid.UUID,
	rejectionReason *string,
) error {
	q := `
	UPDATE achievements
	SET status = $2, points = $3, moderator_id = $4, rejection_reason = $5, updated_at = NOW()
	WHERE id = $1`

	result, err := r.db.Exec(ctx, q, id, status, points, moderatorID, rejectionReason)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return entity.ErrNotFound
	}

	return nil
}

// Leaderboard ranks active students by approved points earned since the
// season start. Students with no approved achievements are not listed.
func (r *AchievementRepository) Leaderboard(ctx context.Context, seasonStart time.Time, limit int) ([]entity.LeaderboardRow, error) {
	q := `
	SELECT u.id, u.first_name, u.last_name, SUM(a.points) AS points,
	       RANK() OVER (ORDER BY SUM(a.points) DESC) AS rank
	FROM achievements a
	JOIN users u ON u.id = a.user_id
	WHERE a.status = 'approved'
	  AND a.updated_at >= $1
	  AND u.status = 'active'
	GROUP BY u.id, u.first_name, u.last_name
	ORDER BY points DESC, u.last_name ASC
	LIMIT $2`

	rows, err := r.db.Query(ctx, q, seasonStart, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []entity.LeaderboardRow

	for rows.Next() {
		var row entity.LeaderboardRow

		if err := rows.Scan(&row.UserID, &row.FirstName, &row.LastName, &row.Points, &row.Rank); err != nil {
			return nil, err
		}

		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
