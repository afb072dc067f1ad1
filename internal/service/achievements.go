package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/talantix/portal/internal/entity"
)

// Points awarded per achievement level. Unknown levels fall back to the
// school baseline.
const (
	pointsSchool        = 10
	pointsMunicipal     = 20
	pointsRegional      = 40
	pointsFederal       = 75
	pointsInternational = 100
)

func CalculatePoints(level entity.AchievementLevel) int {
	switch level {
	case entity.LevelSchool:
		return pointsSchool
	case entity.LevelMunicipal:
		return pointsMunicipal
	case entity.LevelRegional:
		return pointsRegional
	case entity.LevelFederal:
		return pointsFederal
	case entity.LevelInternational:
		return pointsInternational
	default:
		return pointsSchool
	}
}

type AchievementStore interface {
	CreateAchievement(ctx context.Context, a entity.Achievement) error
	FindByID(ctx context.Context, id uuid.UUID) (entity.Achievement, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error)
	ListPending(ctx context.Context, limit, offset int) ([]entity.Achievement, error)
	SetModeration(
		ctx context.Context,
		id uuid.UUID,
		status entity.AchievementStatus,
		points int,
		moderatorID uuid.UUID,
		rejectionReason *string,
	) error
	Leaderboard(ctx context.Context, seasonStart time.Time, limit int) ([]entity.LeaderboardRow, error)
}

type AchievementService struct {
	store AchievementStore
	now   func() time.Time
}

func NewAchievementService(store AchievementStore) *AchievementService {
	return &AchievementService{
		store: store,
		now:   time.Now,
	}
}

// Submit files a new achievement for moderation. Points are assigned only
// when a moderator approves it.
func (s *AchievementService) Submit(
	ctx context.Context,
	userID uuid.UUID,
	title, description string,
	category entity.AchievementCategory,
	level entity.AchievementLevel,
	documentPath string,
) (entity.Achievement, error) {
	if title == "" {
		return entity.Achievement{}, fmt.Errorf("empty title: %w", entity.ErrNameInvalidLen)
	}

	now := s.now()

	a := entity.Achievement{
		ID:           uuid.Must(uuid.NewV4()),
		UserID:       userID,
		Title:        title,
		Description:  description,
		Category:     category,
		Level:        level,
		Status:       entity.AchievementPending,
		DocumentPath: documentPath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAchievement(ctx, a); err != nil {
		return entity.Achievement{}, fmt.Errorf("create achievement: %w", err)
	}

	slog.InfoContext(ctx, "achievement submitted", "achievement_id", a.ID, "user_id", userID, "level", level)

	return a, nil
}

// Approve awards points for a pending achievement by its level.
func (s *AchievementService) Approve(ctx context.Context, achievementID, moderatorID uuid.UUID) (entity.Achievement, error) {
	a, err := s.store.FindByID(ctx, achievementID)
	if err != nil {
		return entity.Achievement{}, fmt.Errorf("find achievement: %w", err)
	}

	if a.Status != entity.AchievementPending {
		return entity.Achievement{}, entity.ErrAchievementNotPending
	}

	points := CalculatePoints(a.Level)

	if err := s.store.SetModeration(ctx, a.ID, entity.AchievementApproved, points, moderatorID, nil); err != nil {
		return entity.Achievement{}, fmt.Errorf("approve achievement: %w", err)
	}

	a.Status = entity.AchievementApproved
	a.Points = points
	a.ModeratorID = &moderatorID

	slog.InfoContext(ctx, "achievement approved",
		"achievement_id", a.ID, "moderator_id", moderatorID, "points", points)

	return a, nil
}

// Reject declines a pending achievement with a reason shown to the student.
func (s *AchievementService) Reject(ctx context.Context, achievementID, moderatorID uuid.UUID, reason string) error {
	a, err := s.store.FindByID(ctx, achievementID)
	if err != nil {
		return fmt.Errorf("find achievement: %w", err)
	}

	if a.Status != entity.AchievementPending {
		return entity.ErrAchievementNotPending
	}

	if err := s.store.SetModeration(ctx, a.ID, entity.AchievementRejected, 0, moderatorID, &reason); err != nil {
		return fmt.Errorf("reject achievement: %w", err)
	}

	slog.InfoContext(ctx, "achievement rejected",
		"achievement_id", a.ID, "moderator_id", moderatorID, "reason", reason)

	return nil
}

func (s *AchievementService) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *AchievementService) ListPending(ctx context.Context, limit, offset int) ([]entity.Achievement, error) {
	return s.store.ListPending(ctx, limit, offset)
}

func (s *AchievementService) Leaderboard(ctx context.Context, seasonStart time.Time, limit int) ([]entity.LeaderboardRow, error) {
	return s.store.Leaderboard(ctx, seasonStart, limit)
}
