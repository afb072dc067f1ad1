package entity

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type AchievementStatus string

const (
	AchievementPending  AchievementStatus = "pending"
	AchievementApproved AchievementStatus = "approved"
	AchievementRejected AchievementStatus = "rejected"
)

type AchievementLevel string

const (
	LevelSchool        AchievementLevel = "school"
	LevelMunicipal     AchievementLevel = "municipal"
	LevelRegional      AchievementLevel = "regional"
	LevelFederal       AchievementLevel = "federal"
	LevelInternational AchievementLevel = "international"
)

type AchievementCategory string

const (
	CategorySport        AchievementCategory = "sport"
	CategoryScience      AchievementCategory = "science"
	CategoryArt          AchievementCategory = "art"
	CategoryVolunteering AchievementCategory = "volunteering"
	CategoryOther        AchievementCategory = "other"
)

type Achievement struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Title           string
	Description     string
	Category        AchievementCategory
	Level           AchievementLevel
	Status          AchievementStatus
	Points          int
	DocumentPath    string
	RejectionReason *string
	ModeratorID     *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LeaderboardRow is one ranked student with points accumulated over the season.
type LeaderboardRow struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Points    int
	Rank      int
}
