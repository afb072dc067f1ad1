package entity

import (
	"time"

	"github.com/gofrs/uuid/v5"
	jwt "github.com/golang-jwt/jwt/v5"
)

type UserRole string

const (
	RoleGuest      UserRole = "guest"
	RoleStudent    UserRole = "student"
	RoleModerator  UserRole = "moderator"
	RoleSuperAdmin UserRole = "super_admin"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusActive   UserStatus = "active"
	StatusRejected UserStatus = "rejected"
	StatusDeleted  UserStatus = "deleted"
)

type User struct {
	ID                  uuid.UUID
	FirstName           string
	LastName            string
	Email               string
	PasswordHash        string
	Role                UserRole
	Status              UserStatus
	IsActive            bool
	FailedLoginAttempts int
	LockedUntil         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Locked reports whether the account-level lockout is still in effect at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

type UserTokens struct {
	AccessToken     string        `json:"access_token"`
	RefreshToken    string        `json:"refresh_token"`
	TokenType       string        `json:"token_type"`
	RefreshTokenTTL time.Duration `json:"-"`
}

type UserClaims struct {
	Role      string `json:"role"`
	TokenType string `json:"type"`
	jwt.RegisteredClaims
}
