package entity

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

var (
	ErrWrongPassword = errors.New("wrong password")
	ErrUserRejected  = errors.New("user rejected")
	ErrUserDeleted   = errors.New("user deleted")
)

var (
	ErrCodeNotFound = errors.New("code not found")
	ErrCodeExpired  = errors.New("code expired")
	ErrWrongPurpose = errors.New("wrong code purpose")
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

var (
	ErrPasswordInvalidLen    = errors.New("password must be from 8 to 64 symbols")
	ErrPasswordNoUpperCase   = errors.New("password must contain minimum one upper-case letter")
	ErrPasswordNoDigit       = errors.New("password must contain minimum one digit")
	ErrPasswordsDoNotMatch   = errors.New("passwords do not match")
	ErrEmailInvalidLen       = errors.New("email length exceeds 255 characters")
	ErrEmailInvalidFormat    = errors.New("incorrect email format")
	ErrNameInvalidLen        = errors.New("name must be between 2 and 50 characters")
	ErrNameInvalidFormat     = errors.New("name contains invalid characters")
	ErrAchievementNotPending = errors.New("achievement is not pending")
)

// LockedError is an account-level lockout triggered by consecutive
// password failures. Remaining is rounded up to whole minutes.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string { return "account temporarily locked" }

// Minutes returns the remaining lockout, ceiling of seconds over 60,
// never less than 1 so the caller always shows a nonzero wait.
func (e *LockedError) Minutes() int {
	m := int((e.Remaining + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}

	return m
}

// RateLimitedError is the network-level block from the failure counter,
// independent of account lockout.
type RateLimitedError struct {
	Remaining time.Duration
}

func (e *RateLimitedError) Error() string { return "too many attempts" }

func (e *RateLimitedError) Seconds() int {
	return int(e.Remaining / time.Second)
}
