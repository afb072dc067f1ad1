package entity

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

type TokenPurpose string

const (
	PurposeAccess        TokenPurpose = "access"
	PurposeRefresh       TokenPurpose = "refresh"
	PurposeResetPassword TokenPurpose = "reset_password"
	PurposeVerifyEmail   TokenPurpose = "verify_email"
)

// UserToken is an issued one-time code bound to a user. Codes are not
// deleted on use; validation matches by code value and separately enforces
// the expiry against the clock.
type UserToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Code      string
	Purpose   TokenPurpose
	CreatedAt time.Time
	ExpiresAt time.Time
}
