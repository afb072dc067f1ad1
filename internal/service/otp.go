package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/talantix/portal/internal/entity"
	"github.com/talantix/portal/internal/limiter"
	"github.com/talantix/portal/pkg/config"
	"github.com/talantix/portal/pkg/logger"
)

const maxCodeValue = 1000000

type TokenStore interface {
	SaveToken(ctx context.Context, token entity.UserToken) error
	FindByCode(ctx context.Context, code string) (entity.UserToken, error)
	LastByUserAndPurpose(ctx context.Context, userID uuid.UUID, purpose entity.TokenPurpose) (entity.UserToken, error)
	DeleteToken(ctx context.Context, tokenID uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// Notifier dispatches an email without blocking the request: failures are
// logged by the implementation and never surface to the end user.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, textBody, htmlBody string)
}

type OTPService struct {
	cfg      config.Config
	tokens   TokenStore
	users    UserStore
	lim      *limiter.Limiter
	notifier Notifier
	now      func() time.Time
}

func NewOTPService(cfg config.Config, tokens TokenStore, users UserStore, lim *limiter.Limiter, notifier Notifier) *OTPService {
	return &OTPService{
		cfg:      cfg,
		tokens:   tokens,
		users:    users,
		lim:      lim,
		notifier: notifier,
		now:      time.Now,
	}
}

// GenerateCode draws a uniform six-digit code from crypto/rand.
func (s *OTPService) GenerateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCodeValue))
	if err != nil {
		panic(err)
	}

	return fmt.Sprintf("%06d", n.Int64())
}

// Issue stores a fresh code for the account. Earlier codes for the same
// purpose are not invalidated; validation matches by exact code value and
// enforces expiry against the clock at check time.
func (s *OTPService) Issue(ctx context.Context, userID uuid.UUID, purpose entity.TokenPurpose) (entity.UserToken, error) {
	now := s.now()

	token := entity.UserToken{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Code:      s.GenerateCode(),
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.OTP.CodeTTL),
	}

	if err := s.tokens.SaveToken(ctx, token); err != nil {
		return entity.UserToken{}, fmt.Errorf("save code: %w", err)
	}

	slog.InfoContext(ctx, "verification code issued", "user_id", userID, "purpose", purpose)

	return token, nil
}

// RetryAfter returns how long the account must wait before the next
// reset-password code can be issued, zero when no cooldown applies.
func (s *OTPService) RetryAfter(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	last, err := s.tokens.LastByUserAndPurpose(ctx, userID, entity.PurposeResetPassword)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return 0, nil
		}

		return 0, fmt.Errorf("find last code: %w", err)
	}

	age := s.now().Sub(last.CreatedAt)
	if age >= s.cfg.OTP.ResendCooldown {
		return 0, nil
	}

	return s.cfg.OTP.ResendCooldown - age, nil
}

// Validate resolves a submitted code. The caller cross-checks that the
// returned record belongs to the account it expects.
func (s *OTPService) Validate(ctx context.Context, code string, purpose entity.TokenPurpose) (entity.UserToken, error) {
	token, err := s.tokens.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.UserToken{}, entity.ErrCodeNotFound
		}

		return entity.UserToken{}, fmt.Errorf("find code: %w", err)
	}

	if token.Purpose != purpose {
		return entity.UserToken{}, entity.ErrWrongPurpose
	}

	if s.now().After(token.ExpiresAt) {
		return entity.UserToken{}, entity.ErrCodeExpired
	}

	return token, nil
}

// RequestPasswordReset issues a reset code and mails it. The reply is the
// same whether or not the address is registered, so the flow never leaks
// which emails exist.
func (s *OTPService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			slog.InfoContext(ctx, "password reset requested for unknown email", "email", email)
			return nil
		}

		return fmt.Errorf("find user: %w", err)
	}

	retryAfter, err := s.RetryAfter(ctx, user.ID)
	if err != nil {
		return err
	}

	if retryAfter > 0 {
		ctx = logger.SetLogType(ctx, "security")
		slog.WarnContext(ctx, "password reset cooldown active", "email", email, "retry_in", retryAfter)

		return &entity.RateLimitedError{Remaining: retryAfter}
	}

	token, err := s.Issue(ctx, user.ID, entity.PurposeResetPassword)
	if err != nil {
		return err
	}

	s.notifier.SendEmail(ctx, user.Email,
		"Код для сброса пароля",
		fmt.Sprintf("Ваш код для сброса пароля: %s\n\nКод действителен в течение часа.", token.Code),
		fmt.Sprintf("<p>Ваш код для сброса пароля: <b>%s</b></p><p>Код действителен в течение часа.</p>", token.Code),
	)

	slog.InfoContext(ctx, "password reset code sent", "user_id", user.ID, "email", user.Email)

	return nil
}

// ConfirmPasswordReset validates the code against the account the email
// names and replaces the password hash. Failed validations count against
// the per-account OTP limiter.
func (s *OTPService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword, confirm string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return entity.ErrCodeNotFound
		}

		return fmt.Errorf("find user: %w", err)
	}

	key := limiter.OTPKey(user.Email)

	count, err := s.lim.Peek(ctx, key)
	if err != nil {
		return fmt.Errorf("peek otp counter: %w", err)
	}

	if count >= int64(s.cfg.OTP.CheckLimit) {
		remaining, err := s.lim.TTL(ctx, key)
		if err != nil {
			return fmt.Errorf("otp counter ttl: %w", err)
		}

		ctx = logger.SetLogType(ctx, "security")
		slog.WarnContext(ctx, "otp validation rate limited", "email", email, "attempts", count)

		return &entity.RateLimitedError{Remaining: remaining}
	}

	token, err := s.Validate(ctx, code, entity.PurposeResetPassword)
	if err != nil {
		s.recordOTPFailure(ctx, key, email)
		return err
	}

	if token.UserID != user.ID {
		s.recordOTPFailure(ctx, key, email)
		return entity.ErrCodeNotFound
	}

	if newPassword != confirm {
		return entity.ErrPasswordsDoNotMatch
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.lim.Clear(ctx, key); err != nil {
		slog.ErrorContext(ctx, "failed to clear otp counter", "email", email, "error", err)
	}

	slog.InfoContext(ctx, "password reset completed", "user_id", user.ID, "email", user.Email)

	return nil
}

// AttemptsLeft reports how many OTP validation attempts remain for the
// account before the limiter blocks it.
func (s *OTPService) AttemptsLeft(ctx context.Context, email string) (int, error) {
	count, err := s.lim.Peek(ctx, limiter.OTPKey(email))
	if err != nil {
		return 0, err
	}

	left := s.cfg.OTP.CheckLimit - int(count)
	if left < 0 {
		left = 0
	}

	return left, nil
}

// RequestEmailChange issues a verify-email code and delivers it to the new
// address, which must not collide with an existing account.
func (s *OTPService) RequestEmailChange(ctx context.Context, userID uuid.UUID, newEmail string) error {
	normalized, err := NormalizeEmail(newEmail)
	if err != nil {
		return err
	}

	if _, err := s.users.FindByEmail(ctx, normalized); err == nil {
		return entity.ErrAlreadyExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("check email uniqueness: %w", err)
	}

	token, err := s.Issue(ctx, userID, entity.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	s.notifier.SendEmail(ctx, normalized,
		"Подтверждение нового email",
		fmt.Sprintf("Ваш код подтверждения: %s\n\nКод действителен в течение часа.", token.Code),
		fmt.Sprintf("<p>Ваш код подтверждения: <b>%s</b></p><p>Код действителен в течение часа.</p>", token.Code),
	)

	slog.InfoContext(ctx, "email change code sent", "user_id", userID, "new_email", normalized)

	return nil
}

// ConfirmEmailChange binds the new address after the code checks out.
func (s *OTPService) ConfirmEmailChange(ctx context.Context, userID uuid.UUID, code, newEmail string) error {
	normalized, err := NormalizeEmail(newEmail)
	if err != nil {
		return err
	}

	token, err := s.Validate(ctx, code, entity.PurposeVerifyEmail)
	if err != nil {
		return err
	}

	if token.UserID != userID {
		return entity.ErrCodeNotFound
	}

	if _, err := s.users.FindByEmail(ctx, normalized); err == nil {
		return entity.ErrAlreadyExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("check email uniqueness: %w", err)
	}

	if err := s.users.UpdateEmail(ctx, userID, normalized); err != nil {
		return fmt.Errorf("update email: %w", err)
	}

	slog.InfoContext(ctx, "email changed", "user_id", userID, "new_email", normalized)

	return nil
}

func (s *OTPService) recordOTPFailure(ctx context.Context, key, email string) {
	if _, err := s.lim.RecordFailure(ctx, key, s.cfg.OTP.CheckWindow); err != nil {
		slog.ErrorContext(ctx, "failed to record otp failure", "email", email, "error", err)
	}
}

// DeleteExpiredCodes is the periodic cleanup entry used by the background job.
func (s *OTPService) DeleteExpiredCodes(ctx context.Context) error {
	if err := s.tokens.DeleteExpired(ctx); err != nil {
		return fmt.Errorf("delete expired codes: %w", err)
	}

	return nil
}
