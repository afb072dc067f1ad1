package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/talantix/portal/internal/entity"
	"github.com/talantix/portal/internal/limiter"
	"github.com/talantix/portal/pkg/config"
	"github.com/talantix/portal/pkg/logger"
)

// dummyHash is compared against the submitted password when no account
// matches the email, so the miss path costs one bcrypt verification too.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

type UserStore interface {
	CreateUser(ctx context.Context, user entity.User) error
	FindByEmail(ctx context.Context, email string) (entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (entity.User, error)
	UpdateLoginState(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateEmail(ctx context.Context, id uuid.UUID, email string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error
	ListUsers(ctx context.Context, search string, limit, offset int) ([]entity.User, error)
}

type AuthService struct {
	cfg   config.Config
	users UserStore
	lim   *limiter.Limiter
	now   func() time.Time
}

func NewAuthService(cfg config.Config, users UserStore, lim *limiter.Limiter) *AuthService {
	return &AuthService{
		cfg:   cfg,
		users: users,
		lim:   lim,
		now:   time.Now,
	}
}

// Authenticate decides whether (email, password) identifies an account.
// The shared failure counter is consulted first, then account lockout,
// then the password itself; status is checked only after the password so
// every refusal path has done the same amount of work.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (entity.User, error) {
	ip := entity.IPFromCtx(ctx)
	key := limiter.LoginKey(ip, email)

	count, err := s.lim.Peek(ctx, key)
	if err != nil {
		return entity.User{}, fmt.Errorf("peek login counter: %w", err)
	}

	if count >= int64(s.cfg.Login.MaxAttempts) {
		remaining, err := s.lim.TTL(ctx, key)
		if err != nil {
			return entity.User{}, fmt.Errorf("login counter ttl: %w", err)
		}

		ctx = logger.SetLogType(ctx, "security")
		slog.WarnContext(ctx, "login rate limited", "email", email, "attempts", count, "retry_in", remaining)

		return entity.User{}, &entity.RateLimitedError{Remaining: remaining}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			// burn a hash comparison to keep timing close to the hit path
			_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))

			s.recordLoginFailure(ctx, key, email)
			slog.WarnContext(ctx, "login failed: user not found", "email", email)

			return entity.User{}, entity.ErrNotFound
		}

		return entity.User{}, fmt.Errorf("find user by email: %w", err)
	}

	now := s.now()

	if user.Locked(now) {
		ctx = logger.SetLogType(ctx, "security")
		slog.WarnContext(ctx, "login failed: account locked", "email", email, "locked_until", user.LockedUntil)

		return entity.User{}, &entity.LockedError{Remaining: user.LockedUntil.Sub(now)}
	}

	if user.LockedUntil != nil {
		// lockout elapsed, reset lazily before counting this attempt
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil

		if err := s.users.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return entity.User{}, fmt.Errorf("reset expired lockout: %w", err)
		}
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return entity.User{}, s.handleWrongPassword(ctx, key, user, now)
	}

	if user.Status == entity.StatusRejected {
		slog.WarnContext(ctx, "login failed: user rejected", "email", email)
		return entity.User{}, entity.ErrUserRejected
	}

	if user.Status == entity.StatusDeleted {
		slog.WarnContext(ctx, "login failed: user deleted", "email", email)
		return entity.User{}, entity.ErrUserDeleted
	}

	if user.FailedLoginAttempts != 0 || user.LockedUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil

		if err := s.users.UpdateLoginState(ctx, user.ID, 0, nil); err != nil {
			return entity.User{}, fmt.Errorf("reset failure counter: %w", err)
		}
	}

	if err := s.lim.Clear(ctx, key); err != nil {
		slog.ErrorContext(ctx, "failed to clear login counter", "email", email, "error", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID, "email", user.Email)

	return user, nil
}

func (s *AuthService) handleWrongPassword(ctx context.Context, key string, user entity.User, now time.Time) error {
	user.FailedLoginAttempts++

	var lockedUntil *time.Time

	if user.FailedLoginAttempts >= s.cfg.Login.MaxAttempts {
		until := now.Add(s.cfg.Login.LockoutTime)
		lockedUntil = &until
	}

	if err := s.users.UpdateLoginState(ctx, user.ID, user.FailedLoginAttempts, lockedUntil); err != nil {
		return fmt.Errorf("persist failure counter: %w", err)
	}

	s.recordLoginFailure(ctx, key, user.Email)

	if lockedUntil != nil {
		ctx = logger.SetLogType(ctx, "security")
		slog.WarnContext(ctx, "account locked after repeated failures",
			"email", user.Email,
			"attempts", user.FailedLoginAttempts,
			"locked_until", lockedUntil,
		)

		return &entity.LockedError{Remaining: lockedUntil.Sub(now)}
	}

	slog.WarnContext(ctx, "login failed: wrong password", "email", user.Email, "attempts", user.FailedLoginAttempts)

	return entity.ErrWrongPassword
}

func (s *AuthService) recordLoginFailure(ctx context.Context, key, email string) {
	if _, err := s.lim.RecordFailure(ctx, key, s.cfg.Login.AttemptsWindow); err != nil {
		slog.ErrorContext(ctx, "failed to record login failure", "email", email, "error", err)
	}
}

// Login authenticates and mints the bearer token pair for API clients.
func (s *AuthService) Login(ctx context.Context, email, password string) (entity.User, *entity.UserTokens, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return entity.User{}, nil, err
	}

	tokens, err := s.IssueTokens(user)
	if err != nil {
		return entity.User{}, nil, fmt.Errorf("issue tokens: %w", err)
	}

	return user, tokens, nil
}

// Register creates a pending student account. Moderators approve or reject
// it before the first login is allowed to count for anything.
func (s *AuthService) Register(ctx context.Context, firstName, lastName, email, password, confirm string) (entity.User, error) {
	if err := ValidateName(firstName); err != nil {
		return entity.User{}, err
	}

	if err := ValidateName(lastName); err != nil {
		return entity.User{}, err
	}

	normalized, err := NormalizeEmail(email)
	if err != nil {
		return entity.User{}, err
	}

	if password != confirm {
		return entity.User{}, entity.ErrPasswordsDoNotMatch
	}

	if err := ValidatePassword(password); err != nil {
		return entity.User{}, err
	}

	if _, err := s.users.FindByEmail(ctx, normalized); err == nil {
		return entity.User{}, entity.ErrAlreadyExists
	} else if !errors.Is(err, entity.ErrNotFound) {
		return entity.User{}, fmt.Errorf("check email uniqueness: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return entity.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()

	user := entity.User{
		ID:           uuid.Must(uuid.NewV4()),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        normalized,
		PasswordHash: string(hash),
		Role:         entity.RoleStudent,
		Status:       entity.StatusPending,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return entity.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "new user registered", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// ApproveRegistration activates a pending account.
func (s *AuthService) ApproveRegistration(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.users.UpdateStatus(ctx, userID, entity.StatusActive); err != nil {
		return fmt.Errorf("activate user: %w", err)
	}

	slog.InfoContext(ctx, "registration approved", "user_id", userID, "email", user.Email)

	return nil
}

func (s *AuthService) RejectRegistration(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("find user: %w", err)
	}

	if err := s.users.UpdateStatus(ctx, userID, entity.StatusRejected); err != nil {
		return fmt.Errorf("reject user: %w", err)
	}

	slog.InfoContext(ctx, "registration rejected", "user_id", userID, "email", user.Email)

	return nil
}

func (s *AuthService) ListUsers(ctx context.Context, search string, limit, offset int) ([]entity.User, error) {
	return s.users.ListUsers(ctx, search, limit, offset)
}
