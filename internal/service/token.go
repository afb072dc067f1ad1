package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/talantix/portal/internal/entity"
)

// IssueTokens mints the access/refresh pair for an authenticated account.
// Access and refresh tokens are signed with separate secrets and carry a
// type claim so one can never stand in for the other.
func (s *AuthService) IssueTokens(user entity.User) (*entity.UserTokens, error) {
	accessToken, err := s.signToken(user, entity.PurposeAccess)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.signToken(user, entity.PurposeRefresh)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &entity.UserTokens{
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		TokenType:       "bearer",
		RefreshTokenTTL: s.cfg.JWT.RefreshTokenExpiry,
	}, nil
}

func (s *AuthService) signToken(user entity.User, purpose entity.TokenPurpose) (string, error) {
	secret := s.cfg.JWT.AccessSecret
	expiry := s.cfg.JWT.AccessTokenExpiry

	if purpose == entity.PurposeRefresh {
		secret = s.cfg.JWT.RefreshSecret
		expiry = s.cfg.JWT.RefreshTokenExpiry
	}

	now := s.now()

	claims := entity.UserClaims{
		Role:      string(user.Role),
		TokenType: string(purpose),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyToken parses and validates a bearer token of the given kind.
func (s *AuthService) VerifyToken(tokenStr string, refresh bool) (*entity.UserClaims, error) {
	secret := s.cfg.JWT.AccessSecret
	expected := entity.PurposeAccess

	if refresh {
		secret = s.cfg.JWT.RefreshSecret
		expected = entity.PurposeRefresh
	}

	var claims entity.UserClaims

	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (any, error) {
		_, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(secret), nil
	}, jwt.WithTimeFunc(s.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, entity.ErrTokenExpired
		}

		return nil, fmt.Errorf("parse token: %w", entity.ErrTokenInvalid)
	}

	if !token.Valid || claims.TokenType != string(expected) {
		return nil, entity.ErrTokenInvalid
	}

	return &claims, nil
}

// RefreshTokens validates a refresh token and mints a fresh pair for the
// account, re-reading it so a blocked or deleted account loses access at
// the next rotation.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*entity.UserTokens, error) {
	claims, err := s.VerifyToken(refreshToken, true)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.FromString(claims.Subject)
	if err != nil {
		return nil, entity.ErrTokenInvalid
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.Status == entity.StatusRejected || user.Status == entity.StatusDeleted || !user.IsActive {
		return nil, entity.ErrUnauthorized
	}

	return s.IssueTokens(user)
}
