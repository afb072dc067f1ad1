package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talantix/portal/internal/entity"
)

func TestVerifyToken_RoundTrip(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	claims, err := f.svc.VerifyToken(tokens.AccessToken, false)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims.Subject)
	require.Equal(t, string(entity.RoleStudent), claims.Role)
}

func TestVerifyToken_RefreshNotAcceptedAsAccess(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	_, err = f.svc.VerifyToken(tokens.RefreshToken, false)
	require.Error(t, err)

	_, err = f.svc.VerifyToken(tokens.AccessToken, true)
	require.Error(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	f.clock.Advance(time.Hour + time.Minute)

	_, err = f.svc.VerifyToken(tokens.AccessToken, false)
	require.ErrorIs(t, err, entity.ErrTokenExpired)

	// refresh token lives a week
	_, err = f.svc.VerifyToken(tokens.RefreshToken, true)
	require.NoError(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.svc.VerifyToken("not.a.jwt", false)
	require.ErrorIs(t, err, entity.ErrTokenInvalid)
}

func TestRefreshTokens_MintsNewPair(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	f.clock.Advance(time.Minute)

	fresh, err := f.svc.RefreshTokens(f.ctx, tokens.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)
	require.NotEqual(t, tokens.AccessToken, fresh.AccessToken)
}

func TestRefreshTokens_RejectedAccountLosesAccess(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	require.NoError(t, f.users.UpdateStatus(f.ctx, user.ID, entity.StatusRejected))

	_, err = f.svc.RefreshTokens(f.ctx, tokens.RefreshToken)
	require.ErrorIs(t, err, entity.ErrUnauthorized)
}

func TestRefreshTokens_AccessTokenRefused(t *testing.T) {
	user := testUser(t, "Password1")
	f := newAuthFixture(t, user)

	tokens, err := f.svc.IssueTokens(user)
	require.NoError(t, err)

	_, err = f.svc.RefreshTokens(f.ctx, tokens.AccessToken)
	require.Error(t, err)
}
