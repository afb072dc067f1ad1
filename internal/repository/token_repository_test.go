package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/suite"

	"github.com/talantix/portal/internal/entity"
	"github.com/talantix/portal/internal/repository"
)

type TokenRepositoryTestSuite struct {
	suite.Suite
	repo  *repository.TokenRepository
	users *repository.UserRepository
}

func (ts *TokenRepositoryTestSuite) SetupTest() {
	db := repository.SetupTestDatabase(ts.T())
	ts.repo = repository.NewTokenRepository(db)
	ts.users = repository.NewUserRepository(db)
}

func TestTokenRepositoryTestSuite(t *testing.T) { //nolint:paralleltest
	suite.Run(t, new(TokenRepositoryTestSuite))
}

func (ts *TokenRepositoryTestSuite) storedUser(email string) entity.User {
	ts.T().Helper()

	user := newStoredUser(email)
	ts.Require().NoError(ts.users.CreateUser(context.Background(), user))

	return user
}

func newStoredToken(userID uuid.UUID, code string, purpose entity.TokenPurpose, createdAt time.Time) entity.UserToken {
	return entity.UserToken{
		ID:        uuid.Must(uuid.NewV4()),
		UserID:    userID,
		Code:      code,
		Purpose:   purpose,
		CreatedAt: createdAt,
		ExpiresAt: createdAt.Add(time.Hour),
	}
}

func (ts *TokenRepositoryTestSuite) TestSaveAndFindByCode() {
	ctx := context.Background()
	user := ts.storedUser("ivan@example.com")

	token := newStoredToken(user.ID, "123456", entity.PurposeResetPassword, time.Now().UTC())
	ts.Require().NoError(ts.repo.SaveToken(ctx, token))

	got, err := ts.repo.FindByCode(ctx, "123456")
	ts.Require().NoError(err)
	ts.Require().Equal(token.ID, got.ID)
	ts.Require().Equal(user.ID, got.UserID)
	ts.Require().Equal(entity.PurposeResetPassword, got.Purpose)
}

func (ts *TokenRepositoryTestSuite) TestFindByCode_NotFound() {
	_, err := ts.repo.FindByCode(context.Background(), "000000")
	ts.Require().ErrorIs(err, entity.ErrNotFound)
}

func (ts *TokenRepositoryTestSuite) TestFindByCode_PrefersNewest() {
	ctx := context.Background()
	user := ts.storedUser("ivan@example.com")

	older := newStoredToken(user.ID, "123456", entity.PurposeResetPassword, time.Now().UTC().Add(-time.Minute))
	newer := newStoredToken(user.ID, "123456", entity.PurposeVerifyEmail, time.Now().UTC())

	ts.Require().NoError(ts.repo.SaveToken(ctx, older))
	ts.Require().NoError(ts.repo.SaveToken(ctx, newer))

	got, err := ts.repo.FindByCode(ctx, "123456")
	ts.Require().NoError(err)
	ts.Require().Equal(newer.ID, got.ID)
}

func (ts *TokenRepositoryTestSuite) TestLastByUserAndPurpose() {
	ctx := context.Background()
	user := ts.storedUser("ivan@example.com")

	first := newStoredToken(user.ID, "111111", entity.PurposeResetPassword, time.Now().UTC().Add(-2*time.Minute))
	second := newStoredToken(user.ID, "222222", entity.PurposeResetPassword, time.Now().UTC())
	verify := newStoredToken(user.ID, "333333", entity.PurposeVerifyEmail, time.Now().UTC())

	ts.Require().NoError(ts.repo.SaveToken(ctx, first))
	ts.Require().NoError(ts.repo.SaveToken(ctx, second))
	ts.Require().NoError(ts.repo.SaveToken(ctx, verify))

	got, err := ts.repo.LastByUserAndPurpose(ctx, user.ID, entity.PurposeResetPassword)
	ts.Require().NoError(err)
	ts.Require().Equal(second.ID, got.ID)

	_, err = ts.repo.LastByUserAndPurpose(ctx, uuid.Must(uuid.NewV4()), entity.PurposeResetPassword)
	ts.Require().ErrorIs(err, entity.ErrNotFound)
}

func (ts *TokenRepositoryTestSuite) TestDeleteExpired() {
	ctx := context.Background()
	user := ts.storedUser("ivan@example.com")

	expired := newStoredToken(user.ID, "111111", entity.PurposeResetPassword, time.Now().UTC().Add(-2*time.Hour))
	active := newStoredToken(user.ID, "222222", entity.PurposeResetPassword, time.Now().UTC())

	ts.Require().NoError(ts.repo.SaveToken(ctx, expired))
	ts.Require().NoError(ts.repo.SaveToken(ctx, active))

	ts.Require().NoError(ts.repo.DeleteExpired(ctx))

	_, err := ts.repo.FindByCode(ctx, "111111")
	ts.Require().ErrorIs(err, entity.ErrNotFound)

	_, err = ts.repo.FindByCode(ctx, "222222")
	ts.Require().NoError(err)
}

func (ts *TokenRepositoryTestSuite) TestDeleteToken() {
	ctx := context.Background()
	user := ts.storedUser("ivan@example.com")

	token := newStoredToken(user.ID, "123456", entity.PurposeResetPassword, time.Now().UTC())
	ts.Require().NoError(ts.repo.SaveToken(ctx, token))

	ts.Require().NoError(ts.repo.DeleteToken(ctx, token.ID))
	ts.Require().ErrorIs(ts.repo.DeleteToken(ctx, token.ID), entity.ErrNotFound)
}
