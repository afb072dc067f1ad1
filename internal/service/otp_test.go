package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/talantix/portal/internal/entity"
	"github.com/talantix/portal/internal/limiter"
)

type otpFixture struct {
	svc      *OTPService
	users    *memUsers
	tokens   *memTokens
	counters *memCounters
	notifier *recordingNotifier
	clock    *testClock
	ctx      context.Context
}

func newOTPFixture(t *testing.T, users ...entity.User) *otpFixture {
	t.Helper()

	clock := newTestClock()
	counters := newMemCounters(clock)
	tokens := newMemTokens(clock)
	store := newMemUsers(users...)
	notifier := &recordingNotifier{}

	svc := NewOTPService(testConfig(), tokens, store, limiter.New(counters), notifier)
	svc.now = clock.Now

	return &otpFixture{
		svc:      svc,
		users:    store,
		tokens:   tokens,
		counters: counters,
		notifier: notifier,
		clock:    clock,
		ctx:      context.Background(),
	}
}

func TestGenerateCode_Format(t *testing.T) {
	f := newOTPFixture(t)

	for i := 0; i < 50; i++ {
		code := f.svc.GenerateCode()
		require.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
	}
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	f := newOTPFixture(t)
	userID := uuid.Must(uuid.NewV4())

	token, err := f.svc.Issue(f.ctx, userID, entity.PurposeResetPassword)
	require.NoError(t, err)

	got, err := f.svc.Validate(f.ctx, token.Code, entity.PurposeResetPassword)
	require.NoError(t, err)
	require.Equal(t, userID, got.UserID)
}

func TestValidate_UsableUntilExpiry(t *testing.T) {
	f := newOTPFixture(t)

	token, err := f.svc.Issue(f.ctx, uuid.Must(uuid.NewV4()), entity.PurposeResetPassword)
	require.NoError(t, err)

	f.clock.Advance(time.Hour)

	_, err = f.svc.Validate(f.ctx, token.Code, entity.PurposeResetPassword)
	require.NoError(t, err)

	f.clock.Advance(time.Second)

	_, err = f.svc.Validate(f.ctx, token.Code, entity.PurposeResetPassword)
	require.ErrorIs(t, err, entity.ErrCodeExpired)
}

func TestValidate_UnknownCode(t *testing.T) {
	f := newOTPFixture(t)

	_, err := f.svc.Validate(f.ctx, "000000", entity.PurposeResetPassword)
	require.ErrorIs(t, err, entity.ErrCodeNotFound)
}

func TestValidate_WrongPurpose(t *testing.T) {
	f := newOTPFixture(t)

	token, err := f.svc.Issue(f.ctx, uuid.Must(uuid.NewV4()), entity.PurposeVerifyEmail)
	require.NoError(t, err)

	_, err = f.svc.Validate(f.ctx, token.Code, entity.PurposeResetPassword)
	require.ErrorIs(t, err, entity.ErrWrongPurpose)
}

func TestRetryAfter_CooldownWindow(t *testing.T) {
	f := newOTPFixture(t)
	userID := uuid.Must(uuid.NewV4())

	retry, err := f.svc.RetryAfter(f.ctx, userID)
	require.NoError(t, err)
	require.Zero(t, retry)

	_, err = f.svc.Issue(f.ctx, userID, entity.PurposeResetPassword)
	require.NoError(t, err)

	retry, err = f.svc.RetryAfter(f.ctx, userID)
	require.NoError(t, err)
	require.Equal(t, time.Minute, retry)

	f.clock.Advance(59 * time.Second)

	retry, err = f.svc.RetryAfter(f.ctx, userID)
	require.NoError(t, err)
	require.Equal(t, time.Second, retry)

	f.clock.Advance(time.Second)

	retry, err = f.svc.RetryAfter(f.ctx, userID)
	require.NoError(t, err)
	require.Zero(t, retry)
}

func TestRequestPasswordReset_SendsCode(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	require.NoError(t, f.svc.RequestPasswordReset(f.ctx, user.Email))

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, user.Email, sent[0].To)
	require.Regexp(t, regexp.MustCompile(`\d{6}`), sent[0].Body)
}

func TestRequestPasswordReset_UnknownEmailSilent(t *testing.T) {
	f := newOTPFixture(t)

	require.NoError(t, f.svc.RequestPasswordReset(f.ctx, "ghost@example.com"))
	require.Empty(t, f.notifier.Sent())
}

func TestRequestPasswordReset_Cooldown(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	require.NoError(t, f.svc.RequestPasswordReset(f.ctx, user.Email))

	err := f.svc.RequestPasswordReset(f.ctx, user.Email)

	var rateErr *entity.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
	require.Equal(t, 60, rateErr.Seconds())

	f.clock.Advance(time.Minute)

	require.NoError(t, f.svc.RequestPasswordReset(f.ctx, user.Email))
	require.Len(t, f.notifier.Sent(), 2)
}

func TestConfirmPasswordReset_Success(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	token, err := f.svc.Issue(f.ctx, user.ID, entity.PurposeResetPassword)
	require.NoError(t, err)

	err = f.svc.ConfirmPasswordReset(f.ctx, user.Email, token.Code, "NewPassword2", "NewPassword2")
	require.NoError(t, err)

	stored, err := f.users.FindByID(f.ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("NewPassword2")))
}

func TestConfirmPasswordReset_WrongCodeCounted(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	err := f.svc.ConfirmPasswordReset(f.ctx, user.Email, "999999", "NewPassword2", "NewPassword2")
	require.ErrorIs(t, err, entity.ErrCodeNotFound)

	left, err := f.svc.AttemptsLeft(f.ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, 4, left)
}

func TestConfirmPasswordReset_RateLimited(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	token, err := f.svc.Issue(f.ctx, user.ID, entity.PurposeResetPassword)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		err := f.svc.ConfirmPasswordReset(f.ctx, user.Email, "999999", "NewPassword2", "NewPassword2")
		require.ErrorIs(t, err, entity.ErrCodeNotFound)
	}

	// even the right code is refused once the check limit is spent
	err = f.svc.ConfirmPasswordReset(f.ctx, user.Email, token.Code, "NewPassword2", "NewPassword2")

	var rateErr *entity.RateLimitedError
	require.ErrorAs(t, err, &rateErr)
}

func TestConfirmPasswordReset_SuccessClearsLimiter(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	token, err := f.svc.Issue(f.ctx, user.ID, entity.PurposeResetPassword)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := f.svc.ConfirmPasswordReset(f.ctx, user.Email, "999999", "NewPassword2", "NewPassword2")
		require.ErrorIs(t, err, entity.ErrCodeNotFound)
	}

	require.NoError(t, f.svc.ConfirmPasswordReset(f.ctx, user.Email, token.Code, "NewPassword2", "NewPassword2"))

	left, err := f.svc.AttemptsLeft(f.ctx, user.Email)
	require.NoError(t, err)
	require.Equal(t, 5, left)
}

func TestConfirmPasswordReset_ForeignCodeRejected(t *testing.T) {
	owner := testUser(t, "Password1")
	victim := testUser(t, "Password1")
	victim.ID = uuid.Must(uuid.NewV4())
	victim.Email = "victim@example.com"

	f := newOTPFixture(t, owner, victim)

	token, err := f.svc.Issue(f.ctx, owner.ID, entity.PurposeResetPassword)
	require.NoError(t, err)

	err = f.svc.ConfirmPasswordReset(f.ctx, victim.Email, token.Code, "NewPassword2", "NewPassword2")
	require.ErrorIs(t, err, entity.ErrCodeNotFound)
}

func TestConfirmPasswordReset_WeakPasswordRejected(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	token, err := f.svc.Issue(f.ctx, user.ID, entity.PurposeResetPassword)
	require.NoError(t, err)

	err = f.svc.ConfirmPasswordReset(f.ctx, user.Email, token.Code, "short", "short")
	require.ErrorIs(t, err, entity.ErrPasswordInvalidLen)
}

func TestRequestEmailChange_TakenEmail(t *testing.T) {
	user := testUser(t, "Password1")
	other := testUser(t, "Password1")
	other.ID = uuid.Must(uuid.NewV4())
	other.Email = "taken@example.com"

	f := newOTPFixture(t, user, other)

	err := f.svc.RequestEmailChange(f.ctx, user.ID, "taken@example.com")
	require.ErrorIs(t, err, entity.ErrAlreadyExists)
}

func TestConfirmEmailChange_Success(t *testing.T) {
	user := testUser(t, "Password1")
	f := newOTPFixture(t, user)

	require.NoError(t, f.svc.RequestEmailChange(f.ctx, user.ID, "new@example.com"))

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "new@example.com", sent[0].To)

	codeRe := regexp.MustCompile(`\d{6}`)
	code := codeRe.FindString(sent[0].Body)
	require.NotEmpty(t, code)

	require.NoError(t, f.svc.ConfirmEmailChange(f.ctx, user.ID, code, "new@example.com"))

	stored, err := f.users.FindByID(f.ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "new@example.com", stored.Email)
}

func TestDeleteExpiredCodes(t *testing.T) {
	f := newOTPFixture(t)

	token, err := f.svc.Issue(f.ctx, uuid.Must(uuid.NewV4()), entity.PurposeResetPassword)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)

	require.NoError(t, f.svc.DeleteExpiredCodes(f.ctx))

	_, err = f.svc.Validate(f.ctx, token.Code, entity.PurposeResetPassword)
	require.ErrorIs(t, err, entity.ErrCodeNotFound)
}
