package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmodels "github.com/minitrello/minitrello/internal/auth/models"
	authrepo "github.com/minitrello/minitrello/internal/auth/repository"
	"github.com/minitrello/minitrello/internal/common/config"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	userrepo "github.com/minitrello/minitrello/internal/user/repository"
)

// captureSender records the last code instead of sending email.
type captureSender struct {
	mu    sync.Mutex
	email string
	code  string
	fail  bool
}

func (s *captureSender) SendVerificationCode(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.email = email
	s.code = code
	return nil
}

func (s *captureSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func newTestService(t *testing.T) (*Service, *captureSender) {
	t.Helper()
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	sender := &captureSender{}
	svc := NewService(
		authrepo.NewMemoryRepository(),
		userrepo.NewMemoryRepository(),
		sender,
		config.AuthConfig{
			JWTSecret:     "test-secret",
			TokenDuration: 7 * 24 * 3600,
			OTPDuration:   300,
		},
		log,
	)
	return svc, sender
}

func TestVerifyChallenge_Success(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	require.Len(t, sender.lastCode(), 6)

	session, err := svc.VerifyChallenge(ctx, "alice@example.com", sender.lastCode(), "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
	assert.Equal(t, "alice@example.com", session.User.Email)
	assert.Equal(t, "Alice", session.User.Fullname)
}

func TestVerifyChallenge_SingleUse(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	code := sender.lastCode()

	_, err := svc.VerifyChallenge(ctx, "alice@example.com", code, "")
	require.NoError(t, err)

	_, err = svc.VerifyChallenge(ctx, "alice@example.com", code, "")
	require.Error(t, err)
	assert.True(t, errors.IsBadRequest(err))
}

func TestVerifyChallenge_WrongCode(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))

	_, err := svc.VerifyChallenge(ctx, "alice@example.com", "000000", "")
	require.Error(t, err)
	assert.True(t, errors.IsBadRequest(err))
}

func TestVerifyChallenge_Expiry(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	issued := time.Now().UTC()
	svc.now = func() time.Time { return issued }
	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	code := sender.lastCode()

	// exactly at expiry is still accepted
	svc.now = func() time.Time { return issued.Add(5 * time.Minute) }
	session, err := svc.VerifyChallenge(ctx, "alice@example.com", code, "")
	require.NoError(t, err)
	require.NotNil(t, session)

	// past expiry is rejected
	svc.now = func() time.Time { return issued }
	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	code = sender.lastCode()

	svc.now = func() time.Time { return issued.Add(5*time.Minute + time.Second) }
	_, err = svc.VerifyChallenge(ctx, "alice@example.com", code, "")
	require.Error(t, err)
	assert.True(t, errors.IsBadRequest(err))
}

func TestIssueChallenge_Supersedes(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueChallenge(ctx, "x@y.com"))
	first := sender.lastCode()

	require.NoError(t, svc.IssueChallenge(ctx, "x@y.com"))
	second := sender.lastCode()

	if first != second {
		_, err := svc.VerifyChallenge(ctx, "x@y.com", first, "")
		require.Error(t, err, "first code must be superseded")
	}

	session, err := svc.VerifyChallenge(ctx, "x@y.com", second, "")
	require.NoError(t, err)
	assert.NotNil(t, session.User)
}

func TestIssueChallenge_DeliveryFailure(t *testing.T) {
	svc, sender := newTestService(t)
	sender.fail = true

	err := svc.IssueChallenge(context.Background(), "alice@example.com")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBadGateway, appErr.Code)
}

func TestResolve_RoundTrip(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	session, err := svc.VerifyChallenge(ctx, "alice@example.com", sender.lastCode(), "Alice")
	require.NoError(t, err)

	user, err := svc.Resolve(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestResolve_InvalidToken(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Resolve(context.Background(), "not-a-token")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnauthorized, appErr.Code)
}

func TestCompleteExternalLogin_CreatesAndMerges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	profile := ExternalProfile{
		ProviderID: "12345",
		Email:      "alice@example.com",
		Fullname:   "Alice",
		AvatarURL:  "https://avatars.example/alice",
	}

	session, err := svc.CompleteExternalLogin(ctx, profile, "gho_first")
	require.NoError(t, err)
	assert.Equal(t, "12345", session.User.GitHubID)
	assert.Equal(t, "gho_first", session.User.GitHubAccessToken)

	// repeat login refreshes the token on the same account
	session2, err := svc.CompleteExternalLogin(ctx, profile, "gho_second")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, session2.User.ID)
	assert.Equal(t, "gho_second", session2.User.GitHubAccessToken)
}

func TestCompleteExternalLogin_LinksByEmail(t *testing.T) {
	svc, sender := newTestService(t)
	ctx := context.Background()

	// account created via OTP first
	require.NoError(t, svc.IssueChallenge(ctx, "alice@example.com"))
	otpSession, err := svc.VerifyChallenge(ctx, "alice@example.com", sender.lastCode(), "Alice")
	require.NoError(t, err)

	session, err := svc.CompleteExternalLogin(ctx, ExternalProfile{
		ProviderID: "777",
		Email:      "alice@example.com",
	}, "gho_token")
	require.NoError(t, err)
	assert.Equal(t, otpSession.User.ID, session.User.ID)
	assert.Equal(t, "777", session.User.GitHubID)
}

// failingChallengeRepo simulates a storage outage on reads.
type failingChallengeRepo struct {
	authrepo.Repository
}

func (r *failingChallengeRepo) Get(ctx context.Context, email string) (*authmodels.Challenge, error) {
	return nil, assert.AnError
}

func TestVerifyChallenge_StorageFailureIsNotInvalidCode(t *testing.T) {
	log, err := logger.NewLogger(logger.LoggingConfig{Level: "error", Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	svc := NewService(
		&failingChallengeRepo{Repository: authrepo.NewMemoryRepository()},
		userrepo.NewMemoryRepository(),
		&captureSender{},
		config.AuthConfig{JWTSecret: "test-secret", TokenDuration: 7 * 24 * 3600, OTPDuration: 300},
		log,
	)

	_, err = svc.VerifyChallenge(context.Background(), "alice@example.com", "123456", "")
	require.Error(t, err)

	appErr, ok := err.(*errors.AppError)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInternalError, appErr.Code, "a storage failure must not masquerade as a wrong code")
}
