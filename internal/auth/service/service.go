// Package service implements authentication: email OTP challenges,
// GitHub OAuth completion and session token issuance/resolution.
package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	authmodels "github.com/minitrello/minitrello/internal/auth/models"
	authrepo "github.com/minitrello/minitrello/internal/auth/repository"
	"github.com/minitrello/minitrello/internal/common/config"
	"github.com/minitrello/minitrello/internal/common/errors"
	"github.com/minitrello/minitrello/internal/common/logger"
	"github.com/minitrello/minitrello/internal/mailer"
	usermodels "github.com/minitrello/minitrello/internal/user/models"
	userrepo "github.com/minitrello/minitrello/internal/user/repository"
)

// invalidCodeMessage is returned for every OTP verification failure so
// callers cannot distinguish a wrong code from an expired one.
const invalidCodeMessage = "Invalid or expired code"

// Service provides OTP and OAuth authentication.
type Service struct {
	challenges authrepo.Repository
	users      userrepo.Repository
	mailer     mailer.Sender
	logger     *logger.Logger

	secret   []byte
	tokenTTL time.Duration
	otpTTL   time.Duration

	// now is swappable for expiry tests
	now func() time.Time
}

// Session is the result of a successful login: a signed token and the
// live user record.
type Session struct {
	AccessToken string
	User        *usermodels.User
}

// ExternalProfile carries the identity fields obtained from an OAuth
// provider.
type ExternalProfile struct {
	ProviderID string
	Email      string
	Fullname   string
	AvatarURL  string
}

// NewService creates a new authentication service
func NewService(challenges authrepo.Repository, users userrepo.Repository, sender mailer.Sender, cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{
		challenges: challenges,
		users:      users,
		mailer:     sender,
		logger:     log.WithFields(zap.String("component", "auth-service")),
		secret:     []byte(cfg.JWTSecret),
		tokenTTL:   cfg.TokenDurationTime(),
		otpTTL:     cfg.OTPDurationTime(),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// IssueChallenge generates a 6-digit code for the email, stores it with
// a 5-minute expiry (replacing any prior pending code) and dispatches
// it over the mail channel.
func (s *Service) IssueChallenge(ctx context.Context, email string) error {
	if email == "" {
		return errors.ValidationError("email", "email is required")
	}

	code, err := generateCode()
	if err != nil {
		return errors.InternalError("failed to generate verification code", err)
	}

	now := s.now()
	challenge := &authmodels.Challenge{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL),
		CreatedAt: now,
	}
	if err := s.challenges.Save(ctx, challenge); err != nil {
		return errors.InternalError("failed to store verification code", err)
	}

	if err := s.mailer.SendVerificationCode(email, code); err != nil {
		return errors.BadGateway("failed to deliver verification code", err)
	}

	s.logger.Info("verification code issued", zap.String("email", email))
	return nil
}

// VerifyChallenge checks the code for the email. On success the
// challenge is consumed, the user is looked up or created, and a
// session token is issued.
func (s *Service) VerifyChallenge(ctx context.Context, email, code, fullname string) (*Session, error) {
	if email == "" || code == "" {
		return nil, errors.ValidationError("email", "email and verificationCode are required")
	}

	challenge, err := s.challenges.Get(ctx, email)
	if err == authrepo.ErrNotFound {
		return nil, errors.BadRequest(invalidCodeMessage)
	}
	if err != nil {
		return nil, errors.InternalError("failed to load verification code", err)
	}
	if challenge.Code != code || challenge.Expired(s.now()) {
		return nil, errors.BadRequest(invalidCodeMessage)
	}

	// single use
	if err := s.challenges.Delete(ctx, email); err != nil {
		return nil, errors.InternalError("failed to consume verification code", err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err == userrepo.ErrNotFound {
		user = &usermodels.User{Email: email, Fullname: fullname}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, errors.InternalError("failed to create user", err)
		}
		s.logger.Info("user created", zap.String("user_id", user.ID), zap.String("email", email))
	} else if err != nil {
		return nil, errors.InternalError("failed to load user", err)
	}

	token, err := s.generateToken(user.ID, user.Email, s.now())
	if err != nil {
		return nil, errors.InternalError("failed to issue session token", err)
	}
	return &Session{AccessToken: token, User: user}, nil
}

// Resolve verifies a session token and loads the live user record so
// callers see current profile and github-token state.
func (s *Service) Resolve(ctx context.Context, token string) (*usermodels.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token")
	}

	user, err := s.users.Get(ctx, claims.ID)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token")
	}
	return user, nil
}

// CompleteExternalLogin resolves or creates a user for an OAuth
// profile, keyed first by provider id with an email fallback, merging
// in the provider id, avatar and access token on every login.
func (s *Service) CompleteExternalLogin(ctx context.Context, profile ExternalProfile, accessToken string) (*Session, error) {
	if profile.Email == "" {
		return nil, errors.ValidationError("email", "provider profile has no email")
	}

	user, err := s.users.GetByGitHubID(ctx, profile.ProviderID)
	if err == userrepo.ErrNotFound {
		user, err = s.users.GetByEmail(ctx, profile.Email)
	}

	switch {
	case err == userrepo.ErrNotFound:
		user = &usermodels.User{
			Email:             profile.Email,
			Fullname:          profile.Fullname,
			AvatarURL:         profile.AvatarURL,
			GitHubID:          profile.ProviderID,
			GitHubAccessToken: accessToken,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, errors.InternalError("failed to create user", err)
		}
		s.logger.Info("user created via oauth", zap.String("user_id", user.ID))
	case err != nil:
		return nil, errors.InternalError("failed to load user", err)
	default:
		user.GitHubID = profile.ProviderID
		user.GitHubAccessToken = accessToken
		if profile.AvatarURL != "" {
			user.AvatarURL = profile.AvatarURL
		}
		if user.Fullname == "" {
			user.Fullname = profile.Fullname
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, errors.InternalError("failed to refresh user", err)
		}
	}

	token, err := s.generateToken(user.ID, user.Email, s.now())
	if err != nil {
		return nil, errors.InternalError("failed to issue session token", err)
	}
	return &Session{AccessToken: token, User: user}, nil
}

// generateCode returns a random 6-digit numeric code, zero-padded.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
