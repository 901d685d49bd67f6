package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/confirm"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/repository"
	"yamdb/internal/metrics"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, email string) (*models.User, error)
	ResendCode(ctx context.Context, email string) error
	ExchangeCode(ctx context.Context, email, code string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (*models.User, error)
}

type authService struct {
	users         UserService
	userRepo      repository.UserRepository
	tokens        *confirm.Generator
	issuer        *TokenIssuer
	attempts      AttemptLimiter
	confirmations *ConfirmationSender
	metrics       *metrics.Metrics
	logger        *slog.Logger
	now           func() time.Time
}

func NewAuthService(
	users UserService,
	userRepo repository.UserRepository,
	tokens *confirm.Generator,
	issuer *TokenIssuer,
	attempts AttemptLimiter,
	confirmations *ConfirmationSender,
	m *metrics.Metrics,
	logger *slog.Logger,
) AuthService {
	if attempts == nil {
		attempts = NewNoopAttemptLimiter()
	}
	return &authService{
		users:         users,
		userRepo:      userRepo,
		tokens:        tokens,
		issuer:        issuer,
		attempts:      attempts,
		confirmations: confirmations,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// Register creates an inactive account and mails it a confirmation code.
func (s *authService) Register(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.CreateUser(ctx, email, UserFields{})
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	s.confirmations.Send(ctx, user)
	return user, nil
}

// ResendCode mails a fresh code to an existing account.
func (s *authService) ResendCode(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.Validation("email", "no user with such email")
	}
	if err != nil {
		return err
	}
	s.confirmations.Send(ctx, user)
	return nil
}

// ExchangeCode trades a valid confirmation code for an access token. The
// account becomes active and its last login moves forward, which invalidates
// the code.
func (s *authService) ExchangeCode(ctx context.Context, email, code string) (string, error) {
	email = NormalizeEmail(email)

	allowed, err := s.attempts.Allow(ctx, email)
	if err != nil {
		s.logger.Warn("attempt limiter unavailable", "error", err)
	}
	if !allowed {
		s.metrics.ConfirmationAttempt("throttled")
		return "", apperr.Throttled("too many confirmation attempts, try again later")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.fail(ctx, email, "unknown_email")
		return "", apperr.Validation("email", "no user with such email")
	}
	if err != nil {
		return "", err
	}

	if !s.tokens.CheckToken(user, code) {
		s.fail(ctx, email, "wrong_code")
		return "", apperr.Validation("confirmation_code", "wrong code")
	}

	if err := s.attempts.Reset(ctx, email); err != nil {
		s.logger.Warn("attempt limiter reset failed", "error", err)
	}

	// stored at second precision so codes minted from the saved row match
	now := s.now().UTC().Truncate(time.Second)
	user.IsActive = true
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return "", err
	}
	s.metrics.ConfirmationAttempt("ok")
	s.logger.Info("confirmation code exchanged", "user_id", user.ID)
	return token, nil
}

func (s *authService) fail(ctx context.Context, email, result string) {
	s.metrics.ConfirmationAttempt(result)
	if err := s.attempts.Fail(ctx, email); err != nil {
		s.logger.Warn("attempt limiter unavailable", "error", err)
	}
}

// Authenticate resolves a bearer token to an active user.
func (s *authService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.issuer.Parse(accessToken)
	if err != nil {
		return nil, apperr.Authentication("invalid or expired token").Wrap(err)
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Authentication("user not found")
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperr.Authentication("user is inactive")
	}
	return user, nil
}
