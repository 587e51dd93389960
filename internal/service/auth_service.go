package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/depositdefenders/accounts-service/internal/auth"
	"github.com/depositdefenders/accounts-service/internal/config"
	"github.com/depositdefenders/accounts-service/internal/domain"
	"github.com/depositdefenders/accounts-service/internal/events"
	"github.com/depositdefenders/accounts-service/internal/payment"
	"github.com/depositdefenders/accounts-service/internal/repository"
	apperrors "github.com/depositdefenders/accounts-service/pkg/util"
)

// Identical for unknown email and wrong password so responses don't reveal
// whether an account exists.
const invalidCredentialsMsg = "invalid email or password"

// AuthService coordinates signup, login and password-reset flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	payments   payment.Provider
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	resetTTL   time.Duration
}

// AuthDependencies encapsulates collaborator requirements for the service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Payments          payment.Provider
	Dispatcher        events.Dispatcher
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		payments:   deps.Payments,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLDays),
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.ResetTokenTTLMinutes) * time.Minute,
	}
}

// Signup provisions a new account. Order matters: the duplicate check runs
// before any side effect, the payment customer is created before the record
// (a pro user is never persisted without a customer reference), and the token
// is only issued for an account that persisted. The welcome notification is
// published async and never affects the outcome.
func (s *AuthService) Signup(ctx context.Context, email, password string, plan domain.Plan) (*domain.User, string, time.Time, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("an account with this email already exists",
			map[string]any{"email": "an account with this email already exists"})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Plan:         plan,
	}

	if plan == domain.PlanPro {
		customerID, err := s.payments.CreateCustomer(ctx, email, plan)
		if err != nil {
			s.logger.Error("payment customer creation failed", zap.String("email", email), zap.Error(err))
			return nil, "", time.Time{}, apperrors.NewPaymentSetupError(err)
		}
		user.StripeCustomerID = customerID
		user.SubscriptionStatus = domain.SubscriptionActive
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// A concurrent signup won the race; the unique index is authoritative.
			return nil, "", time.Time{}, apperrors.NewConflict("an account with this email already exists",
				map[string]any{"email": "an account with this email already exists"})
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	token, exp, err := s.issueToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	s.dispatcher.PublishAsync(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccountCreated,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload:   events.AccountCreatedPayload{Plan: user.Plan},
	})

	return user, token, exp, nil
}

// Login authenticates a user and issues a token from the record's current
// plan, never from a prior session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentialsMsg)
		}
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized(invalidCredentialsMsg)
	}

	token, exp, err := s.issueToken(user)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// RequestPasswordReset persists a reset token and dispatches the reset email.
// An unknown email yields no token and no error, so the endpoint's response
// is identical either way.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*repository.PasswordResetToken, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewInternalError(err)
	}

	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.dispatcher.PublishAsync(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPasswordResetRequested,
		UserID:    user.ID,
		Email:     user.Email,
		Timestamp: time.Now(),
		Payload: events.PasswordResetRequestedPayload{
			ResetToken: token.Token,
			ExpiresAt:  token.ExpiresAt,
		},
	})

	return token, nil
}

// ConfirmPasswordReset validates the reset token and updates the password.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, tokenStr, newPassword string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid or expired reset token", nil)
		}
		return apperrors.NewInternalError(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return apperrors.NewValidationError("invalid or expired reset token", nil)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid or expired reset token", nil)
		}
		return apperrors.NewInternalError(err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueToken(user *domain.User) (string, time.Time, error) {
	token, exp, err := s.tokenMgr.Issue(user.ID, user.Email, user.Plan)
	if err != nil {
		if errors.Is(err, auth.ErrMissingSecret) {
			return "", time.Time{}, apperrors.NewConfigurationError(err)
		}
		return "", time.Time{}, apperrors.NewInternalError(err)
	}
	return token, exp, nil
}
