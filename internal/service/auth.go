package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/middleware"
)

// Mailer dispatches password-reset messages. The default deployment logs
// them; a real SMTP sender can be swapped in without touching the service.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email string, token string) error
}

// LogMailer writes reset dispatches to the service log instead of sending
// mail.
type LogMailer struct {
	Logger zerolog.Logger
}

// SendPasswordReset logs the dispatch.
func (m LogMailer) SendPasswordReset(_ context.Context, email string, token string) error {
	m.Logger.Info().Str("email", email).Str("token", token).Msg("password reset dispatched")
	return nil
}

const resetTokenTTL = time.Hour

// Auth implements email/password sign-up, sign-in, and password reset on
// top of the user repository. Sessions are stateless bearer tokens, so
// sign-out is client-side token disposal.
type Auth struct {
	users     domain.UserRepository
	mailer    Mailer
	logger    zerolog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

// NewAuth constructs the auth service.
func NewAuth(users domain.UserRepository, mailer Mailer, logger zerolog.Logger, jwtSecret string, tokenTTL time.Duration) *Auth {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Auth{users: users, mailer: mailer, logger: logger, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// SignUp creates an account with the user role and returns a session token.
// Inputs must already be validated; the email uniqueness check is the
// store's.
func (s *Auth) SignUp(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.UserRoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SignIn verifies credentials and returns a session token. Unknown account,
// wrong password, and disabled account surface as distinct sentinel errors
// so the handler can map each to its message.
func (s *Auth) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrAccountNotFound
		}
		return "", nil, err
	}
	if user.Disabled {
		return "", nil, domain.ErrAccountDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, domain.ErrIncorrectPassword
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// RequestPasswordReset issues a single-use token and hands it to the mailer.
// Unknown addresses return nil so the endpoint cannot be used to enumerate
// accounts.
func (s *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debug().Str("email", email).Msg("password reset for unknown email")
			return nil
		}
		return err
	}

	token := uuid.NewString()
	if err := s.users.CreatePasswordReset(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, user.Email, token)
}

// ConfirmPasswordReset consumes the token and installs the new password.
func (s *Auth) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	userID, err := s.users.ConsumePasswordReset(ctx, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, string(hash))
}

func (s *Auth) issueToken(user *domain.User) (string, error) {
	token, err := middleware.SignJWT(s.jwtSecret, middleware.TokenClaims{
		Sub:      user.ID,
		Role:     string(user.Role),
		Exp:      time.Now().Add(s.tokenTTL).Unix(),
		Issuer:   "donation-api",
		Audience: "donation-clients",
	})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}
