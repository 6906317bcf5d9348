package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// LoginThrottle limits failed login attempts per email address.
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted right now.
	Allow(ctx context.Context, email string) (bool, error)
	// RecordFailure counts one failed attempt against the email.
	RecordFailure(ctx context.Context, email string) error
	// Reset clears the failure counter after a successful login.
	Reset(ctx context.Context, email string) error
}

// AuthService implements client self-registration and login.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenService
	throttle LoginThrottle
	notifier ports.Notifier
	tokenTTL time.Duration
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenService,
	throttle LoginThrottle,
	notifier ports.Notifier,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		tokens:   tokens,
		throttle: throttle,
		notifier: notifier,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

// Register creates a client account. Staff accounts are never created here;
// trainers and admins come in through the invite flow.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.Password == "" || in.FirstName == "" || in.LastName == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		Role:         domain.RoleClient,
		Phone:        in.Phone,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	// Courtesy email; the account exists whether or not this lands.
	if err := s.notifier.Send(ctx, ports.NotifyWelcome, created.Email, map[string]string{
		"first_name": created.FirstName,
	}); err != nil {
		s.log.Warn().Err(err).Str("email", created.Email).Msg("welcome email failed")
	}

	s.log.Info().Str("user_id", created.ID).Str("role", created.Role).Msg("account registered")
	return created, nil
}

// Login authenticates by email and password and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}
	email = strings.ToLower(strings.TrimSpace(email))

	allowed, err := s.throttle.Allow(ctx, email)
	if err != nil {
		// Throttle outage degrades to allow; losing rate limiting is better
		// than locking everyone out.
		s.log.Warn().Err(err).Msg("login throttle unavailable, allowing attempt")
	} else if !allowed {
		return "", nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.recordFailure(ctx, email)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrAccountDeactivated
	}

	token, err := s.tokens.Issue(user.ID, user.Role, s.tokenTTL)
	if err != nil {
		return "", nil, err
	}

	if err := s.throttle.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login throttle")
	}

	return token, user, nil
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to record login failure")
	}
}
