package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/pawacademy/training-platform/internal/core/domain"
	"github.com/pawacademy/training-platform/internal/core/ports"
)

// stubThrottle counts failures in memory; errOut simulates a Redis outage.
type stubThrottle struct {
	failures map[string]int
	max      int
	errOut   bool
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Allow(_ context.Context, email string) (bool, error) {
	if t.errOut {
		return false, errors.New("redis down")
	}
	return t.failures[email] < t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	if t.errOut {
		return errors.New("redis down")
	}
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	if t.errOut {
		return errors.New("redis down")
	}
	delete(t.failures, email)
	return nil
}

func newAuthFixture() (*AuthService, *stubUserRepo, *stubThrottle) {
	users := newStubUserRepo()
	throttle := newStubThrottle(3)
	tokens := NewTokenService("secret", time.Hour)
	svc := NewAuthService(users, tokens, throttle, &stubNotifier{}, time.Hour, zerolog.Nop())
	return svc, users, throttle
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:     "Alice@Example.com",
		Password:  "pass1234",
		FirstName: "Alice",
		LastName:  "Nguyen",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != domain.RoleClient {
		t.Fatalf("self-registration must produce a client, got %s", user.Role)
	}
	if !user.IsActive {
		t.Fatalf("expected active account")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Email: "a@b.com"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, _, _ := newAuthFixture()

	in := ports.RegisterInput{Email: "bob@example.com", Password: "pass1234", FirstName: "Bob", LastName: "Li"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "carol@example.com", Password: "s3cret99", FirstName: "Carol", LastName: "Diaz",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol@example.com", "s3cret99")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if user == nil || user.Email != "carol@example.com" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims, err := NewTokenService("secret", time.Hour).Verify(token)
	if err != nil {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims.SubjectID != user.ID || claims.Role != domain.RoleClient {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _, throttle := newAuthFixture()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Email: "dave@example.com", Password: "goodpass", FirstName: "Dave", LastName: "Kim",
	})

	if _, _, err := svc.Login(context.Background(), "dave@example.com", "badpass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if throttle.failures["dave@example.com"] != 1 {
		t.Fatalf("failure was not recorded")
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	// Unknown accounts and wrong passwords are indistinguishable to the caller.
	if _, _, err := svc.Login(context.Background(), "ghost@example.com", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Email: "eve@example.com", Password: "goodpass", FirstName: "Eve", LastName: "Moss",
	})

	for i := 0; i < 3; i++ {
		_, _, _ = svc.Login(context.Background(), "eve@example.com", "badpass")
	}
	if _, _, err := svc.Login(context.Background(), "eve@example.com", "goodpass"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestAuthService_Login_ThrottleOutageFailsOpen(t *testing.T) {
	svc, _, throttle := newAuthFixture()

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Email: "frank@example.com", Password: "goodpass", FirstName: "Frank", LastName: "Ito",
	})

	throttle.errOut = true

	if _, _, err := svc.Login(context.Background(), "frank@example.com", "goodpass"); err != nil {
		t.Fatalf("login must succeed when throttle is down: %v", err)
	}
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	svc, users, _ := newAuthFixture()

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "gina@example.com", Password: "goodpass", FirstName: "Gina", LastName: "Park",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := users.UpdateFields(context.Background(), user.ID, map[string]any{"is_active": false}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "gina@example.com", "goodpass"); !errors.Is(err, domain.ErrAccountDeactivated) {
		t.Fatalf("expected ErrAccountDeactivated, got %v", err)
	}
}
