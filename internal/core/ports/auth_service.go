package ports

import (
	"context"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

// RegisterInput carries client self-registration data. Role is not part of
// the input: self-registration always produces a client account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
