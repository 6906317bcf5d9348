package ports

import (
	"context"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

// UserRepository is the directory gateway: the contract through which the
// core reads and mutates account records. Implementations must translate a
// storage uniqueness violation into domain.ErrUserExists and an absent
// record into domain.ErrUserNotFound.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]domain.User, error)
}
