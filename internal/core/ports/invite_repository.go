package ports

import (
	"context"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

// InviteRepository persists staff invitations.
//
// UpdateStatus is the conditional-update primitive the lifecycle relies on:
// it transitions status only when the stored status still equals expected,
// returning domain.ErrInviteAlreadyUsed when the document exists but the
// precondition no longer holds. This single check-and-set closes the race
// between two concurrent redemptions of the same token.
type InviteRepository interface {
	Insert(ctx context.Context, invite *domain.Invite) error
	FindByToken(ctx context.Context, token string) (*domain.Invite, error)
	FindByID(ctx context.Context, id string) (*domain.Invite, error)
	FindPendingByEmail(ctx context.Context, email string) (*domain.Invite, error)
	UpdateStatus(ctx context.Context, id string, expected, next domain.InviteStatus, fields map[string]any) error
	ListByStatus(ctx context.Context, status domain.InviteStatus) ([]domain.Invite, error)
}
