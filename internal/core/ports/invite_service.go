package ports

import (
	"context"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

// CreateInviteInput carries everything needed to invite a staff member.
type CreateInviteInput struct {
	Email       string
	FirstName   string
	LastName    string
	Role        string
	Specialties []string
	CreatedBy   string
}

// AcceptInviteInput carries the redemption request fields. There is
// deliberately no role field: the created account's role always comes from
// the stored invite.
type AcceptInviteInput struct {
	Password string
	Phone    string
}

// InviteService drives the invite lifecycle state machine:
// pending -> accepted | expired | cancelled, all terminal.
type InviteService interface {
	CreateInvite(ctx context.Context, in CreateInviteInput) (*domain.Invite, error)
	ValidateInvite(ctx context.Context, token string) (*domain.Invite, error)
	AcceptInvite(ctx context.Context, token string, in AcceptInviteInput) (*domain.User, error)
	CancelInvite(ctx context.Context, id, byAdminID string) error
	ListInvites(ctx context.Context, status domain.InviteStatus) ([]domain.Invite, error)
}
