package handler

import (
	"time"

	"github.com/pawacademy/training-platform/internal/core/domain"
)

type createInviteRequest struct {
	Email       string   `json:"email"       validate:"required,email"`
	FirstName   string   `json:"first_name"  validate:"required"`
	LastName    string   `json:"last_name"   validate:"required"`
	Role        string   `json:"role"        validate:"required,oneof=trainer admin"`
	Specialties []string `json:"specialties"`
}

// acceptInviteRequest deliberately has no role field: the account role
// always comes from the stored invite, so a redeeming request cannot
// elevate itself.
type acceptInviteRequest struct {
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
}

// inviteResponse is the public view of an invite. The token is never
// echoed back through the API; it travels only in the invite email.
type inviteResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        string     `json:"role"`
	Specialties []string   `json:"specialties,omitempty"`
	Status      string     `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CreatedBy   string     `json:"created_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`
}

func toInviteResponse(i *domain.Invite) inviteResponse {
	return inviteResponse{
		ID:          i.ID,
		Email:       i.Email,
		FirstName:   i.FirstName,
		LastName:    i.LastName,
		Role:        i.Role,
		Specialties: i.Specialties,
		Status:      string(i.Status),
		ExpiresAt:   i.ExpiresAt,
		CreatedBy:   i.CreatedBy,
		CreatedAt:   i.CreatedAt,
		AcceptedAt:  i.AcceptedAt,
	}
}

type inviteListResponse struct {
	Items []inviteResponse `json:"items"`
	Total int              `json:"total"`
}
