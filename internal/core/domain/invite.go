package domain

import "time"

// InviteStatus represents the lifecycle state of a staff invitation.
type InviteStatus string

const (
	InvitePending   InviteStatus = "pending"
	InviteAccepted  InviteStatus = "accepted"
	InviteExpired   InviteStatus = "expired"
	InviteCancelled InviteStatus = "cancelled"
)

// validInviteTransitions defines the allowed state machine transitions.
// Every state other than pending is terminal.
var validInviteTransitions = map[InviteStatus][]InviteStatus{
	InvitePending: {InviteAccepted, InviteExpired, InviteCancelled},
}

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s InviteStatus) CanTransitionTo(next InviteStatus) bool {
	for _, allowed := range validInviteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s InviteStatus) IsTerminal() bool {
	return len(validInviteTransitions[s]) == 0
}

// Invite is a time-bounded, single-use credential that lets a specified
// email/role pair self-register without public sign-up. The token is an
// opaque bearer secret; expiry lives in stored state, not in the token.
type Invite struct {
	ID          string       `json:"id"`
	Email       string       `json:"email"`
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Role        string       `json:"role"`
	Token       string       `json:"-"`
	Specialties []string     `json:"specialties,omitempty"`
	Status      InviteStatus `json:"status"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	AcceptedAt  *time.Time   `json:"accepted_at,omitempty"`
}

// TimeExpired reports whether the invite's expiry instant has passed,
// independent of its stored status.
func (i *Invite) TimeExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
