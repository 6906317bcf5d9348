package domain

// Principal is the authenticated identity attached to a request after the
// full gate chain has run. It is built fresh per request from a verified
// token subject plus a live directory lookup; only the subject id and role
// hint come from the token itself, because is_active and access_level can
// change between token issuance and use.
type Principal struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AccessLevel string `json:"access_level,omitempty"`
	IsActive    bool   `json:"is_active"`
}

// PrincipalFromUser derives a Principal from a live directory record.
func PrincipalFromUser(u *User) *Principal {
	return &Principal{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		AccessLevel: u.AccessLevel,
		IsActive:    u.IsActive,
	}
}
