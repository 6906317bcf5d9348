package domain

import "time"

const (
	RoleClient  = "client"
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// Access levels form an ordered permission tier for admin accounts only.
const (
	AccessReadonly = "readonly"
	AccessLimited  = "limited"
	AccessFull     = "full"
)

// accessRanking orders access levels. Values absent from the table rank 0,
// so an unknown or missing level never satisfies any minimum.
var accessRanking = map[string]int{
	AccessReadonly: 1,
	AccessLimited:  2,
	AccessFull:     3,
}

// AccessRank returns the numeric rank of an access level, 0 when unrecognized.
func AccessRank(level string) int {
	return accessRanking[level]
}

// ValidRole reports whether role is one of the recognized account roles.
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleTrainer || role == RoleAdmin
}

// User is the directory record for any account: clients, trainers, admins.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	AccessLevel  string    `json:"access_level,omitempty"`
	Specialties  []string  `json:"specialties,omitempty"`
	IsActive     bool      `json:"is_active"`
	Phone        string    `json:"phone,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
