package model

import "time"

// User represents an authentication user. Roles are advisory: they gate
// convenience endpoints, not a security boundary.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"password_hash,omitempty"`
	Role         string    `json:"role"`
	BreederID    string    `json:"breeder_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy safe for API responses (no password hash). The hash
// keeps a JSON tag because the persistence layer serializes users as JSON.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// Roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleModerator: 2,
		RoleUser:      1,
	}
	return levels[role] >= levels[minimum]
}
