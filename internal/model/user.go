package model

import "time"

// Roles a user can hold. The role claim in access tokens uses the
// same values.
const (
	RoleStudent     = "student"
	RoleCoordinator = "coordinator"
	RoleAdmin       = "admin"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	return s == RoleStudent || s == RoleCoordinator || s == RoleAdmin
}

// User mirrors the `users` table. PasswordHash is a bcrypt hash and is
// never serialized; handlers return users without the credential.
// ClubID is the optional club affiliation.
type User struct {
	ID           uint64    `json:"id"`               // users.id
	Name         string    `json:"name"`             // users.name
	Email        string    `json:"email"`            // users.email (unique)
	PasswordHash string    `json:"-"`                // users.password_hash
	Role         string    `json:"role"`             // users.role (student/coordinator/admin)
	ClubID       *uint64   `json:"clubId,omitempty"` // users.club_id (nullable)
	IsActive     bool      `json:"isActive"`         // users.is_active
	CreatedAt    time.Time `json:"createdAt"`        // users.created_at
	UpdatedAt    time.Time `json:"updatedAt"`        // users.updated_at
}
