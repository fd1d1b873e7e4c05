package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User represents an authenticated account. Role is assigned server-side;
// there is no self-service elevation path.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	ProfileImage string
	Phone        string
	Disabled     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// UserPatch enumerates the profile fields a user may change about
// themselves. Email and role are immutable from the client.
type UserPatch struct {
	Name         *string
	Phone        *string
	ProfileImage *string
}

// IsEmpty reports whether the patch names no fields.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Phone == nil && p.ProfileImage == nil
}
