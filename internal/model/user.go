package model

import (
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold. Authorization checks
// compare against these constants, never against free-form strings.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleModerator:
		return RoleModerator, true
	case RoleUser:
		return RoleUser, true
	default:
		return "", false
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleModerator || r == RoleUser
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the client-facing projection of a User. The password hash
// never leaves the service boundary.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
