package dto

import "github.com/google/uuid"

// User roles as reported by the API.
const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

type User struct {
	ID       uuid.UUID  `json:"id"`
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Role     string     `json:"role"`
	TeamID   *uuid.UUID `json:"team_id,omitempty"`
}

func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
