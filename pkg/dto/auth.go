package dto

import "github.com/google/uuid"

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest is the wire shape for POST /auth/register. Exactly one of
// TeamName (manager) or TeamID (employee) is set, depending on Role.
type RegisterRequest struct {
	Email    string     `json:"email"`
	FullName string     `json:"full_name"`
	Password string     `json:"password"`
	Role     string     `json:"role"`
	TeamName string     `json:"team_name,omitempty"`
	TeamID   *uuid.UUID `json:"team_id,omitempty"`
}
