package api

import (
	"context"
	"net/http"

	"github.com/dimitrije/teampulse/pkg/dto"
)

// Me resolves the profile associated with the current token.
func (c *Client) Me(ctx context.Context) (*dto.User, error) {
	var user dto.User
	if err := c.JSON(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListEmployees returns employees that can still be added to a team.
func (c *Client) ListEmployees(ctx context.Context) ([]dto.User, error) {
	var users []dto.User
	if err := c.JSON(ctx, http.MethodGet, "/users/employees", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Register creates a new account. It is unauthenticated; the caller is
// expected to log in afterwards.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.User, error) {
	var user dto.User
	if err := c.PublicJSON(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
