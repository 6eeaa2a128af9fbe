package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

// ListTeams returns the public team listing used during registration. It is
// the only collection endpoint available without a session.
func (c *Client) ListTeams(ctx context.Context) ([]dto.TeamPublic, error) {
	var teams []dto.TeamPublic
	if err := c.PublicJSON(ctx, http.MethodGet, "/teams/", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// MyTeam returns the calling manager's team with its member roster.
func (c *Client) MyTeam(ctx context.Context) (*dto.Team, error) {
	var team dto.Team
	if err := c.JSON(ctx, http.MethodGet, "/teams/me", nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

// TeamStats returns the server-computed sentiment aggregate for the team.
func (c *Client) TeamStats(ctx context.Context) ([]dto.SentimentStat, error) {
	var stats []dto.SentimentStat
	if err := c.JSON(ctx, http.MethodGet, "/teams/me/stats", nil, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// AddTeamMember adds an existing employee to the calling manager's team.
func (c *Client) AddTeamMember(ctx context.Context, employeeID uuid.UUID) (*dto.Team, error) {
	var team dto.Team
	endpoint := fmt.Sprintf("/teams/me/members/%s", employeeID)
	if err := c.JSON(ctx, http.MethodPost, endpoint, nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}
