package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

func (c *Client) ListNotifications(ctx context.Context) ([]dto.Notification, error) {
	var notifications []dto.Notification
	if err := c.JSON(ctx, http.MethodGet, "/notifications", nil, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) error {
	endpoint := fmt.Sprintf("/notifications/%s/read", id)
	return c.JSON(ctx, http.MethodPatch, endpoint, nil, nil)
}
