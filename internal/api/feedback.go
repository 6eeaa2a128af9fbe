package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

// ListFeedback returns the feedback visible to the caller: managers see
// feedback they have given, employees feedback they have received.
func (c *Client) ListFeedback(ctx context.Context) ([]dto.Feedback, error) {
	var feedback []dto.Feedback
	if err := c.JSON(ctx, http.MethodGet, "/feedback/", nil, &feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (c *Client) CreateFeedback(ctx context.Context, req dto.CreateFeedbackRequest) (*dto.Feedback, error) {
	var feedback dto.Feedback
	if err := c.JSON(ctx, http.MethodPost, "/feedback/", req, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, id uuid.UUID, req dto.UpdateFeedbackRequest) (*dto.Feedback, error) {
	var feedback dto.Feedback
	endpoint := fmt.Sprintf("/feedback/%s", id)
	if err := c.JSON(ctx, http.MethodPut, endpoint, req, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

// AcknowledgeFeedback marks the feedback as acknowledged. The transition is
// one-way and idempotent server-side, so duplicate calls are harmless.
func (c *Client) AcknowledgeFeedback(ctx context.Context, id uuid.UUID) (*dto.Feedback, error) {
	var feedback dto.Feedback
	endpoint := fmt.Sprintf("/feedback/%s/acknowledge", id)
	if err := c.JSON(ctx, http.MethodPatch, endpoint, nil, &feedback); err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (c *Client) AddComment(ctx context.Context, feedbackID uuid.UUID, content string) (*dto.Comment, error) {
	var comment dto.Comment
	endpoint := fmt.Sprintf("/feedback/%s/comments", feedbackID)
	req := dto.CreateCommentRequest{Content: content}
	if err := c.JSON(ctx, http.MethodPost, endpoint, req, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ExportPDF returns the rendered feedback report. Generation happens
// server-side; the client only hands the bytes to the user.
func (c *Client) ExportPDF(ctx context.Context) ([]byte, error) {
	return c.Binary(ctx, http.MethodGet, "/feedback/export/pdf")
}

// RequestFeedback notifies the caller's manager that feedback is wanted.
func (c *Client) RequestFeedback(ctx context.Context) error {
	return c.JSON(ctx, http.MethodPost, "/feedback/request", nil, nil)
}
