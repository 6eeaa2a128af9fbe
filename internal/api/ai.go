package api

import (
	"context"
	"net/http"

	"github.com/dimitrije/teampulse/pkg/dto"
)

// The AI endpoints are an opaque collaborator: plain text in, plain text out.
// Sentiment and tags assigned by it are never predicted client-side.

func (c *Client) Rephrase(ctx context.Context, text string) (string, error) {
	var result string
	req := dto.RephraseRequest{Text: text}
	if err := c.JSON(ctx, http.MethodPost, "/ai/rephrase", req, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) SuggestFeedback(ctx context.Context, prompt string) (string, error) {
	var result string
	req := dto.SuggestFeedbackRequest{Prompt: prompt}
	if err := c.JSON(ctx, http.MethodPost, "/ai/suggest-feedback", req, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (c *Client) GenerateFeedback(ctx context.Context, strengths, improvements string) (string, error) {
	var result string
	req := dto.GenerateFeedbackRequest{Strengths: strengths, AreasForImprovement: improvements}
	if err := c.JSON(ctx, http.MethodPost, "/ai/generate-feedback", req, &result); err != nil {
		return "", err
	}
	return result, nil
}
