package dashboard

import (
	"context"
	"sync"

	"github.com/dimitrije/teampulse/internal/api"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

// EmployeeController holds the employee's received-feedback timeline and
// applies the two optimistic mutations: acknowledge and comment-append. Both
// are applied only after server confirmation, to exactly one entry, without
// re-fetching the collection.
type EmployeeController struct {
	client *api.Client

	mu       sync.Mutex
	feedback []dto.Feedback
	loaded   bool
}

func NewEmployeeController(client *api.Client) *EmployeeController {
	return &EmployeeController{client: client}
}

func (c *EmployeeController) Load(ctx context.Context) error {
	feedback, err := c.client.ListFeedback(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = feedback
	c.loaded = true
	return nil
}

func (c *EmployeeController) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Feedback returns a copy of the timeline.
func (c *EmployeeController) Feedback() []dto.Feedback {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]dto.Feedback(nil), c.feedback...)
}

// Acknowledge marks the feedback as acknowledged and flips exactly the
// matching local entry. The transition is one-way; entries with other ids
// are never touched. A duplicate call simply confirms the same state.
func (c *EmployeeController) Acknowledge(ctx context.Context, id uuid.UUID) error {
	if _, err := c.client.AcknowledgeFeedback(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.feedback {
		if c.feedback[i].ID == id {
			c.feedback[i].Acknowledged = true
			break
		}
	}
	return nil
}

// AddComment appends the server-confirmed comment to exactly the matching
// feedback entry, preserving arrival order with the new comment last.
func (c *EmployeeController) AddComment(ctx context.Context, feedbackID uuid.UUID, content string) (*dto.Comment, error) {
	comment, err := c.client.AddComment(ctx, feedbackID, content)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	appendComment(c.feedback, feedbackID, *comment)
	return comment, nil
}

// RequestFeedback notifies the manager that this employee wants feedback.
func (c *EmployeeController) RequestFeedback(ctx context.Context) error {
	return c.client.RequestFeedback(ctx)
}

// ExportPDF returns the employee's feedback report as raw bytes.
func (c *EmployeeController) ExportPDF(ctx context.Context) ([]byte, error) {
	return c.client.ExportPDF(ctx)
}

// appendComment appends the comment to the entry with the given id, leaving
// every other entry's comment sequence alone. Caller holds the lock.
func appendComment(feedback []dto.Feedback, id uuid.UUID, comment dto.Comment) {
	for i := range feedback {
		if feedback[i].ID == id {
			feedback[i].Comments = append(feedback[i].Comments, comment)
			return
		}
	}
}
