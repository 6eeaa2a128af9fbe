package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dimitrije/teampulse/internal/api"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FeedbackDraft is the manager's authoring input, validated before any
// network call. Sentiment is the manager's own classification; the server's
// AI collaborator may still attach generated text and tags.
type FeedbackDraft struct {
	Strengths           string
	AreasForImprovement string
	Sentiment           dto.Sentiment
}

func (d FeedbackDraft) Validate() error {
	if len(strings.TrimSpace(d.Strengths)) < 10 {
		return errors.New("please provide some detail on strengths")
	}
	if len(strings.TrimSpace(d.AreasForImprovement)) < 10 {
		return errors.New("please provide some detail on areas for improvement")
	}
	if !d.Sentiment.Valid() {
		return errors.New("you must select a sentiment")
	}
	return nil
}

// ManagerSnapshot is a consistent view of the manager dashboard. It is
// either fully populated or empty; partial loads are never exposed.
type ManagerSnapshot struct {
	Team     *dto.Team
	Stats    []dto.SentimentStat
	Feedback []dto.Feedback
	Loaded   bool
}

// TotalFeedback is the sum of the server-computed stat counts. It is derived
// from the snapshot, never incremented locally.
func (s ManagerSnapshot) TotalFeedback() int {
	total := 0
	for _, stat := range s.Stats {
		total += stat.Count
	}
	return total
}

// ManagerController loads and mutates the manager dashboard data: team
// roster, sentiment aggregate and given feedback.
type ManagerController struct {
	client *api.Client

	mu       sync.Mutex
	team     *dto.Team
	stats    []dto.SentimentStat
	feedback []dto.Feedback
	loaded   bool
	selected *dto.User
}

func NewManagerController(client *api.Client) *ManagerController {
	return &ManagerController{client: client}
}

// Load fetches team, stats and feedback concurrently and commits the joined
// result as a single transition. If any of the three fails, the controller
// holds no data at all afterwards.
func (c *ManagerController) Load(ctx context.Context) error {
	var (
		team     *dto.Team
		stats    []dto.SentimentStat
		feedback []dto.Feedback
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		team, err = c.client.MyTeam(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = c.client.TeamStats(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		feedback, err = c.client.ListFeedback(gctx)
		return err
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := g.Wait(); err != nil {
		c.team = nil
		c.stats = nil
		c.feedback = nil
		c.loaded = false
		return err
	}

	c.team = team
	c.stats = stats
	c.feedback = feedback
	c.loaded = true
	return nil
}

// Snapshot returns a copy of the loaded data.
func (c *ManagerController) Snapshot() ManagerSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ManagerSnapshot{
		Team:     c.team,
		Stats:    append([]dto.SentimentStat(nil), c.stats...),
		Feedback: append([]dto.Feedback(nil), c.feedback...),
		Loaded:   c.loaded,
	}
}

// BeginFeedback opens the authoring flow for a team member. Only one flow
// may be open at a time.
func (c *ManagerController) BeginFeedback(member dto.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil {
		return fmt.Errorf("feedback for %s is already being written", c.selected.FullName)
	}
	m := member
	c.selected = &m
	return nil
}

// CancelFeedback closes the authoring flow and clears the selection, so
// reopening for a different member starts clean.
func (c *ManagerController) CancelFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = nil
}

// Selected returns the member currently being written feedback, if any.
func (c *ManagerController) Selected() *dto.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SubmitFeedback creates feedback for the selected member, then triggers a
// full reconciling reload: the sentiment distribution is assigned
// server-side, so the aggregate cannot be bumped locally.
func (c *ManagerController) SubmitFeedback(ctx context.Context, draft FeedbackDraft) (*dto.Feedback, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == nil {
		return nil, errors.New("no team member selected for feedback")
	}

	created, err := c.client.CreateFeedback(ctx, dto.CreateFeedbackRequest{
		EmployeeID:          selected.ID,
		Strengths:           draft.Strengths,
		AreasForImprovement: draft.AreasForImprovement,
		Sentiment:           draft.Sentiment,
	})
	if err != nil {
		return nil, err
	}

	c.CancelFeedback()

	if err := c.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// EditFeedback updates an existing feedback entry and replaces exactly the
// matching list item with the server's response.
func (c *ManagerController) EditFeedback(ctx context.Context, id uuid.UUID, draft FeedbackDraft) (*dto.Feedback, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	updated, err := c.client.UpdateFeedback(ctx, id, dto.UpdateFeedbackRequest{
		Strengths:           draft.Strengths,
		AreasForImprovement: draft.AreasForImprovement,
		Sentiment:           draft.Sentiment,
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.feedback {
		if c.feedback[i].ID == id {
			c.feedback[i] = *updated
			break
		}
	}
	return updated, nil
}

// AddComment appends the server-confirmed comment to exactly the matching
// feedback entry.
func (c *ManagerController) AddComment(ctx context.Context, feedbackID uuid.UUID, content string) (*dto.Comment, error) {
	comment, err := c.client.AddComment(ctx, feedbackID, content)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	appendComment(c.feedback, feedbackID, *comment)
	return comment, nil
}

// AddMember adds an employee to the team, then reloads so roster and
// aggregates stay authoritative.
func (c *ManagerController) AddMember(ctx context.Context, employeeID uuid.UUID) error {
	if _, err := c.client.AddTeamMember(ctx, employeeID); err != nil {
		return err
	}
	return c.Load(ctx)
}

// ListEmployees returns the employees that can still be added to the team.
func (c *ManagerController) ListEmployees(ctx context.Context) ([]dto.User, error) {
	return c.client.ListEmployees(ctx)
}

// ExportPDF returns the team feedback report as raw bytes.
func (c *ManagerController) ExportPDF(ctx context.Context) ([]byte, error) {
	return c.client.ExportPDF(ctx)
}
