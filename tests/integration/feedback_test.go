package integration

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/teampulse/internal/dashboard"
	"github.com/dimitrije/teampulse/internal/notify"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/dimitrije/teampulse/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFeedback_Integration_FullCycle walks the whole exchange: the manager
// writes feedback, the employee is notified, acknowledges, replies, and the
// manager sees the reply after a reload.
func TestFeedback_Integration_FullCycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTest(t)
	managerUser, team := env.Server.CreateManager(t, "Platform")
	employeeUser := env.Server.CreateEmployee(t, team)
	ctx := context.Background()

	managerSess := env.newSession()
	require.NoError(t, managerSess.Login(ctx, managerUser.Email, testutil.DefaultPassword))

	employeeSess := env.newSession()
	require.NoError(t, employeeSess.Login(ctx, employeeUser.Email, testutil.DefaultPassword))

	// Manager writes feedback.
	managerCtrl := dashboard.NewManagerController(managerSess.Client())
	require.NoError(t, managerCtrl.Load(ctx))
	require.NoError(t, managerCtrl.BeginFeedback(*employeeUser))
	created, err := managerCtrl.SubmitFeedback(ctx, dashboard.FeedbackDraft{
		Strengths:           "Drives incidents to resolution calmly",
		AreasForImprovement: "Could document runbooks as they evolve",
		Sentiment:           dto.SentimentPositive,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, managerCtrl.Snapshot().TotalFeedback())

	// Employee is notified and reads the feedback.
	poller := notify.NewPoller(employeeSess.Client(), time.Minute)
	require.NoError(t, poller.Refresh(ctx))
	require.Equal(t, 1, poller.UnreadCount())
	notifications := poller.Notifications()
	require.Len(t, notifications, 1)
	require.NoError(t, poller.MarkRead(ctx, notifications[0].ID))
	assert.Equal(t, 0, poller.UnreadCount())

	employeeCtrl := dashboard.NewEmployeeController(employeeSess.Client())
	require.NoError(t, employeeCtrl.Load(ctx))
	received := employeeCtrl.Feedback()
	require.Len(t, received, 1)
	assert.Equal(t, created.ID, received[0].ID)
	assert.False(t, received[0].Acknowledged)

	// Employee acknowledges and replies.
	require.NoError(t, employeeCtrl.Acknowledge(ctx, created.ID))
	_, err = employeeCtrl.AddComment(ctx, created.ID, "Fair point on the runbooks, on it")
	require.NoError(t, err)

	// Manager reloads and sees both.
	require.NoError(t, managerCtrl.Load(ctx))
	given := managerCtrl.Snapshot().Feedback
	require.Len(t, given, 1)
	assert.True(t, given[0].Acknowledged)
	require.Len(t, given[0].Comments, 1)
	assert.Equal(t, "Fair point on the runbooks, on it", given[0].Comments[0].Content)
}

func TestFeedback_Integration_RequestReachesManager(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	env := setupTest(t)
	managerUser, team := env.Server.CreateManager(t, "Platform")
	employeeUser := env.Server.CreateEmployee(t, team)
	ctx := context.Background()

	employeeSess := env.newSession()
	require.NoError(t, employeeSess.Login(ctx, employeeUser.Email, testutil.DefaultPassword))

	employeeCtrl := dashboard.NewEmployeeController(employeeSess.Client())
	require.NoError(t, employeeCtrl.RequestFeedback(ctx))

	managerSess := env.newSession()
	require.NoError(t, managerSess.Login(ctx, managerUser.Email, testutil.DefaultPassword))

	poller := notify.NewPoller(managerSess.Client(), time.Minute)
	require.NoError(t, poller.Refresh(ctx))
	require.Equal(t, 1, poller.UnreadCount())
	assert.Contains(t, poller.Notifications()[0].Message, employeeUser.FullName)
}
