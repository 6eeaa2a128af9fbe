package dashboard_test

import (
	"context"
	"testing"

	"github.com/dimitrije/teampulse/internal/dashboard"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/dimitrije/teampulse/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeeController_Load(t *testing.T) {
	server := testutil.NewServer(t)
	manager, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)
	bob := server.CreateEmployee(t, team)
	server.SeedFeedback(t, manager, alice, dto.SentimentPositive)
	server.SeedFeedback(t, manager, bob, dto.SentimentNegative)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	assert.False(t, ctrl.Loaded())
	require.NoError(t, ctrl.Load(context.Background()))
	assert.True(t, ctrl.Loaded())

	feedback := ctrl.Feedback()
	require.Len(t, feedback, 1, "an employee only sees their own feedback")
	assert.Equal(t, alice.ID, feedback[0].Employee.ID)
}

func TestEmployeeController_Acknowledge_FlipsExactlyOne(t *testing.T) {
	server := testutil.NewServer(t)
	manager, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)
	first := server.SeedFeedback(t, manager, alice, dto.SentimentPositive)
	second := server.SeedFeedback(t, manager, alice, dto.SentimentNeutral)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	require.NoError(t, ctrl.Load(context.Background()))

	require.NoError(t, ctrl.Acknowledge(context.Background(), first.ID))

	for _, fb := range ctrl.Feedback() {
		switch fb.ID {
		case first.ID:
			assert.True(t, fb.Acknowledged)
		case second.ID:
			assert.False(t, fb.Acknowledged, "other entries stay untouched")
		}
	}

	// Acknowledging again confirms the same state rather than toggling.
	require.NoError(t, ctrl.Acknowledge(context.Background(), first.ID))
	for _, fb := range ctrl.Feedback() {
		if fb.ID == first.ID {
			assert.True(t, fb.Acknowledged)
		}
	}
}

func TestEmployeeController_Acknowledge_ServerRejectionLeavesStateAlone(t *testing.T) {
	server := testutil.NewServer(t)
	manager, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)
	bob := server.CreateEmployee(t, team)
	foreign := server.SeedFeedback(t, manager, bob, dto.SentimentPositive)
	server.SeedFeedback(t, manager, alice, dto.SentimentPositive)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	require.NoError(t, ctrl.Load(context.Background()))

	err := ctrl.Acknowledge(context.Background(), foreign.ID)
	require.Error(t, err)

	for _, fb := range ctrl.Feedback() {
		assert.False(t, fb.Acknowledged, "no local flip without server confirmation")
	}
}

func TestEmployeeController_AddComment_AppendsInOrder(t *testing.T) {
	server := testutil.NewServer(t)
	manager, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)
	target := server.SeedFeedback(t, manager, alice, dto.SentimentPositive)
	other := server.SeedFeedback(t, manager, alice, dto.SentimentNeutral)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	require.NoError(t, ctrl.Load(context.Background()))

	first, err := ctrl.AddComment(context.Background(), target.ID, "Thanks, this is helpful")
	require.NoError(t, err)
	second, err := ctrl.AddComment(context.Background(), target.ID, "I will focus on the review load")
	require.NoError(t, err)

	for _, fb := range ctrl.Feedback() {
		switch fb.ID {
		case target.ID:
			require.Len(t, fb.Comments, 2)
			assert.Equal(t, first.ID, fb.Comments[0].ID)
			assert.Equal(t, second.ID, fb.Comments[1].ID, "arrival order, newest last")
		case other.ID:
			assert.Empty(t, fb.Comments)
		}
	}
}

func TestEmployeeController_RequestFeedback_NotifiesManager(t *testing.T) {
	server := testutil.NewServer(t)
	manager, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	require.NoError(t, ctrl.RequestFeedback(context.Background()))

	notifications := server.NotificationsFor(t, manager)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, alice.FullName)
}

func TestEmployeeController_ExportPDF(t *testing.T) {
	server := testutil.NewServer(t)
	_, team := server.CreateManager(t, "Platform")
	alice := server.CreateEmployee(t, team)

	ctrl := dashboard.NewEmployeeController(clientFor(t, server, alice))
	data, err := ctrl.ExportPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte(testutil.PDFStub), data)
}
