package notify_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/teampulse/internal/api"
	"github.com/dimitrije/teampulse/internal/notify"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/dimitrije/teampulse/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employeeClient(t *testing.T, server *testutil.Server) (*api.Client, *dto.User) {
	t.Helper()
	user := server.CreateEmployee(t, nil)
	token := server.Token(t, user)
	client := api.NewClient(server.URL())
	client.SetTokenSource(func() string { return token })
	return client, user
}

func TestPoller_Refresh_RecomputesUnread(t *testing.T) {
	server := testutil.NewServer(t)
	client, user := employeeClient(t, server)
	server.SeedNotification(t, user, "You have received new feedback.", false)
	server.SeedNotification(t, user, "You have received new feedback.", false)
	server.SeedNotification(t, user, "Welcome to the team.", true)

	poller := notify.NewPoller(client, time.Minute)
	require.NoError(t, poller.Refresh(context.Background()))

	assert.Equal(t, 2, poller.UnreadCount())
	assert.Len(t, poller.Notifications(), 3)

	server.SeedNotification(t, user, "Your manager replied.", false)
	require.NoError(t, poller.Refresh(context.Background()))
	assert.Equal(t, 3, poller.UnreadCount(), "unread is recomputed from the fresh list")
}

func TestPoller_MarkRead_UpdatesExactlyOne(t *testing.T) {
	server := testutil.NewServer(t)
	client, user := employeeClient(t, server)
	first := server.SeedNotification(t, user, "You have received new feedback.", false)
	second := server.SeedNotification(t, user, "Your manager replied.", false)

	poller := notify.NewPoller(client, time.Minute)
	require.NoError(t, poller.Refresh(context.Background()))
	require.Equal(t, 2, poller.UnreadCount())

	require.NoError(t, poller.MarkRead(context.Background(), first.ID))

	assert.Equal(t, 1, poller.UnreadCount())
	for _, n := range poller.Notifications() {
		switch n.ID {
		case first.ID:
			assert.True(t, n.IsRead)
		case second.ID:
			assert.False(t, n.IsRead)
		}
	}

	// Marking the same notification twice must not drive unread below the
	// truth; the entry is already read locally.
	require.NoError(t, poller.MarkRead(context.Background(), first.ID))
	assert.Equal(t, 1, poller.UnreadCount())
}

func TestPoller_MarkRead_ServerRejectionLeavesStateAlone(t *testing.T) {
	server := testutil.NewServer(t)
	client, user := employeeClient(t, server)
	stranger := server.CreateEmployee(t, nil)
	foreign := server.SeedNotification(t, stranger, "Not yours.", false)
	server.SeedNotification(t, user, "You have received new feedback.", false)

	poller := notify.NewPoller(client, time.Minute)
	require.NoError(t, poller.Refresh(context.Background()))

	err := poller.MarkRead(context.Background(), foreign.ID)
	require.Error(t, err)
	assert.Equal(t, 1, poller.UnreadCount())
}

func TestPoller_Run_FetchesImmediatelyThenOnTick(t *testing.T) {
	server := testutil.NewServer(t)
	client, user := employeeClient(t, server)
	server.SeedNotification(t, user, "You have received new feedback.", false)

	poller := notify.NewPoller(client, 20*time.Millisecond)

	var mu sync.Mutex
	updates := 0
	poller.OnUpdate(func(unread int, _ []dto.Notification) {
		mu.Lock()
		updates++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		poller.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return server.RequestCount("GET", "/notifications") >= 3
	}, 2*time.Second, 5*time.Millisecond, "immediate fetch plus ticks")

	cancel()
	<-done

	after := server.RequestCount("GET", "/notifications")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, after, server.RequestCount("GET", "/notifications"),
		"no fetches after cancellation")

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, updates, 3)
	assert.Equal(t, 1, poller.UnreadCount())
}
