package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dimitrije/teampulse/internal/api"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

// Poller keeps the notification list fresh: one immediate fetch, then a
// fixed-interval loop until the context is cancelled. Background fetch
// failures are logged, never surfaced to the user.
type Poller struct {
	client   *api.Client
	interval time.Duration

	mu            sync.Mutex
	notifications []dto.Notification
	unread        int
	onUpdate      func(unread int, notifications []dto.Notification)
}

func NewPoller(client *api.Client, interval time.Duration) *Poller {
	return &Poller{client: client, interval: interval}
}

// OnUpdate registers a callback invoked after every refresh or mark-read.
func (p *Poller) OnUpdate(fn func(unread int, notifications []dto.Notification)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Run blocks until ctx is cancelled. The ticker is always stopped on the way
// out, so an unmounted poller leaks no timers.
func (p *Poller) Run(ctx context.Context) {
	if err := p.Refresh(ctx); err != nil {
		slog.Debug("notification fetch failed", "error", err)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Refresh(ctx); err != nil {
				slog.Debug("notification fetch failed", "error", err)
			}
		}
	}
}

// Refresh fetches the list once, on demand or from the poll loop. The unread
// count is always recomputed from the fresh list.
func (p *Poller) Refresh(ctx context.Context) error {
	notifications, err := p.client.ListNotifications(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.notifications = notifications
	p.unread = countUnread(notifications)
	fn := p.onUpdate
	unread := p.unread
	items := append([]dto.Notification(nil), notifications...)
	p.mu.Unlock()

	if fn != nil {
		fn(unread, items)
	}
	return nil
}

// MarkRead marks one notification read on the server, then updates exactly
// that entry locally; the next scheduled poll reconfirms it.
func (p *Poller) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := p.client.MarkNotificationRead(ctx, id); err != nil {
		return err
	}

	p.mu.Lock()
	for i := range p.notifications {
		if p.notifications[i].ID == id && !p.notifications[i].IsRead {
			p.notifications[i].IsRead = true
			p.unread--
			break
		}
	}
	fn := p.onUpdate
	unread := p.unread
	items := append([]dto.Notification(nil), p.notifications...)
	p.mu.Unlock()

	if fn != nil {
		fn(unread, items)
	}
	return nil
}

func (p *Poller) UnreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unread
}

// Notifications returns a copy of the latest fetched list.
func (p *Poller) Notifications() []dto.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]dto.Notification(nil), p.notifications...)
}

func countUnread(notifications []dto.Notification) int {
	count := 0
	for _, n := range notifications {
		if !n.IsRead {
			count++
		}
	}
	return count
}
