package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/lib/sl"
)

const defaultViewBuffer = 1024

// ViewTracker records page views on a background worker so public reads never
// wait on (or fail because of) analytics writes.
type ViewTracker struct {
	invitations domain.InvitationRepository
	analytics   domain.AnalyticsRepository
	logger      *slog.Logger
	timeout     time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan domain.PageView
	wg     sync.WaitGroup
	start  sync.Once
}

// NewViewTracker returns a tracker with a queue of buffer pending views.
// Call Start before use and Close on shutdown to drain the queue.
func NewViewTracker(invitations domain.InvitationRepository, analytics domain.AnalyticsRepository, logger *slog.Logger, buffer int, timeout time.Duration) *ViewTracker {
	if buffer <= 0 {
		buffer = defaultViewBuffer
	}
	if timeout <= 0 {
		timeout = defaultServiceTimeout
	}
	return &ViewTracker{
		invitations: invitations,
		analytics:   analytics,
		logger:      logger.With(sl.Module("view_tracker")),
		timeout:     timeout,
		queue:       make(chan domain.PageView, buffer),
	}
}

// Start launches the worker goroutine. Calling it more than once has no effect.
func (t *ViewTracker) Start() {
	t.start.Do(func() {
		t.wg.Add(1)
		go t.run()
	})
}

// Track enqueues a view. It never blocks: when the queue is full or the tracker
// is closed the view is dropped.
func (t *ViewTracker) Track(view domain.PageView) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- view:
	default:
		t.logger.Warn("view queue full, dropping view", "invitation_id", view.InvitationID)
	}
}

// Close stops accepting views and waits until queued ones are recorded.
func (t *ViewTracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	t.Start()
	t.wg.Wait()
}

func (t *ViewTracker) run() {
	defer t.wg.Done()
	for view := range t.queue {
		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		t.record(ctx, view)
		cancel()
	}
}

func (t *ViewTracker) record(ctx context.Context, view domain.PageView) {
	if t.analytics == nil {
		if err := t.invitations.IncrementViewCount(ctx, view.InvitationID, false); err != nil {
			t.logger.WarnContext(ctx, "failed to increment view count", "invitation_id", view.InvitationID, sl.Err(err))
		}
		return
	}
	if _, err := t.analytics.CountView(ctx, view.InvitationID, view.VisitorHash); err != nil {
		t.logger.WarnContext(ctx, "failed to count view", "invitation_id", view.InvitationID, sl.Err(err))
		return
	}
	ev := &domain.AnalyticsEvent{
		InvitationID: view.InvitationID,
		EventType:    domain.EventView,
		VisitorHash:  view.VisitorHash,
		CreatedAt:    view.ViewedAt,
	}
	if err := t.analytics.Record(ctx, ev); err != nil {
		t.logger.WarnContext(ctx, "failed to record view event", "invitation_id", view.InvitationID, sl.Err(err))
	}
}
