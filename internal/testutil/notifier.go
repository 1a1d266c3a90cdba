package testutil

import (
	"context"
	"sync"

	"healthtrack/internal/health"
)

// RecordingNotifier keeps every notification it is asked to send. When Err
// is set, Notify fails with it and records nothing.
type RecordingNotifier struct {
	mu   sync.Mutex
	Sent []health.Notification
	Err  error
}

var _ health.Notifier = (*RecordingNotifier)(nil)

func (n *RecordingNotifier) Notify(_ context.Context, msg health.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Sent = append(n.Sent, msg)
	return nil
}

// Notifications returns a copy of what has been sent so far.
func (n *RecordingNotifier) Notifications() []health.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]health.Notification(nil), n.Sent...)
}
