package notify

import (
	"context"

	"healthtrack/internal/health"
)

// LogNotifier writes notifications to the log. It is the default when no
// chat back end is configured.
type LogNotifier struct {
	logger health.Logger
}

var _ health.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger health.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, msg health.Notification) error {
	n.logger.Info("notification", "title", msg.Title, "body", msg.Body, "tag", msg.Tag, "reminder", msg.ReminderID)
	return nil
}

// NopNotifier discards notifications.
type NopNotifier struct{}

var _ health.Notifier = NopNotifier{}

func (NopNotifier) Notify(context.Context, health.Notification) error { return nil }
