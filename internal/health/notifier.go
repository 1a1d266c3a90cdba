package health

import "context"

// NotificationAction is a button offered with a notification.
type NotificationAction struct {
	ID    string
	Title string
}

// The two actions every medication reminder carries.
var (
	ActionTake   = NotificationAction{ID: "take", Title: "Mark as Taken"}
	ActionSnooze = NotificationAction{ID: "snooze", Title: "Snooze 15min"}
)

// Notification is one reminder delivered to the user.
type Notification struct {
	Title string
	Body  string
	Tag   string

	// ReminderID identifies the reminder the actions apply to.
	ReminderID string
	Actions    []NotificationAction
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// ActionHandler is called when the user presses a notification button.
type ActionHandler func(ctx context.Context, actionID, reminderID string) error

// ActionListener is implemented by notifiers whose messages have buttons
// the user can press (Telegram, Discord). Listen blocks until ctx is done.
type ActionListener interface {
	Listen(ctx context.Context, handle ActionHandler) error
}
