package health

import "healthtrack/internal/model"

// Outbox queues actions for replay against a remote healthtrack server.
type Outbox interface {
	Enqueue(t model.ActionType, payload any) error
}

type nopOutbox struct{}

func (nopOutbox) Enqueue(model.ActionType, any) error { return nil }
