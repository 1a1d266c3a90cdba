// Package outbox queues actions taken while offline and replays them, in
// order, against a remote healthtrack server.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"healthtrack/internal/health"
	"healthtrack/internal/model"
)

// Transport delivers one action to the remote.
type Transport interface {
	Send(ctx context.Context, a model.PendingAction) error
}

// Queue stores pending actions in the pending_actions collection.
type Queue struct {
	store  health.Store
	clock  health.Clock
	idgen  health.IDGenerator
	logger health.Logger
}

var _ health.Outbox = (*Queue)(nil)

func NewQueue(store health.Store, clock health.Clock, idgen health.IDGenerator, logger health.Logger) *Queue {
	return &Queue{store: store, clock: clock, idgen: idgen, logger: logger}
}

// Enqueue appends an action carrying payload to the end of the queue.
func (q *Queue) Enqueue(t model.ActionType, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s payload: %w", t, err)
	}
	a := model.PendingAction{
		ID:        q.idgen.New(),
		Type:      t,
		Timestamp: q.clock.Now(),
		Payload:   body,
	}
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding action: %w", err)
	}
	if err := q.store.Insert(model.PendingActions, a.ID, raw); err != nil {
		return fmt.Errorf("queueing action: %w", err)
	}
	q.logger.Debug("action queued", "id", a.ID, "type", t)
	return nil
}

// Pending returns the queued actions in enqueue order.
func (q *Queue) Pending() ([]model.PendingAction, error) {
	raws, err := q.store.List(model.PendingActions)
	if err != nil {
		return nil, fmt.Errorf("listing pending actions: %w", err)
	}
	out := make([]model.PendingAction, 0, len(raws))
	for _, raw := range raws {
		var a model.PendingAction
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, fmt.Errorf("decoding pending action: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// Result summarizes one sync pass. Err collects the individual delivery
// failures; the failed actions remain queued.
type Result struct {
	Sent   int
	Failed int
	Err    error
}

// Sync sends every queued action in enqueue order. Delivered actions are
// removed. A failed action stays queued and the pass moves on to the next
// one. The returned error is only set when the queue itself could not be
// read or updated, or ctx was cancelled.
func (q *Queue) Sync(ctx context.Context, t Transport) (Result, error) {
	var res Result
	actions, err := q.Pending()
	if err != nil {
		return res, err
	}

	var failures *multierror.Error
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			res.Err = failures.ErrorOrNil()
			return res, err
		}
		if err := t.Send(ctx, a); err != nil {
			res.Failed++
			failures = multierror.Append(failures, fmt.Errorf("action %s: %w", a.ID, err))
			q.logger.Warn("sync failed, action kept", "id", a.ID, "type", a.Type, "error", err)
			continue
		}
		if _, err := q.store.Delete(model.PendingActions, a.ID); err != nil {
			res.Err = failures.ErrorOrNil()
			return res, fmt.Errorf("removing synced action %s: %w", a.ID, err)
		}
		res.Sent++
		q.logger.Info("action synced", "id", a.ID, "type", a.Type)
	}
	res.Err = failures.ErrorOrNil()
	return res, nil
}
