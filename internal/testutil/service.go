package testutil

import (
	"sync"
	"testing"

	"healthtrack/internal/database"
	"healthtrack/internal/health"
	"healthtrack/internal/insights"
	"healthtrack/internal/interactions"
	"healthtrack/internal/model"
)

// Env is a service over an in-memory store with stubbed time and ids.
type Env struct {
	Store   *database.SQLiteStore
	Service *health.Service
	Clock   *StubClock
	IDs     *StubIDGenerator
	Outbox  *RecordingOutbox
}

// NewTestEnv builds an Env at FixedClock with an empty store.
func NewTestEnv(t *testing.T) *Env {
	t.Helper()

	clock := FixedClock()
	ids := NewStubIDGenerator()
	store := NewTestStore(t, clock)

	catalog, err := interactions.Default()
	if err != nil {
		t.Fatalf("loading interaction catalog: %v", err)
	}
	checker, err := interactions.NewChecker(catalog, 0)
	if err != nil {
		t.Fatalf("creating checker: %v", err)
	}
	engine := insights.NewEngine(insights.DefaultPenalties())
	outbox := &RecordingOutbox{}

	svc := health.NewService(store, checker, engine, outbox, health.NewNopLogger(), clock, ids)
	return &Env{Store: store, Service: svc, Clock: clock, IDs: ids, Outbox: outbox}
}

// RecordedAction is one call to RecordingOutbox.Enqueue.
type RecordedAction struct {
	Type    model.ActionType
	Payload any
}

// RecordingOutbox keeps every enqueued action in memory.
type RecordingOutbox struct {
	mu      sync.Mutex
	Actions []RecordedAction
}

var _ health.Outbox = (*RecordingOutbox)(nil)

func (o *RecordingOutbox) Enqueue(t model.ActionType, payload any) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Actions = append(o.Actions, RecordedAction{Type: t, Payload: payload})
	return nil
}
