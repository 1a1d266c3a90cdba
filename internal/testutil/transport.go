package testutil

import (
	"context"
	"fmt"
	"sync"

	"healthtrack/internal/model"
)

// FakeTransport records the actions it delivers. Actions whose id is in
// Fail are rejected.
type FakeTransport struct {
	mu   sync.Mutex
	Sent []model.PendingAction
	Fail map[string]bool
}

func (f *FakeTransport) Send(_ context.Context, a model.PendingAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Fail[a.ID] {
		return fmt.Errorf("remote rejected %s", a.ID)
	}
	f.Sent = append(f.Sent, a)
	return nil
}

// SentIDs returns the ids of delivered actions in delivery order.
func (f *FakeTransport) SentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.Sent))
	for i, a := range f.Sent {
		ids[i] = a.ID
	}
	return ids
}
