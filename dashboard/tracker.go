package dashboard

import (
	"contactdash/models"
	"sync"
)

// DeleteAllKey is the tracker key used while the trash is being emptied
const DeleteAllKey = "deleteAll"

// Tracker remembers which action is in flight for each message so the UI can
// disable that row and show a spinner. At most one action is recorded per key.
type Tracker struct {
	mu      sync.RWMutex
	pending map[string]models.Action
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]models.Action)}
}

// Set records action as in flight for key, replacing any previous one
func (t *Tracker) Set(key string, action models.Action) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pending[key] = action
}

// Clear forgets key
func (t *Tracker) Clear(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.pending, key)
}

// Get returns the action in flight for key
func (t *Tracker) Get(key string) (models.Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.pending[key]
	return a, ok
}

// Snapshot copies the in-flight map
func (t *Tracker) Snapshot() map[string]models.Action {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]models.Action, len(t.pending))
	for k, v := range t.pending {
		out[k] = v
	}
	return out
}

// Len returns the number of keys in flight
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.pending)
}
