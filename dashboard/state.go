package dashboard

import (
	"contactdash/models"
	"sync"
)

// State mirrors the message store on the client side. Every successful fetch
// replaces the list wholesale; a failed fetch keeps the previous list.
type State struct {
	mu       sync.RWMutex
	messages []models.Message
	loading  bool
	err      error
	fetched  bool
}

// Snapshot is a copy of State safe to hand to renderers
type Snapshot struct {
	Messages []models.Message
	Loading  bool
	Err      error
	// Fetched is false until the first fetch succeeds
	Fetched bool
}

func NewState() *State {
	return &State{}
}

// FetchStarted marks a fetch in flight and clears the previous error
func (s *State) FetchStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = true
	s.err = nil
}

// FetchSucceeded replaces the message list
func (s *State) FetchSucceeded(messages []models.Message) {
	list := make([]models.Message, len(messages))
	copy(list, messages)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = list
	s.loading = false
	s.err = nil
	s.fetched = true
}

// FetchFailed records err and leaves the message list untouched
func (s *State) FetchFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false
	s.err = err
}

// ClearError dismisses the current error
func (s *State) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = nil
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.Message, len(s.messages))
	copy(list, s.messages)
	return Snapshot{
		Messages: list,
		Loading:  s.loading,
		Err:      s.err,
		Fetched:  s.fetched,
	}
}

// Messages returns a copy of the current list
func (s *State) Messages() []models.Message {
	return s.Snapshot().Messages
}

// TrashIDs returns the ids of every soft-deleted message in the current list
func (s *State) TrashIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, m := range s.messages {
		if m.IsDeleted {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
