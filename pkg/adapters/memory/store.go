package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Store implements ports.ResponseStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Response
	mu   sync.RWMutex
}

// NewStore creates a new in-memory response store.
func NewStore() *Store {
	return &Store{data: make(map[string]*domain.Response)}
}

// Get retrieves the response for a question, or nil when unanswered.
func (s *Store) Get(ctx context.Context, questionID string) (*domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resp, ok := s.data[questionID]
	if !ok {
		return nil, nil
	}
	// Copy on read so the caller can't mutate store state through the pointer.
	ret := *resp
	return &ret, nil
}

// Set stores the response, replacing any previous value.
func (s *Store) Set(ctx context.Context, questionID string, resp *domain.Response) error {
	copied := *resp

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[questionID] = &copied
	return nil
}

// Delete clears the response for a question.
func (s *Store) Delete(ctx context.Context, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, questionID)
	return nil
}

// List returns the IDs of all answered questions, sorted for determinism.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
