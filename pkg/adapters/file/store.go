// Package file implements the response store on the local filesystem, one
// JSON file per answered question. It suits single-machine hosts that want
// answers to survive a restart without running Redis.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// Store implements ports.ResponseStore in a directory of JSON files.
type Store struct {
	basePath string
	mu       sync.RWMutex
}

// NewStore creates a store rooted at basePath.
// If basePath is empty, it defaults to ".espalier/responses".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".espalier", "responses")
	}
	return &Store{basePath: basePath}
}

// path maps a question ID to its file. IDs that would escape the directory
// are rejected by validate before this is called.
func (s *Store) path(questionID string) string {
	return filepath.Join(s.basePath, questionID+".json")
}

func validate(questionID string) error {
	if questionID == "" {
		return fmt.Errorf("questionID cannot be empty")
	}
	if strings.ContainsAny(questionID, `/\`) || questionID == "." || questionID == ".." {
		return fmt.Errorf("questionID %q is not a valid file name", questionID)
	}
	return nil
}

// Set persists the response as a JSON file, replacing any previous value.
func (s *Store) Set(ctx context.Context, questionID string, resp *domain.Response) error {
	if err := validate(questionID); err != nil {
		return err
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.basePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure response directory: %w", err)
	}
	if err := os.WriteFile(s.path(questionID), data, 0644); err != nil {
		return fmt.Errorf("failed to write response file: %w", err)
	}
	return nil
}

// Get reads the response for a question, or (nil, nil) when unanswered.
func (s *Store) Get(ctx context.Context, questionID string) (*domain.Response, error) {
	if err := validate(questionID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(questionID))
	s.mu.RUnlock()

	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read response file: %w", err)
	}

	var resp domain.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return &resp, nil
}

// Delete removes the response file. Deleting an unanswered question is a no-op.
func (s *Store) Delete(ctx context.Context, questionID string) error {
	if err := validate(questionID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(questionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete response file: %w", err)
	}
	return nil
}

// List returns the IDs of all answered questions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && filepath.Ext(name) == ".json" {
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		}
	}
	return ids, nil
}
