// Package redis implements the response store and the distributed locker on
// Redis, for hosts that share one respondent's answers across processes.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

const defaultPrefix = "espalier:responses:"

// Store implements ports.ResponseStore on a Redis client. Each response is a
// JSON value under prefix+questionID; a set under prefix+"index" tracks the
// answered question IDs so List avoids SCAN.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithPrefix overrides the key prefix, for multiple forms sharing one Redis.
func WithPrefix(prefix string) StoreOption {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL expires responses after the given duration. Zero (the default)
// keeps them until deleted.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) { s.ttl = ttl }
}

// NewFromClient creates a store over an existing Redis client.
func NewFromClient(client *backend.Client, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(questionID string) string { return s.prefix + questionID }
func (s *Store) indexKey() string             { return s.prefix + "index" }

// Get retrieves the response for a question, or nil when unanswered.
func (s *Store) Get(ctx context.Context, questionID string) (*domain.Response, error) {
	data, err := s.client.Get(ctx, s.key(questionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var resp domain.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decoding response %q: %w", questionID, err)
	}
	return &resp, nil
}

// Set stores the response, replacing any previous value.
func (s *Store) Set(ctx context.Context, questionID string, resp *domain.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response %q: %w", questionID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(questionID), data, s.ttl)
	pipe.SAdd(ctx, s.indexKey(), questionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete clears the response for a question.
func (s *Store) Delete(ctx context.Context, questionID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(questionID))
	pipe.SRem(ctx, s.indexKey(), questionID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	return nil
}

// List returns the IDs of all answered questions, sorted for determinism.
// Entries whose value has expired under a TTL are pruned from the index
// lazily here.
func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		exists, err := s.client.Exists(ctx, s.key(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("redis list: %w", err)
		}
		if exists == 0 {
			s.client.SRem(ctx, s.indexKey(), id)
			continue
		}
		live = append(live, id)
	}

	sort.Strings(live)
	return live, nil
}
