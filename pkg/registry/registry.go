// Package registry manages per-type question renderers.
//
// The reconciliation core dispatches every materialization through a single
// injected factory; the registry is how that factory maps the closed set of
// question types to leaf renderers, and how hosts override individual types.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// RenderFunc is a stateless "question → node" leaf renderer for one type.
// templateData is the substitution context for tokens in the question text.
type RenderFunc func(ctx context.Context, q *domain.Question, templateData map[string]any) (ports.NodeRef, error)

// Registry maps question types to renderers.
type Registry struct {
	mu        sync.RWMutex
	renderers map[domain.QuestionType]RenderFunc
}

// New creates a new empty registry.
func New() *Registry {
	return &Registry{renderers: make(map[domain.QuestionType]RenderFunc)}
}

// Register adds a renderer for a question type.
// If a renderer for the type exists, it is overwritten.
func (r *Registry) Register(t domain.QuestionType, fn RenderFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[t] = fn
}

// Render looks up the renderer for the question's type and invokes it.
// Returns an error if no renderer is registered.
func (r *Registry) Render(ctx context.Context, q *domain.Question, templateData map[string]any) (ports.NodeRef, error) {
	r.mu.RLock()
	fn, ok := r.renderers[q.Type]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("no renderer for question type: %s", q.Type)
	}
	return fn(ctx, q, templateData)
}
