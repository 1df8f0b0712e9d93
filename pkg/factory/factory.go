// Package factory provides the default QuestionFactory.
//
// It renders questions into memory-tree nodes with interpolated titles, and
// dispatches through a registry so hosts can replace the renderer for any
// individual question type without touching the rest.
package factory

import (
	"context"

	"github.com/espalier-dev/espalier/internal/interpolate"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/registry"
)

// Factory implements ports.QuestionFactory over a renderer registry.
type Factory struct {
	reg *registry.Registry
}

// Option configures the Factory.
type Option func(*Factory)

// WithRenderer overrides the renderer for a single question type.
func WithRenderer(t domain.QuestionType, fn registry.RenderFunc) Option {
	return func(f *Factory) { f.reg.Register(t, fn) }
}

// New creates a factory with the default renderer registered for every type
// in the closed set.
func New(opts ...Option) *Factory {
	f := &Factory{reg: registry.New()}
	for _, t := range []domain.QuestionType{
		domain.TypeShortText, domain.TypeLongText, domain.TypeRadio,
		domain.TypeCheckbox, domain.TypeLikert, domain.TypeRangeSlider,
		domain.TypeMatrix2D, domain.TypeRankOptions, domain.TypeTags,
		domain.TypeMultiValueSlider,
	} {
		f.reg.Register(t, renderDefault)
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Render materializes a question into a view node. The node's view identity
// is the plain question ID, or the composite option identity for
// option-specific variants. An unregistered type is a render error; the
// engine treats it as "question stays absent".
func (f *Factory) Render(ctx context.Context, q *domain.Question, templateData map[string]any) (ports.NodeRef, error) {
	return f.reg.Render(ctx, q, templateData)
}

// renderDefault builds the standard leaf node shared by all built-in types.
func renderDefault(ctx context.Context, q *domain.Question, templateData map[string]any) (ports.NodeRef, error) {
	id := q.ID
	if q.OptionSpecific() {
		id = domain.OptionNodeID(q.ID, q.ForOptionID)
	}
	return &memory.Node{
		ID:               id,
		QuestionID:       q.ID,
		ForOptionID:      q.ForOptionID,
		LinkedQuestionID: q.LinkedQuestionID,
		Title:            interpolate.Expand(q.Title, templateData),
	}, nil
}
