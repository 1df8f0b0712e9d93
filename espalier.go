package espalier

import (
	"log/slog"
	"time"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/conditions"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/factory"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Version is the library version, set at build time for release binaries.
var Version = "dev"

// DefaultDebounce is the trailing-edge wait applied to continuous-input
// signals before a reconciliation pass runs.
const DefaultDebounce = 300 * time.Millisecond

// DefaultRemovalDelay is the cosmetic window between an option-specific
// question becoming logically absent and its physical detachment.
const DefaultRemovalDelay = 300 * time.Millisecond

// Engine is the high-level entry point for the Espalier library. It holds the
// injected capabilities shared by all sessions and opens per-step sessions
// that own the actual reconciliation state.
type Engine struct {
	store        ports.ResponseStore
	oracle       ports.ConditionOracle
	factory      ports.QuestionFactory
	clock        ports.Clock
	debounce     time.Duration
	removalDelay time.Duration
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	Name         string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithResponseStore injects the keyed answer store. Defaults to the
// in-memory adapter.
func WithResponseStore(store ports.ResponseStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithConditionOracle sets a custom visibility evaluator. By default the
// engine uses pkg/conditions over the response store.
func WithConditionOracle(oracle ports.ConditionOracle) Option {
	return func(e *Engine) { e.oracle = oracle }
}

// WithQuestionFactory sets a custom question renderer.
func WithQuestionFactory(f ports.QuestionFactory) Option {
	return func(e *Engine) { e.factory = f }
}

// WithClock substitutes the cooperative timer source (used by tests).
func WithClock(clock ports.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithDebounce overrides the continuous-input debounce window.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithRemovalDelay overrides the cosmetic deferred-removal window.
func WithRemovalDelay(d time.Duration) Option {
	return func(e *Engine) { e.removalDelay = d }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithName labels the engine (and its log records) with a form name.
func WithName(name string) Option {
	return func(e *Engine) { e.Name = name }
}

// New initializes a new Espalier Engine. Every capability has a local
// default, so New() with no options yields a fully working in-memory engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		debounce:     DefaultDebounce,
		removalDelay: DefaultRemovalDelay,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.store == nil {
		e.store = memory.NewStore()
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.Name != "" {
		e.logger = e.logger.With("form", e.Name)
	}
	if e.oracle == nil {
		e.oracle = conditions.New(e.store, conditions.WithLogger(e.logger))
	}
	if e.factory == nil {
		e.factory = factory.New()
	}
	if e.clock == nil {
		e.clock = ports.SystemClock()
	}

	return e
}

// Store returns the engine's response store.
func (e *Engine) Store() ports.ResponseStore { return e.store }
