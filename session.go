package espalier

import (
	"context"
	"fmt"
	"sync"

	"github.com/espalier-dev/espalier/internal/reconcile"
	"github.com/espalier-dev/espalier/pkg/adapters/memory"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Session owns the reconciliation state of one rendered step: its view tree,
// dependency graph, and the timers for debounced and deferred work.
//
// All mutating methods serialize on an internal mutex, so callers and expiring
// timers observe a single logical event order.
type Session struct {
	engine *Engine
	step   *domain.Step

	mu     sync.Mutex
	closed bool

	tree  ports.ViewTree
	graph *reconcile.DependencyGraph
	bus   *reconcile.Bus
	rec   *reconcile.Reconciler
	mgr   *reconcile.OptionManager
	coord *reconcile.Coordinator
}

// SessionOption configures a session at open time.
type SessionOption func(*Session)

// WithViewTree substitutes the session's view tree. Defaults to the
// in-memory tree.
func WithViewTree(tree ports.ViewTree) SessionOption {
	return func(s *Session) { s.tree = tree }
}

// OpenSession builds the reconciliation context for one step: the dependency
// graph is derived from the step's current definition, and the coordinator is
// subscribed to the session's bus. Call Begin to render the baseline.
func (e *Engine) OpenSession(step *domain.Step, opts ...SessionOption) (*Session, error) {
	if step == nil {
		return nil, domain.ErrStepNotFound
	}

	s := &Session{engine: e, step: step}
	for _, opt := range opts {
		opt(s)
	}
	if s.tree == nil {
		s.tree = memory.NewTree()
	}

	logger := e.logger.With("step", step.ID)

	s.graph = reconcile.BuildDependencyGraph(step)
	s.bus = reconcile.NewBus()
	s.rec = reconcile.NewReconciler(step, s.tree, e.oracle, e.factory, logger, e.hooks)
	s.mgr = reconcile.NewOptionManager(step, s.graph, s.tree, e.factory, e.clock, e.removalDelay, logger, e.hooks, s.serialize)
	s.coord = reconcile.NewCoordinator(step, s.graph, s.rec, s.mgr, s.bus, e.clock, e.debounce, logger, s.serialize)

	logger.Debug("session opened",
		"questions", len(step.Questions),
		"triggers", len(s.graph.TriggerIDs))

	return s, nil
}

// serialize is handed to the reconcile core for its timer callbacks. Timers
// fire on their own goroutines; taking the session lock here folds them back
// into the same event order as the inline paths. A closed session drops the
// work.
func (s *Session) serialize(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	fn()
}

// Begin renders the step baseline: every standard, unconditional question in
// declaration order, followed by a reconciliation pass for the conditional
// ones and a replay of already-checked options for the option-specific ones.
// Re-entering a step with stored answers restores the full view.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	for i := range s.step.Questions {
		q := &s.step.Questions[i]
		if q.OptionSpecific() || q.Conditional() {
			continue
		}
		node, err := s.engine.factory.Render(ctx, q, nil)
		if err != nil {
			return fmt.Errorf("rendering question %q: %w", q.ID, err)
		}
		if err := s.tree.Append(node); err != nil {
			return fmt.Errorf("appending question %q: %w", q.ID, err)
		}
	}

	s.rec.Refresh(ctx)
	s.mgr.Sync(ctx, s.engine.store)
	return nil
}

// Answer stores a response value and signals the change. The coordinator
// decides between the debounced and the immediate reconciliation path based
// on the question's input kind.
func (s *Session) Answer(ctx context.Context, questionID string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	resp, err := s.engine.store.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if resp == nil {
		resp = &domain.Response{}
	}
	resp.Value = value
	if err := s.engine.store.Set(ctx, questionID, resp); err != nil {
		return err
	}

	s.bus.PublishChange(domain.ResponseChange{QuestionID: questionID})
	return nil
}

// Comment stores a comment alongside a response. Comments are free text, so
// the signal always takes the debounced path.
func (s *Session) Comment(ctx context.Context, questionID, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	resp, err := s.engine.store.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if resp == nil {
		resp = &domain.Response{}
	}
	resp.Comment = comment
	if err := s.engine.store.Set(ctx, questionID, resp); err != nil {
		return err
	}

	s.coord.SignalComment(ctx, questionID)
	return nil
}

// ToggleOption flips one checkbox option of a question, updating the stored
// selection and signaling both the option-specific path and a coarse response
// change, in that order.
func (s *Session) ToggleOption(ctx context.Context, questionID, optionID string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrSessionClosed
	}

	q := s.step.QuestionByID(questionID)
	if q == nil {
		return fmt.Errorf("%w: %s", domain.ErrQuestionNotFound, questionID)
	}

	resp, err := s.engine.store.Get(ctx, questionID)
	if err != nil {
		return err
	}
	if resp == nil {
		resp = &domain.Response{}
	}
	resp.Value = toggleSelection(resp.Value, optionID, checked)
	if err := s.engine.store.Set(ctx, questionID, resp); err != nil {
		return err
	}

	label := optionID
	for _, opt := range q.Options {
		if opt.ID == optionID {
			label = opt.Label
		}
	}

	s.bus.PublishToggle(domain.OptionToggle{
		QuestionID:  questionID,
		OptionID:    optionID,
		OptionLabel: label,
		Checked:     checked,
	})
	s.bus.PublishChange(domain.ResponseChange{QuestionID: questionID})
	return nil
}

// Refresh forces a full reconciliation pass outside any signal.
func (s *Session) Refresh(ctx context.Context) (reconcile.Mutations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return reconcile.Mutations{}, domain.ErrSessionClosed
	}
	return s.rec.Refresh(ctx), nil
}

// VisibleNodeIDs returns the view order of the session's tree, for trees that
// expose it (the in-memory adapter does).
func (s *Session) VisibleNodeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	type ordered interface{ Order() []string }
	if t, ok := s.tree.(ordered); ok {
		return t.Order()
	}
	return nil
}

// Tree returns the session's view tree.
func (s *Session) Tree() ports.ViewTree { return s.tree }

// Bus returns the session's signal bus, for hosts that publish change
// notifications directly from their own controls.
func (s *Session) Bus() *reconcile.Bus { return s.bus }

// Step returns the step this session renders.
func (s *Session) Step() *domain.Step { return s.step }

// Close stops all pending timers. Further calls on the session return
// ErrSessionClosed; a timer that already fired but has not yet serialized is
// dropped.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.coord.Close()
	s.mgr.Close()
	return nil
}

// toggleSelection adds or removes an option ID in a stored checkbox value,
// normalizing whatever shape the store returned to []string.
func toggleSelection(value any, optionID string, checked bool) []string {
	var selected []string
	switch v := value.(type) {
	case []string:
		selected = v
	case []any:
		for _, item := range v {
			if str, ok := item.(string); ok {
				selected = append(selected, str)
			}
		}
	case string:
		if v != "" {
			selected = []string{v}
		}
	}

	out := make([]string, 0, len(selected)+1)
	for _, id := range selected {
		if id != optionID {
			out = append(out, id)
		}
	}
	if checked {
		out = append(out, optionID)
	}
	return out
}
