package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Coordinator normalizes change notifications into reconciliation requests.
//
// Continuous controls (free text entry) get a trailing-edge debounce: each
// new signal restarts the window and only the last one in a quiet stretch
// triggers a pass. Discrete controls reconcile immediately, strictly in
// arrival order. Option toggles bypass the full pass and go straight to the
// option-specific path.
type Coordinator struct {
	step     *domain.Step
	graph    *DependencyGraph
	rec      *Reconciler
	mgr      *OptionManager
	clock    ports.Clock
	debounce time.Duration
	logger   *slog.Logger

	// serialize runs debounce-timer callbacks under the session's event
	// ordering; the immediate paths never go through it.
	serialize func(func())

	// timers holds the active debounce window per trigger question. A new
	// continuous signal supersedes (stops and replaces) the previous timer;
	// that is the only cancellation mechanism.
	timers map[string]ports.Timer
}

// NewCoordinator wires the change-notification surface for one step and
// subscribes it to the step-scoped bus.
func NewCoordinator(step *domain.Step, graph *DependencyGraph, rec *Reconciler, mgr *OptionManager, bus *Bus, clock ports.Clock, debounce time.Duration, logger *slog.Logger, serialize func(func())) *Coordinator {
	if serialize == nil {
		serialize = func(fn func()) { fn() }
	}
	c := &Coordinator{
		step:      step,
		graph:     graph,
		rec:       rec,
		mgr:       mgr,
		clock:     clock,
		debounce:  debounce,
		logger:    logger,
		serialize: serialize,
		timers:    make(map[string]ports.Timer),
	}

	bus.SubscribeChanges(func(ev domain.ResponseChange) {
		c.SignalChange(context.Background(), ev.QuestionID)
	})
	bus.SubscribeToggles(func(ev domain.OptionToggle) {
		c.SignalToggle(context.Background(), ev)
	})

	return c
}

// SignalChange processes a change notification from a question's answer
// control. The question's input kind decides between the debounced and the
// immediate path. An empty question ID is the coarse broadcast form and
// forces a full pass regardless of which question changed.
func (c *Coordinator) SignalChange(ctx context.Context, questionID string) {
	if questionID == "" {
		c.rec.Refresh(ctx)
		return
	}

	q := c.step.QuestionByID(questionID)
	if q == nil {
		// Still a response change somewhere; treat coarsely.
		c.rec.Refresh(ctx)
		return
	}

	// Only trigger questions carry wired listeners; the debounce policy
	// applies to their continuous controls.
	if c.graph.TriggerIDs[questionID] && q.Type.Kind() == domain.KindContinuous {
		c.debounceRefresh(questionID)
		return
	}
	c.rec.Refresh(ctx)
}

// SignalComment processes a change notification from a question's comment
// control. Comments are free text, so the path is always debounced.
func (c *Coordinator) SignalComment(ctx context.Context, questionID string) {
	c.debounceRefresh(questionID)
}

// SignalToggle routes a checkbox option toggle to the option-specific path.
func (c *Coordinator) SignalToggle(ctx context.Context, ev domain.OptionToggle) {
	c.mgr.HandleToggle(ctx, ev)
}

// debounceRefresh restarts the trigger's trailing-edge window.
func (c *Coordinator) debounceRefresh(questionID string) {
	if timer, ok := c.timers[questionID]; ok {
		timer.Stop()
	}
	c.timers[questionID] = c.clock.AfterFunc(c.debounce, func() {
		c.serialize(func() {
			delete(c.timers, questionID)
			c.rec.Refresh(context.Background())
		})
	})
}

// PendingDebounces returns the number of open debounce windows.
func (c *Coordinator) PendingDebounces() int {
	return len(c.timers)
}

// Close stops all open debounce windows.
func (c *Coordinator) Close() {
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}
