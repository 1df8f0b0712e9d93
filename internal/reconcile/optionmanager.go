package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// leavingFlag is set on a node while its deferred removal is pending, so the
// view can play an exit transition before the node is physically detached.
const leavingFlag = "leaving"

// OptionManager is the specialized reconciliation path for questions that
// exist only while a particular checkbox option is checked.
//
// Ordering diverges from the Reconciler on purpose: siblings for a trigger
// are appended to the group in the chronological order they were shown, not
// in declaration order.
type OptionManager struct {
	step    *domain.Step
	graph   *DependencyGraph
	tree    ports.ViewTree
	factory ports.QuestionFactory
	clock   ports.Clock
	delay   time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	// serialize runs deferred timer callbacks under the session's event
	// ordering. Inline handling never goes through it.
	serialize func(func())

	// removed marks node IDs as logically absent while their physical
	// detachment is still pending. Existence checks must consult it so rapid
	// re-toggling cannot produce duplicate inserts.
	removed map[string]bool

	// pending holds the deferred-removal timer per node ID. On re-check the
	// timer is cancelled and the still-attached node is reused.
	pending map[string]ports.Timer
}

// NewOptionManager creates the option-specific reconciliation path for a step.
func NewOptionManager(step *domain.Step, graph *DependencyGraph, tree ports.ViewTree, factory ports.QuestionFactory, clock ports.Clock, delay time.Duration, logger *slog.Logger, hooks domain.LifecycleHooks, serialize func(func())) *OptionManager {
	if serialize == nil {
		serialize = func(fn func()) { fn() }
	}
	return &OptionManager{
		step:      step,
		graph:     graph,
		tree:      tree,
		factory:   factory,
		clock:     clock,
		delay:     delay,
		logger:    logger,
		hooks:     hooks,
		serialize: serialize,
		removed:   make(map[string]bool),
		pending:   make(map[string]ports.Timer),
	}
}

// HandleToggle reconciles the option-specific questions bound to one checkbox
// option. Checking shows them (append-to-group order); unchecking marks them
// logically absent immediately and schedules physical detachment after the
// cosmetic delay. No fault escapes.
func (m *OptionManager) HandleToggle(ctx context.Context, ev domain.OptionToggle) {
	deps := m.graph.OptionSpecificByTrigger[ev.QuestionID]
	if len(deps) == 0 {
		m.logger.Debug("option toggle with no dependents", "question", ev.QuestionID, "option", ev.OptionID)
		return
	}
	if m.step.QuestionByID(ev.QuestionID) == nil {
		// Dangling linkage: silently skip.
		m.logger.Debug("option toggle for unknown trigger", "question", ev.QuestionID)
		return
	}

	for _, q := range deps {
		if q.ForOptionID != ev.OptionID {
			continue
		}
		if ev.Checked {
			m.show(ctx, q, ev)
		} else {
			m.scheduleHide(ctx, q, ev)
		}
	}
}

// Sync replays the currently-checked options of every linked trigger from the
// response store. The session calls it once after the baseline render, so a
// re-entered step shows the sub-questions of answers given earlier.
func (m *OptionManager) Sync(ctx context.Context, store ports.ResponseStore) {
	for triggerID, deps := range m.graph.OptionSpecificByTrigger {
		trigger := m.step.QuestionByID(triggerID)
		if trigger == nil {
			continue
		}
		resp, err := store.Get(ctx, triggerID)
		if err != nil || resp == nil {
			continue
		}
		for _, q := range deps {
			if !resp.Checked(q.ForOptionID) {
				continue
			}
			m.show(ctx, q, domain.OptionToggle{
				QuestionID:  triggerID,
				OptionID:    q.ForOptionID,
				OptionLabel: optionLabel(trigger, q.ForOptionID),
				Checked:     true,
			})
		}
	}
}

// alive reports whether a node both exists in the tree and has not been
// marked logically absent.
func (m *OptionManager) alive(nodeID string) bool {
	return !m.removed[nodeID] && m.tree.QueryByID(nodeID) != nil
}

func (m *OptionManager) show(ctx context.Context, q *domain.Question, ev domain.OptionToggle) {
	nodeID := domain.OptionNodeID(q.ID, ev.OptionID)

	// Cancel-and-reuse: a pending removal means the node is still attached.
	if timer, ok := m.pending[nodeID]; ok {
		timer.Stop()
		delete(m.pending, nodeID)
		delete(m.removed, nodeID)
		if node := m.tree.QueryByID(nodeID); node != nil {
			m.tree.SetVisualFlag(node, leavingFlag, false)
			// The hide already announced a deferred departure; re-announce
			// the node so hook consumers see it come back.
			m.fireShow(ctx, q, nodeID)
			return
		}
		// Timer already detached the node; fall through and recreate.
	}

	if m.alive(nodeID) {
		return
	}

	node, err := m.factory.Render(ctx, q, map[string]any{"option": ev.OptionLabel})
	if err != nil {
		m.logger.Warn("option-specific render failed, leaving absent", "question", q.ID, "option", ev.OptionID, "err", err)
		return
	}

	anchor := m.groupAnchor(ev.QuestionID)
	if anchor == nil {
		// Trigger has no live node either; degrade to append.
		err = m.tree.Append(node)
	} else if next := m.tree.NextSibling(anchor); next != nil {
		err = m.tree.InsertBefore(node, next)
	} else {
		err = m.tree.Append(node)
	}
	if err != nil {
		m.logger.Warn("option-specific insert failed", "question", q.ID, "option", ev.OptionID, "err", err)
		return
	}
	delete(m.removed, nodeID)

	m.fireShow(ctx, q, nodeID)
}

func (m *OptionManager) fireShow(ctx context.Context, q *domain.Question, nodeID string) {
	if m.hooks.OnQuestionShow != nil {
		m.hooks.OnQuestionShow(ctx, &domain.QuestionEvent{
			Timestamp:  time.Now(),
			StepID:     m.step.ID,
			QuestionID: q.ID,
			NodeID:     nodeID,
		})
	}
}

// groupAnchor returns the node the new sibling should be inserted after: the
// last existing option-specific sibling for the trigger, or the trigger's own
// node when the group is empty.
func (m *OptionManager) groupAnchor(triggerID string) ports.NodeRef {
	anchor := m.tree.QueryByID(triggerID)

	node := anchor
	for node != nil {
		next := m.tree.NextSibling(node)
		if next == nil || !m.inGroup(next.NodeID(), triggerID) {
			break
		}
		node = next
		anchor = next
	}
	return anchor
}

// inGroup reports whether a node ID belongs to the trigger's option-specific
// sibling group.
func (m *OptionManager) inGroup(nodeID, triggerID string) bool {
	for _, q := range m.graph.OptionSpecificByTrigger[triggerID] {
		for _, opt := range optionIDs(m.step.QuestionByID(triggerID)) {
			if nodeID == domain.OptionNodeID(q.ID, opt) {
				return true
			}
		}
	}
	return false
}

func (m *OptionManager) scheduleHide(ctx context.Context, q *domain.Question, ev domain.OptionToggle) {
	nodeID := domain.OptionNodeID(q.ID, ev.OptionID)
	if !m.alive(nodeID) {
		return
	}
	node := m.tree.QueryByID(nodeID)

	// Logically absent right away; physically detached after the cosmetic
	// delay so the exit transition can play.
	m.removed[nodeID] = true
	m.tree.SetVisualFlag(node, leavingFlag, true)

	m.pending[nodeID] = m.clock.AfterFunc(m.delay, func() {
		m.serialize(func() {
			if _, ok := m.pending[nodeID]; !ok {
				// Cancelled by a re-check between firing and serialization.
				return
			}
			delete(m.pending, nodeID)
			delete(m.removed, nodeID)
			if err := m.tree.Remove(node); err != nil {
				m.logger.Warn("deferred removal failed", "node", nodeID, "err", err)
			}
		})
	})

	if m.hooks.OnQuestionHide != nil {
		m.hooks.OnQuestionHide(ctx, &domain.QuestionEvent{
			Timestamp:  time.Now(),
			StepID:     m.step.ID,
			QuestionID: q.ID,
			NodeID:     nodeID,
			Deferred:   true,
		})
	}
}

// PendingRemovals returns the number of nodes awaiting physical detachment.
func (m *OptionManager) PendingRemovals() int {
	return len(m.pending)
}

// Close stops all pending removal timers without detaching nodes.
func (m *OptionManager) Close() {
	for id, timer := range m.pending {
		timer.Stop()
		delete(m.pending, id)
	}
}

func optionLabel(q *domain.Question, optionID string) string {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return opt.Label
		}
	}
	return optionID
}

func optionIDs(q *domain.Question) []string {
	if q == nil {
		return nil
	}
	ids := make([]string, len(q.Options))
	for i, opt := range q.Options {
		ids[i] = opt.ID
	}
	return ids
}
