package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Mutations summarizes the view-tree changes of one reconciliation pass.
// A second pass with no response change in between must report zero.
type Mutations struct {
	Inserted int
	Removed  int
}

// Total returns the number of tree mutations performed.
func (m Mutations) Total() int { return m.Inserted + m.Removed }

// Reconciler computes desired visibility for condition-bearing questions and
// diffs it against the view tree, performing minimal insert/remove operations.
//
// Option-specific questions are owned by the OptionManager and never touched
// here; the two ordering algorithms are deliberately separate.
type Reconciler struct {
	step    *domain.Step
	tree    ports.ViewTree
	oracle  ports.ConditionOracle
	factory ports.QuestionFactory
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
}

// NewReconciler creates a reconciler bound to one step and its view tree.
func NewReconciler(step *domain.Step, tree ports.ViewTree, oracle ports.ConditionOracle, factory ports.QuestionFactory, logger *slog.Logger, hooks domain.LifecycleHooks) *Reconciler {
	return &Reconciler{
		step:    step,
		tree:    tree,
		oracle:  oracle,
		factory: factory,
		logger:  logger,
		hooks:   hooks,
	}
}

// Refresh runs one full reconciliation pass. For every condition-bearing
// question it evaluates the oracle, compares with the tree, and inserts or
// removes the node as needed. Evaluation proceeds in step declaration order.
//
// No fault escapes: a failing oracle hides the question, a failing factory
// leaves it absent, and the pass continues for all other questions.
func (r *Reconciler) Refresh(ctx context.Context) Mutations {
	var muts Mutations

	for i := range r.step.Questions {
		q := &r.step.Questions[i]
		if q.OptionSpecific() || !q.Conditional() {
			continue
		}

		desired := r.desiredVisible(ctx, q)
		current := r.tree.QueryByID(q.ID) != nil

		switch {
		case desired && !current:
			if r.show(ctx, q, i) {
				muts.Inserted++
			}
		case !desired && current:
			if r.hide(ctx, q) {
				muts.Removed++
			}
		}
	}

	if r.hooks.OnRefresh != nil {
		r.hooks.OnRefresh(ctx, &domain.RefreshEvent{
			Timestamp: time.Now(),
			StepID:    r.step.ID,
			Inserted:  muts.Inserted,
			Removed:   muts.Removed,
		})
	}

	return muts
}

// desiredVisible asks the oracle and fails closed on any error.
func (r *Reconciler) desiredVisible(ctx context.Context, q *domain.Question) bool {
	visible, err := r.oracle.Evaluate(ctx, q)
	if err != nil {
		r.logger.Debug("condition evaluation failed, hiding question", "question", q.ID, "err", err)
		return false
	}
	return visible
}

// show materializes the question and inserts it immediately before the
// nearest later question (by declaration index) that already has a live node.
// With no later live node it appends at the end.
func (r *Reconciler) show(ctx context.Context, q *domain.Question, idx int) bool {
	node, err := r.factory.Render(ctx, q, nil)
	if err != nil {
		r.logger.Warn("question render failed, leaving hidden", "question", q.ID, "err", err)
		return false
	}

	anchor := r.insertionAnchor(idx)
	if anchor != nil {
		err = r.tree.InsertBefore(node, anchor)
	} else {
		err = r.tree.Append(node)
	}
	if err != nil {
		r.logger.Warn("question insert failed, leaving hidden", "question", q.ID, "err", err)
		return false
	}

	if r.hooks.OnQuestionShow != nil {
		r.hooks.OnQuestionShow(ctx, &domain.QuestionEvent{
			Timestamp:  time.Now(),
			StepID:     r.step.ID,
			QuestionID: q.ID,
			NodeID:     node.NodeID(),
		})
	}
	return true
}

// insertionAnchor finds the first question after idx with a live node under
// its plain question ID. Option-specific variants render under a composite
// identity, so they never anchor a standard insertion.
func (r *Reconciler) insertionAnchor(idx int) ports.NodeRef {
	for i := idx + 1; i < len(r.step.Questions); i++ {
		if node := r.tree.QueryByID(r.step.Questions[i].ID); node != nil {
			return node
		}
	}
	return nil
}

// hide detaches the node immediately. Conditional questions get no
// deferred-removal window. Reports whether the node was actually removed, so
// the Mutations summary stays truthful when the tree rejects the detach.
func (r *Reconciler) hide(ctx context.Context, q *domain.Question) bool {
	node := r.tree.QueryByID(q.ID)
	if node == nil {
		return false
	}
	if err := r.tree.Remove(node); err != nil {
		r.logger.Warn("question remove failed", "question", q.ID, "err", err)
		return false
	}
	if r.hooks.OnQuestionHide != nil {
		r.hooks.OnQuestionHide(ctx, &domain.QuestionEvent{
			Timestamp:  time.Now(),
			StepID:     r.step.ID,
			QuestionID: q.ID,
			NodeID:     q.ID,
		})
	}
	return true
}
