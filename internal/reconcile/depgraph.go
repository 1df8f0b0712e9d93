package reconcile

import "github.com/espalier-dev/espalier/pkg/domain"

// DependencyGraph is the trigger→dependents index for one step. It is derived,
// never stored: the session rebuilds it whenever the step is (re)rendered.
type DependencyGraph struct {
	// TriggerIDs is the set of questions whose answers are read by at least
	// one condition rule or option-specific linkage.
	TriggerIDs map[string]bool

	// ConditionalByTrigger maps a trigger ID to the condition-bearing
	// questions that read it, in step declaration order.
	ConditionalByTrigger map[string][]*domain.Question

	// OptionSpecificByTrigger maps a linked question ID to its
	// option-specific dependents, in step declaration order.
	OptionSpecificByTrigger map[string][]*domain.Question
}

// BuildDependencyGraph scans a step's questions once and produces the index.
// It is a pure function of the step; an empty step yields an empty graph and
// there are no error conditions.
func BuildDependencyGraph(step *domain.Step) *DependencyGraph {
	g := &DependencyGraph{
		TriggerIDs:              make(map[string]bool),
		ConditionalByTrigger:    make(map[string][]*domain.Question),
		OptionSpecificByTrigger: make(map[string][]*domain.Question),
	}
	if step == nil {
		return g
	}

	for i := range step.Questions {
		q := &step.Questions[i]

		if q.OptionSpecific() {
			g.TriggerIDs[q.LinkedQuestionID] = true
			g.OptionSpecificByTrigger[q.LinkedQuestionID] = append(g.OptionSpecificByTrigger[q.LinkedQuestionID], q)
			continue
		}

		for _, trigger := range q.Conditions.TriggerIDs() {
			g.TriggerIDs[trigger] = true
			g.ConditionalByTrigger[trigger] = append(g.ConditionalByTrigger[trigger], q)
		}
	}

	return g
}
