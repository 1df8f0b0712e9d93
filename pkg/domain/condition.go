package domain

// Operator names the comparison applied by a condition rule.
// The core never interprets operators itself; that is the oracle's job.
// pkg/conditions implements this set, and unknown operators fail closed.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpAnswered    Operator = "answered"
	OpNotAnswered Operator = "not_answered"
)

// Rule reads another question's current answer and compares it to Value.
type Rule struct {
	QuestionID string   `json:"question_id" yaml:"question_id"`
	Operator   Operator `json:"operator" yaml:"operator"`
	Value      any      `json:"value,omitempty" yaml:"value,omitempty"`
}

// ConditionSet gates a question's visibility. All rules must hold (AND).
type ConditionSet struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// TriggerIDs returns the distinct question IDs this set depends on,
// in rule order. Rules with an empty QuestionID are skipped; the oracle
// treats them as malformed and fails closed.
func (c *ConditionSet) TriggerIDs() []string {
	if c == nil {
		return nil
	}
	seen := make(map[string]bool, len(c.Rules))
	ids := make([]string, 0, len(c.Rules))
	for _, r := range c.Rules {
		if r.QuestionID == "" || seen[r.QuestionID] {
			continue
		}
		seen[r.QuestionID] = true
		ids = append(ids, r.QuestionID)
	}
	return ids
}
