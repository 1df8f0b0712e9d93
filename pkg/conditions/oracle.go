// Package conditions provides the default ConditionOracle implementation.
//
// The oracle reads the response store and applies the closed operator set
// from pkg/domain. Malformed rules (missing question ID, unknown operator)
// make the whole set unsatisfied: the engine fails closed and the question
// stays hidden, with no propagated fault.
package conditions

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/espalier-dev/espalier/internal/logging"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// Oracle implements ports.ConditionOracle against a response store.
type Oracle struct {
	store  ports.ResponseStore
	logger *slog.Logger
}

// Option configures the Oracle.
type Option func(*Oracle)

// WithLogger sets a structured logger for rule-level diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Oracle) { o.logger = logger }
}

// New creates an oracle reading the given store.
func New(store ports.ResponseStore, opts ...Option) *Oracle {
	o := &Oracle{store: store, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Evaluate reports whether every rule in the question's condition set holds.
// A question without conditions is always visible.
func (o *Oracle) Evaluate(ctx context.Context, q *domain.Question) (bool, error) {
	if !q.Conditional() {
		return true, nil
	}

	for _, rule := range q.Conditions.Rules {
		ok, err := o.evaluateRule(ctx, rule)
		if err != nil {
			o.logger.Debug("rule failed closed", "question", q.ID, "trigger", rule.QuestionID, "op", rule.Operator, "err", err)
			return false, nil
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (o *Oracle) evaluateRule(ctx context.Context, rule domain.Rule) (bool, error) {
	if rule.QuestionID == "" {
		return false, fmt.Errorf("rule missing question id")
	}

	resp, err := o.store.Get(ctx, rule.QuestionID)
	if err != nil {
		return false, fmt.Errorf("response lookup: %w", err)
	}

	switch rule.Operator {
	case domain.OpAnswered:
		return answered(resp), nil
	case domain.OpNotAnswered:
		return !answered(resp), nil
	case domain.OpEquals:
		return answered(resp) && equal(resp.Value, rule.Value), nil
	case domain.OpNotEquals:
		return answered(resp) && !equal(resp.Value, rule.Value), nil
	case domain.OpContains:
		return answered(resp) && contains(resp.Value, rule.Value), nil
	case domain.OpNotContains:
		return answered(resp) && !contains(resp.Value, rule.Value), nil
	case domain.OpGreaterThan:
		return compareNumeric(resp, rule.Value, func(a, b float64) bool { return a > b })
	case domain.OpLessThan:
		return compareNumeric(resp, rule.Value, func(a, b float64) bool { return a < b })
	default:
		return false, fmt.Errorf("unknown operator %q", rule.Operator)
	}
}

func answered(resp *domain.Response) bool {
	if resp == nil || resp.Value == nil {
		return false
	}
	switch v := resp.Value.(type) {
	case string:
		return v != ""
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}

// equal compares loosely: values of different dynamic types (e.g. a stored
// float64 against a rule string) are compared through their string forms.
func equal(a, b any) bool {
	if a == b {
		return true
	}
	return stringify(a) == stringify(b)
}

// contains checks membership for slice answers and substring match for text.
func contains(value, needle any) bool {
	want := stringify(needle)
	switch v := value.(type) {
	case []string:
		for _, e := range v {
			if e == want {
				return true
			}
		}
	case []any:
		for _, e := range v {
			if stringify(e) == want {
				return true
			}
		}
	case string:
		return strings.Contains(v, want)
	}
	return false
}

func compareNumeric(resp *domain.Response, ruleValue any, cmp func(a, b float64) bool) (bool, error) {
	if !answered(resp) {
		return false, nil
	}
	a, err := toFloat(resp.Value)
	if err != nil {
		return false, err
	}
	b, err := toFloat(ruleValue)
	if err != nil {
		return false, err
	}
	return cmp(a, b), nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("non-numeric value %T", v)
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
