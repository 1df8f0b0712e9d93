package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ConditionOracle decides whether a question's condition set is currently
// satisfied. The engine never interprets rules itself; it only asks the
// oracle and treats an error as "hidden" (fail closed).
type ConditionOracle interface {
	Evaluate(ctx context.Context, q *domain.Question) (bool, error)
}

// OracleFunc adapts a plain function to the ConditionOracle interface.
type OracleFunc func(ctx context.Context, q *domain.Question) (bool, error)

func (f OracleFunc) Evaluate(ctx context.Context, q *domain.Question) (bool, error) {
	return f(ctx, q)
}
