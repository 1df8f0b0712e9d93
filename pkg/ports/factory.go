package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// QuestionFactory renders a question into a view node. The engine calls it
// exactly when a question becomes visible; the returned ref must carry the
// view identity the node will be queried under (see NodeRef.NodeID).
//
// templateData, when non-nil, is the substitution context for tokens in the
// question's literal text (the option-specific path passes {"option": label}).
type QuestionFactory interface {
	Render(ctx context.Context, q *domain.Question, templateData map[string]any) (NodeRef, error)
}
