package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// ResponseStore is the keyed store of per-question answer state.
// The reconciliation core only reads it (through the condition oracle);
// writes come from the session, HTTP and CLI surfaces.
type ResponseStore interface {
	// Get returns the current response for a question, or (nil, nil) when the
	// question has not been answered.
	Get(ctx context.Context, questionID string) (*domain.Response, error)

	// Set stores the response for a question, replacing any previous value.
	Set(ctx context.Context, questionID string, resp *domain.Response) error

	// Delete clears the response for a question.
	Delete(ctx context.Context, questionID string) error

	// List returns the IDs of all answered questions.
	List(ctx context.Context) ([]string, error)
}
