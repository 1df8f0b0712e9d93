package ports

import (
	"context"

	"github.com/espalier-dev/espalier/pkg/domain"
)

// FormSource defines where form definitions come from. This decouples the
// engine from the storage layer (YAML files, Loam repositories, memory).
type FormSource interface {
	// Load retrieves a full form definition by ID.
	Load(ctx context.Context, id string) (*domain.Form, error)
}
