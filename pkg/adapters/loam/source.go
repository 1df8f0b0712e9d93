// Package loam adapts a Loam document vault to the form source port. Forms
// live as markdown files with a YAML frontmatter definition; the body is the
// form's intro text. The vault can be watched for edits, so a running host
// picks up authored changes without a restart.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/schema"
)

// Source implements ports.FormSource over a Loam typed repository.
type Source struct {
	Repo *loam.TypedRepository[FormMetadata]
}

// New creates a new Loam form source.
func New(repo *loam.TypedRepository[FormMetadata]) *Source {
	return &Source{Repo: repo}
}

// Load retrieves a form by ID and validates it structurally. Loam resolves
// "wellbeing" to wellbeing.md, so callers use bare IDs.
func (s *Source) Load(ctx context.Context, id string) (*domain.Form, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	form := doc.Data.toDomain(strings.TrimSpace(doc.Content))
	if form.ID == "" {
		form.ID = trimExtension(doc.ID)
	}
	if err := schema.ValidateForm(form); err != nil {
		return nil, fmt.Errorf("form %s: %w", id, err)
	}
	return form, nil
}

// List returns the IDs of all forms in the vault. A frontmatter id overrides
// the filename-derived one; a collision between the two spaces is an error.
func (s *Source) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision: form id %q defined in both %q and %q", id, existing, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch emits the ID of every form document that changes on disk, until the
// context is cancelled. Loam supplies its own debounce.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
