package middleware

import (
	"context"
	"regexp"

	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/ports"
)

// mask replaces a matched value wherever the original would have been stored.
const mask = "***"

type piiMiddleware struct {
	next     ports.ResponseStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the stored value and
// comment of any question whose ID matches one of the patterns. The engine
// still reconciles against the unmasked in-memory value during the session;
// only what reaches the underlying store is redacted.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ResponseStore) ports.ResponseStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Set(ctx context.Context, questionID string, resp *domain.Response) error {
	if !m.matches(questionID) {
		return m.next.Set(ctx, questionID, resp)
	}

	// Clone so the caller's response is not mutated.
	masked := *resp
	if masked.Value != nil {
		masked.Value = mask
	}
	if masked.Comment != "" {
		masked.Comment = mask
	}
	return m.next.Set(ctx, questionID, &masked)
}

func (m *piiMiddleware) Get(ctx context.Context, questionID string) (*domain.Response, error) {
	return m.next.Get(ctx, questionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, questionID string) error {
	return m.next.Delete(ctx, questionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(questionID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(questionID) {
			return true
		}
	}
	return false
}
