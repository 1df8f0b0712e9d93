// Package middleware wraps a response store with cross-cutting behavior:
// at-rest encryption and PII masking. Middlewares compose, innermost first:
//
//	store := middleware.Chain(memory.NewStore(),
//		middleware.NewEncryptionMiddleware(cfg),
//		middleware.NewPIIMiddleware([]string{"(?i)email"}),
//	)
package middleware

import "github.com/espalier-dev/espalier/pkg/ports"

// Middleware wraps a ResponseStore to add behavior.
type Middleware func(ports.ResponseStore) ports.ResponseStore

// Chain applies middlewares to a store, first entry innermost.
func Chain(store ports.ResponseStore, mws ...Middleware) ports.ResponseStore {
	for _, mw := range mws {
		store = mw(store)
	}
	return store
}
