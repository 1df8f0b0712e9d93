// Package cli implements the interactive form session behind the run command.
package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	VaultPath     string
	FormID        string
	StepID        string
	Watch         bool
	Debug         bool
	Plain         bool
	RedisURL      string
	StoreDir      string // file-backed responses; empty keeps them in memory
	EncryptionKey string // hex, 64 chars; enables at-rest encryption
	PIIPatterns   []string
}

// Execute handles the run command logic, dispatching to session or watch mode.
func Execute(opts RunOptions) error {
	if opts.FormID == "" {
		return fmt.Errorf("form id is required")
	}

	if opts.Watch {
		return RunWatch(opts)
	}
	return RunSession(opts)
}
