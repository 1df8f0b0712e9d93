package main

import (
	"fmt"
	"path/filepath"

	"github.com/aretw0/loam"
	loamAdapter "github.com/espalier-dev/espalier/pkg/adapters/loam"
)

// openSource opens the form vault shared by the server commands.
func openSource(vaultPath string) (*loamAdapter.Source, error) {
	absPath, err := filepath.Abs(vaultPath)
	if err != nil {
		return nil, fmt.Errorf("invalid vault path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return loamAdapter.New(loam.NewTypedRepository[loamAdapter.FormMetadata](repo)), nil
}
