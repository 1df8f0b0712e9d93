package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/espalier-dev/espalier"
	"github.com/espalier-dev/espalier/internal/presentation/tui"
	"github.com/espalier-dev/espalier/pkg/domain"
)

// RunWatch executes the session in development mode, reloading the form when
// the vault changes. Responses live in the engine's store, so the rebuilt
// session restores visibility state from the same answers.
func RunWatch(opts RunOptions) error {
	logger := createLogger(opts.Debug)
	if !opts.Plain {
		tui.PrintBanner(espalier.Version)
	}

	source, err := createSource(opts.VaultPath)
	if err != nil {
		return err
	}

	engine, err := createEngine(opts, logger)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	logger.Info("Starting watcher", "vault", opts.VaultPath, "form", opts.FormID)
	printSystemMessage("Watching '%s' for changes.", opts.VaultPath)

	for {
		reload, err := runWatchIteration(sigCtx, engine, source, opts)
		if err != nil {
			logger.Error("Watch iteration failed", "err", err)
			// Wait for an edit to fix the form, or a signal.
			select {
			case <-sigCtx.Done():
				return nil
			case <-time.After(2 * time.Second):
				continue
			}
		}
		if !reload {
			break
		}
		logger.Info("Watcher restarting")
		printSystemMessage("Reloading form '%s'...", opts.FormID)
	}

	if sigCtx.Signal() != nil {
		printSystemMessage("Interrupted.")
	}
	return nil
}

// runWatchIteration runs one interactive session until the vault changes
// (reload true), the user quits, or a signal arrives (reload false).
func runWatchIteration(parentCtx *SignalContext, engine *espalier.Engine, source formLoader, opts RunOptions) (bool, error) {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	form, err := source.Load(ctx, opts.FormID)
	if err != nil {
		return true, fmt.Errorf("failed to load form: %w", err)
	}

	watchCh, err := source.Watch(ctx)
	if err != nil {
		return false, err
	}

	reloadCh := make(chan struct{}, 1)
	go func() {
		select {
		case <-ctx.Done():
		case id, ok := <-watchCh:
			if !ok {
				return
			}
			fmt.Printf("\n")
			printSystemMessage("Change detected in '%s'.", id)
			// Give the filesystem a moment to settle.
			time.Sleep(100 * time.Millisecond)
			reloadCh <- struct{}{}
			cancel()
		}
	}()

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- runInteractive(ctx, engine, form, opts)
	}()

	select {
	case <-parentCtx.Done():
		cancel()
		<-doneCh
		return false, nil
	case <-reloadCh:
		<-doneCh
		return true, nil
	case err := <-doneCh:
		if err != nil && !isInterrupted(err) {
			return false, err
		}
		return false, nil
	}
}

// formLoader is the slice of the form source the watcher needs.
type formLoader interface {
	Load(ctx context.Context, id string) (*domain.Form, error)
	Watch(ctx context.Context) (<-chan string, error)
}
