package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/loam"
	"github.com/espalier-dev/espalier"
	fileAdapter "github.com/espalier-dev/espalier/pkg/adapters/file"
	loamAdapter "github.com/espalier-dev/espalier/pkg/adapters/loam"
	redisAdapter "github.com/espalier-dev/espalier/pkg/adapters/redis"
	"github.com/espalier-dev/espalier/pkg/domain"
	"github.com/espalier-dev/espalier/pkg/persistence/middleware"
	"github.com/espalier-dev/espalier/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// createSource opens the form vault at the given path.
func createSource(vaultPath string) (*loamAdapter.Source, error) {
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

// createStore builds the response store from the CLI flags: Redis when a URL
// is given, in-memory otherwise, wrapped in the configured middleware chain.
// A nil store result means "use the engine default".
func createStore(opts RunOptions) (ports.ResponseStore, error) {
	var store ports.ResponseStore

	switch {
	case opts.RedisURL != "" && opts.StoreDir != "":
		return nil, fmt.Errorf("--redis and --store-dir cannot be used together")
	case opts.RedisURL != "":
		redisOpts, err := backend.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		store = redisAdapter.NewFromClient(backend.NewClient(redisOpts))
	case opts.StoreDir != "":
		store = fileAdapter.NewStore(opts.StoreDir)
	}

	mws, err := buildMiddleware(opts)
	if err != nil {
		return nil, err
	}
	if len(mws) == 0 {
		return store, nil
	}

	if store == nil {
		// Middleware needs an explicit inner store to wrap.
		store = espalier.New().Store()
	}
	return middleware.Chain(store, mws...), nil
}

func buildMiddleware(opts RunOptions) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware

	if opts.EncryptionKey != "" {
		key, err := hex.DecodeString(opts.EncryptionKey)
		if err != nil || len(key) != 32 {
			return nil, fmt.Errorf("encryption key must be 64 hex characters (AES-256)")
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(opts.PIIPatterns) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(opts.PIIPatterns))
	}
	return mws, nil
}

// createEngine initializes an engine with standard CLI conventions.
func createEngine(opts RunOptions, logger *slog.Logger) (*espalier.Engine, error) {
	engineOpts := []espalier.Option{
		espalier.WithLogger(logger),
	}

	store, err := createStore(opts)
	if err != nil {
		return nil, err
	}
	if store != nil {
		engineOpts = append(engineOpts, espalier.WithResponseStore(store))
	}

	if opts.Debug {
		engineOpts = append(engineOpts, espalier.WithLifecycleHooks(createDebugHooks(logger)))
	}

	return espalier.New(engineOpts...), nil
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnQuestionShow: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.Debug("Question shown", "node_id", e.NodeID, "step", e.StepID)
		},
		OnQuestionHide: func(ctx context.Context, e *domain.QuestionEvent) {
			logger.Debug("Question hidden", "node_id", e.NodeID, "deferred", e.Deferred)
		},
		OnRefresh: func(ctx context.Context, e *domain.RefreshEvent) {
			logger.Debug("Refresh pass", "step", e.StepID, "inserted", e.Inserted, "removed", e.Removed)
		},
	}
}

// determineStep resolves the starting step: an explicit ID when given,
// otherwise the form's first step.
func determineStep(form *domain.Form, stepID string) (*domain.Step, error) {
	if stepID != "" {
		step := form.StepByID(stepID)
		if step == nil {
			return nil, fmt.Errorf("form %s has no step %q", form.ID, stepID)
		}
		return step, nil
	}
	if len(form.Steps) == 0 {
		return nil, fmt.Errorf("form %s has no steps", form.ID)
	}
	return &form.Steps[0], nil
}

// collectResponses snapshots the current answers of the step's questions.
func collectResponses(ctx context.Context, store ports.ResponseStore, step *domain.Step) map[string]*domain.Response {
	out := make(map[string]*domain.Response, len(step.Questions))
	for i := range step.Questions {
		id := step.Questions[i].ID
		resp, err := store.Get(ctx, id)
		if err != nil || resp == nil {
			continue
		}
		out[id] = resp
	}
	return out
}
