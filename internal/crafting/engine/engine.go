// Package engine composes the crafting stores into the operations exposed
// to the chat layer.
package engine

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/catalog"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/learned"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/market"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/profiles"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/registry"
)

// Options tune an Engine. Zero values select the package defaults.
type Options struct {
	Aliases        *professions.Aliases
	MaxProfessions int
	SearchLimit    int
	CacheSize      int
	// EnforceTiers refuses to record recipes whose numeric catalog level
	// is above the user's tier in the recipe's profession.
	EnforceTiers bool
	Logger       *zap.Logger
}

// Engine is the main entry point for crafting operations.
type Engine struct {
	backend  docstore.Backend
	aliases  *professions.Aliases
	index    *catalog.Index
	ledger   *professions.Ledger
	learned  *learned.Store
	profiles *profiles.Store
	registry *registry.Registry
	market   *market.Ledger

	// learnMu serializes operations spanning the learned store and the
	// crafter registry.
	learnMu sync.Mutex

	searchLimit  int
	enforceTiers bool
	logger       *zap.Logger
}

// New creates an Engine whose stores persist to backend. Call Load before
// serving requests.
func New(backend docstore.Backend, opts Options) *Engine {
	aliases := opts.Aliases
	if aliases == nil {
		aliases = professions.DefaultAliases()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	searchLimit := opts.SearchLimit
	if searchLimit <= 0 {
		searchLimit = catalog.DefaultSearchLimit
	}

	index := catalog.NewIndex(catalog.Normalize(nil, aliases), aliases, opts.CacheSize)
	ledger := professions.NewLedger(backend, aliases, opts.MaxProfessions)
	profileStore := profiles.NewStore(backend)

	return &Engine{
		backend:      backend,
		aliases:      aliases,
		index:        index,
		ledger:       ledger,
		learned:      learned.NewStore(backend, aliases),
		profiles:     profileStore,
		registry:     registry.New(backend, index, ledger, profileStore),
		market:       market.NewLedger(backend),
		searchLimit:  searchLimit,
		enforceTiers: opts.EnforceTiers,
		logger:       logger,
	}
}

// Load reads every document from the backend.
func (e *Engine) Load(ctx context.Context) error {
	if _, err := e.ReloadCatalog(ctx); err != nil {
		return err
	}

	loaders := []struct {
		name string
		load func(context.Context) error
	}{
		{"professions", e.ledger.Load},
		{"learned recipes", e.learned.Load},
		{"profiles", e.profiles.Load},
		{"crafter registry", e.registry.Load},
		{"market", e.market.Load},
	}
	for _, l := range loaders {
		if err := l.load(ctx); err != nil {
			return fmt.Errorf("loading %s: %w", l.name, err)
		}
	}

	e.logger.Info("crafting state loaded",
		zap.Int("recipes", e.index.Len()),
		zap.Int("professions", len(e.index.Catalog().Professions)))
	return nil
}

// Index returns the recipe index.
func (e *Engine) Index() *catalog.Index { return e.index }
