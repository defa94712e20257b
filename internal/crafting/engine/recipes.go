package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/catalog"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// RecipeSearch executes the recipe_search tool logic.
func (e *Engine) RecipeSearch(ctx context.Context, req crafting.RecipeSearchRequest) (*crafting.RecipeSearchResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > e.searchLimit {
		limit = e.searchLimit
	}
	hits := e.index.Search(req.Query, req.Professions, limit)
	if hits == nil {
		hits = []crafting.SearchHit{}
	}
	return &crafting.RecipeSearchResponse{Results: hits}, nil
}

// RecipeLookup executes the recipe_lookup tool logic. A miss is an empty
// response, not an error.
func (e *Engine) RecipeLookup(ctx context.Context, req crafting.RecipeLookupRequest) (*crafting.RecipeLookupResponse, error) {
	resp := &crafting.RecipeLookupResponse{}

	rec, exact, found := e.index.Resolve(req.Name)
	if !found {
		return resp, nil
	}
	resp.Recipe = &rec
	resp.Exact = exact

	if entry, ok := e.registry.Entry(rec.Name); ok {
		resp.Crafters = &entry
	}
	return resp, nil
}

// ReloadCatalog re-reads the catalog document and rebuilds the index.
func (e *Engine) ReloadCatalog(ctx context.Context) (*crafting.ReloadResponse, error) {
	cat, err := catalog.Load(ctx, e.backend, e.aliases)
	if err != nil {
		return nil, fmt.Errorf("reloading catalog: %w", err)
	}
	e.index.Rebuild(cat)

	e.logger.Debug("catalog reloaded", zap.Int("recipes", cat.Len()))
	return &crafting.ReloadResponse{
		Professions: len(cat.Professions),
		Recipes:     cat.Len(),
	}, nil
}
