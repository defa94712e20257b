// Package sync imports the recipe catalog from files and scraped pages.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/catalog"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	"github.com/RedVerrask/Discord-bot-sub000/pkg/crafting"
)

// Sync metadata keys.
const (
	MetaCatalogLastSync = "catalog_last_sync"
	MetaCatalogCount    = "catalog_count"
	MetaCatalogSource   = "catalog_source"
)

// Syncer writes normalized catalogs to the document store.
type Syncer struct {
	backend docstore.Backend
	aliases *professions.Aliases
	logger  *zap.Logger
	now     func() time.Time
}

// NewSyncer creates a new Syncer.
func NewSyncer(backend docstore.Backend, aliases *professions.Aliases, logger *zap.Logger) *Syncer {
	if aliases == nil {
		aliases = professions.DefaultAliases()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{backend: backend, aliases: aliases, logger: logger, now: time.Now}
}

// ImportCatalogFromFile imports a raw catalog file in either the flat or
// the grouped form.
func (s *Syncer) ImportCatalogFromFile(ctx context.Context, path string) (crafting.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return crafting.Catalog{}, fmt.Errorf("reading file: %w", err)
	}
	return s.ImportCatalog(ctx, data, path)
}

// ImportCatalog normalizes raw and replaces the stored catalog. Malformed
// entries are dropped, never reported.
func (s *Syncer) ImportCatalog(ctx context.Context, raw []byte, source string) (crafting.Catalog, error) {
	cat := catalog.Normalize(raw, s.aliases)
	if err := docstore.SaveJSON(ctx, s.backend, docstore.KeyCatalog, cat); err != nil {
		return crafting.Catalog{}, err
	}

	if rec, ok := s.backend.(docstore.MetadataRecorder); ok {
		meta := [][2]string{
			{MetaCatalogLastSync, s.now().UTC().Format(time.RFC3339)},
			{MetaCatalogCount, strconv.Itoa(cat.Len())},
			{MetaCatalogSource, source},
		}
		for _, kv := range meta {
			if err := rec.SetSyncMetadata(ctx, kv[0], kv[1]); err != nil {
				return crafting.Catalog{}, err
			}
		}
	}

	s.logger.Info("catalog imported",
		zap.String("source", source),
		zap.Int("professions", len(cat.Professions)),
		zap.Int("recipes", cat.Len()))
	return cat, nil
}

// ScrapeCatalog fetches every page with scraper and imports the recipes found.
func (s *Syncer) ScrapeCatalog(ctx context.Context, scraper *Scraper) (crafting.Catalog, error) {
	records, err := scraper.Scrape(ctx)
	if err != nil {
		return crafting.Catalog{}, err
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return crafting.Catalog{}, fmt.Errorf("marshaling scraped recipes: %w", err)
	}
	return s.ImportCatalog(ctx, raw, "scrape")
}
