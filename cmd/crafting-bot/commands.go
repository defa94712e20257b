package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/docstore"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/engine"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/mcp"
	"github.com/RedVerrask/Discord-bot-sub000/internal/crafting/professions"
	craftsync "github.com/RedVerrask/Discord-bot-sub000/internal/crafting/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the crafting tools over stdio",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var importCatalogCmd = &cobra.Command{
	Use:   "import-catalog <file>",
	Short: "Import a recipe catalog (flat list or profession-grouped) into storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, backend docstore.Backend) error {
			logger.Info("importing catalog", zap.String("file", args[0]))
			_, err := newSyncer(backend).ImportCatalogFromFile(ctx, args[0])
			return err
		})
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape recipe tables from the configured pages into storage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, backend docstore.Backend) error {
			scraper := craftsync.NewScraper(cfg.Scrape, logger)
			defer func() { _ = scraper.Close() }()
			_, err := newSyncer(backend).ScrapeCatalog(ctx, scraper)
			return err
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report stored documents and the last catalog sync",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd, func(ctx context.Context, backend docstore.Backend) error {
			keys := []string{
				docstore.KeyCatalog, docstore.KeyProfessions, docstore.KeyLearned,
				docstore.KeyRegistry, docstore.KeyMarket, docstore.KeyProfiles,
			}
			for _, key := range keys {
				body, ok, err := backend.Load(ctx, key)
				if err != nil {
					return err
				}
				logger.Info("document", zap.String("key", key), zap.Bool("present", ok), zap.Int("bytes", len(body)))
			}

			rec, ok := backend.(docstore.MetadataRecorder)
			if !ok {
				return nil
			}
			for _, key := range []string{craftsync.MetaCatalogLastSync, craftsync.MetaCatalogCount, craftsync.MetaCatalogSource} {
				value, err := rec.GetSyncMetadata(ctx, key)
				if err != nil {
					return err
				}
				logger.Info("sync metadata", zap.String("key", key), zap.String("value", value))
			}
			return nil
		})
	},
}

func aliases() *professions.Aliases {
	return professions.NewAliases(cfg.Professions.Aliases)
}

func newSyncer(backend docstore.Backend) *craftsync.Syncer {
	return craftsync.NewSyncer(backend, aliases(), logger)
}

// withBackend opens the configured storage for the lifetime of fn and
// cancels ctx on SIGINT or SIGTERM.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, backend docstore.Backend) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := docstore.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("failed to close storage", zap.Error(err))
		}
	}()

	return fn(ctx, backend)
}

func runServe(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, backend docstore.Backend) error {
		if cfg.Catalog.File != "" {
			_, err := newSyncer(backend).ImportCatalogFromFile(ctx, cfg.Catalog.File)
			switch {
			case errors.Is(err, os.ErrNotExist):
				logger.Warn("catalog file not found, keeping stored catalog", zap.String("file", cfg.Catalog.File))
			case err != nil:
				return err
			}
		}

		eng := engine.New(backend, engine.Options{
			Aliases:        aliases(),
			MaxProfessions: cfg.Professions.MaxPerUser,
			SearchLimit:    cfg.Catalog.SearchLimit,
			CacheSize:      cfg.Catalog.CacheSize,
			EnforceTiers:   cfg.Crafting.EnforceTiers,
			Logger:         logger,
		})
		if err := eng.Load(ctx); err != nil {
			return err
		}
		server := mcp.NewServer(eng, logger)

		ctx, cancel := context.WithCancel(ctx)
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer cancel()
			return server.Run(ctx)
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("shutting down...")
			return nil
		})

		logger.Info("starting MCP server", zap.String("storage", cfg.Storage.Backend))
		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server error", zap.Error(err))
			return err
		}
		logger.Info("server stopped")
		return nil
	})
}
