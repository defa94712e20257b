// Crafting companion bot: recipe catalog, crafter registry and market
// tools served to the chat layer over MCP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RedVerrask/Discord-bot-sub000/internal/config"
)

var (
	// Global flags
	verbose    bool
	configFile string

	v      = config.New()
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "crafting-bot",
	Short: "Crafting companion: recipes, crafters and the player market",
	Long: `crafting-bot keeps the recipe catalog, who can craft what at which
tier, wishlists and market listings, and serves them as MCP tools over
stdio for the chat layer.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&configFile, "config", "", "Config file (default: ./config.yaml if present)")
	flags.String("storage", "sqlite", "Storage backend: sqlite, file or redis")
	flags.String("db", "data/crafting.db", "Path to SQLite database")
	flags.String("data-dir", "data", "Directory for the file backend")
	mustBind(v, "storage.backend", flags.Lookup("storage"))
	mustBind(v, "storage.sqlite_path", flags.Lookup("db"))
	mustBind(v, "storage.dir", flags.Lookup("data-dir"))

	serveCmd.Flags().String("catalog", "", "Raw catalog file imported before serving")
	serveCmd.Flags().Bool("enforce-tiers", false, "Refuse recipes above the user's profession tier")
	mustBind(v, "catalog.file", serveCmd.Flags().Lookup("catalog"))
	mustBind(v, "crafting.enforce_tiers", serveCmd.Flags().Lookup("enforce-tiers"))

	scrapeCmd.Flags().StringSlice("url", nil, "Page to scrape (repeatable)")
	mustBind(v, "scrape.urls", scrapeCmd.Flags().Lookup("url"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCatalogCmd)
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(statusCmd)
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
