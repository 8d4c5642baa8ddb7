// Command emotion-player runs the emotion-driven music player and manages its
// track catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/config"
	"github.com/justestif/go-emotion-player/internal/db"
)

// errNoDatabase is returned by commands that need DATABASE_URL.
var errNoDatabase = errors.New("DATABASE_URL is not set")

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "emotion-player",
		Short:         "Music player that follows the listener's facial expression",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newImportCmd(),
		newCatalogCmd(),
		newStatsCmd(),
		newHistoryCmd(),
		newTagsCmd(),
	)
	return root
}

// newLogger returns a JSON logger for the long-running server and a text
// logger for one-shot commands.
func newLogger(w io.Writer, json bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if json {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// openDB connects and migrates when DATABASE_URL is set. It returns nil
// without error when no database is configured.
func openDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}

	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

// requireDB is openDB for commands that cannot run without a database.
func requireDB(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if database == nil {
		return nil, errNoDatabase
	}
	return database, nil
}

// loadCatalog picks the catalog source: the database when it holds tracks,
// else the configured JSON file, else the built-in catalog. It also returns
// a short name of the source for logging.
func loadCatalog(ctx context.Context, cfg *config.Config, database *db.DB, logger *slog.Logger) (*catalog.Catalog, string, error) {
	if database != nil {
		c, err := database.LoadCatalog(ctx)
		switch {
		case err == nil:
			return c, "database", nil
		case errors.Is(err, db.ErrNotFound):
			logger.Warn("database catalog is empty, falling back")
		case errors.Is(err, catalog.ErrEmptyMood):
			logger.Warn("database catalog is incomplete, falling back", "error", err)
		default:
			return nil, "", fmt.Errorf("loading catalog from database: %w", err)
		}
	}

	if cfg.CatalogPath != "" {
		c, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			return nil, "", fmt.Errorf("loading catalog %s: %w", cfg.CatalogPath, err)
		}
		return c, cfg.CatalogPath, nil
	}

	return catalog.Default(), "built-in", nil
}
