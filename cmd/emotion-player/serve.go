package main

import (
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/justestif/go-emotion-player/internal/config"
	"github.com/justestif/go-emotion-player/internal/web"
	assets "github.com/justestif/go-emotion-player/web"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the player web server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), true)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	cat, source, err := loadCatalog(ctx, cfg, database, logger)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "source", source, "tracks", len(cat.All()))

	templates, err := fs.Sub(assets.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}
	static, err := fs.Sub(assets.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	serverCfg := web.ServerConfig{
		Addr:          cfg.Addr,
		Catalog:       cat,
		Stabilizer:    cfg.Stabilizer(),
		SessionTTL:    cfg.SessionTTL,
		SweepSchedule: cfg.SweepSchedule,
		MusicDir:      cfg.MusicDir,
		Logger:        logger,
		TemplatesFS:   templates,
		StaticFS:      static,
	}
	if database != nil {
		serverCfg.Plays = database.Plays()
	}

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return server.Run(ctx)
}
