package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justestif/go-emotion-player/internal/catalog"
	"github.com/justestif/go-emotion-player/internal/config"
	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/mood"
)

func newCatalogCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print and validate the effective catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := newLogger(cmd.ErrOrStderr(), false)

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
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cat.Entries())
			}
			return printCatalog(cmd.OutOrStdout(), cat, source)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")

	cmd.AddCommand(newCatalogRemoveCmd())
	return cmd
}

func newCatalogRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <mood> <track-id>",
		Short: "Remove an imported track from the database catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m, id := args[0], args[1]
			if !mood.Mood(m).Valid() {
				return fmt.Errorf("%w: %q", catalog.ErrUnknownMood, m)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := requireDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			repo := database.Tracks()
			track, err := repo.Get(ctx, m, id)
			if errors.Is(err, db.ErrNotFound) {
				return fmt.Errorf("track %s/%s: %w", m, id, err)
			}
			if err != nil {
				return err
			}
			if err := repo.Delete(ctx, m, id); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s - %s from %s\n", track.Artist, track.Title, m)
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog, source string) error {
	fmt.Fprintf(w, "Catalog (%s)\n\n", source)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOOD\tID\tTITLE\tARTIST\tPATH")
	for _, t := range cat.All() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.Mood, t.ID, t.Title, t.Artist, t.Path)
	}
	return tw.Flush()
}
