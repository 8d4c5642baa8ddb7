package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/justestif/go-emotion-player/internal/auth"
	"github.com/justestif/go-emotion-player/internal/clustering"
	"github.com/justestif/go-emotion-player/internal/config"
	"github.com/justestif/go-emotion-player/internal/db"
	"github.com/justestif/go-emotion-player/internal/importer"
	"github.com/justestif/go-emotion-player/internal/lastfm"
	"github.com/justestif/go-emotion-player/internal/mood"
	"github.com/justestif/go-emotion-player/internal/spotify"
	"github.com/justestif/go-emotion-player/internal/tags"
)

// errIncompleteCatalog is returned when an import leaves moods without
// tracks and --allow-partial was not given.
var errIncompleteCatalog = errors.New("catalog has moods without tracks")

type importOptions struct {
	fallback     string
	dryRun       bool
	allowPartial bool
	clusters     int
	concurrency  int
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import <playlist-id>",
		Short: "Classify a Spotify playlist by mood and add it to the catalog",
		Long: `Fetches the playlist's tracks and audio features from Spotify, assigns
each playable track a mood (audio-feature clustering, then Last.fm tags,
then --mood) and stores the result in the database catalog. The command
fails when the stored catalog still has a mood without tracks, unless
--allow-partial is given.

Requires SPOTIFY_ID and SPOTIFY_SECRET. LASTFM_API_KEY enables tag-based
classification. DATABASE_URL is required unless --dry-run is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.fallback, "mood", string(mood.Neutral), "mood for tracks that cannot be classified")
	f.BoolVar(&opts.dryRun, "dry-run", false, "classify and print without storing")
	f.BoolVar(&opts.allowPartial, "allow-partial", false, "succeed even if some moods still have no tracks")
	f.IntVar(&opts.clusters, "clusters", clustering.DefaultClusters, "number of k-means clusters")
	f.IntVar(&opts.concurrency, "concurrency", tags.DefaultConcurrency, "concurrent Last.fm lookups")
	return cmd
}

func runImport(cmd *cobra.Command, playlistID string, opts importOptions) error {
	ctx := cmd.Context()
	logger := newLogger(cmd.ErrOrStderr(), false)
	fallback := mood.Mood(strings.ToLower(strings.TrimSpace(opts.fallback)))

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var database *db.DB
	if opts.dryRun {
		database, err = openDB(ctx, cfg)
	} else {
		database, err = requireDB(ctx, cfg)
	}
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
	}

	api, err := auth.Client(ctx, auth.Credentials{
		ClientID:     cfg.SpotifyID,
		ClientSecret: cfg.SpotifySecret,
	})
	if err != nil {
		return fmt.Errorf("authenticating with Spotify: %w", err)
	}

	importOpts := []importer.Option{
		importer.WithClusters(opts.clusters),
		importer.WithLogger(logger),
	}
	lookup, err := tagLookup(cfg, database, opts.concurrency, logger)
	if err != nil {
		return err
	}
	if lookup != nil {
		importOpts = append(importOpts, importer.WithTags(lookup))
	}

	svc := importer.New(spotify.New(api, logger), importOpts...)

	var res *importer.Result
	if opts.dryRun {
		res, err = svc.Classify(ctx, playlistID, fallback)
	} else {
		res, err = svc.Import(ctx, database.Tracks(), playlistID, fallback)
	}
	if err != nil {
		return fmt.Errorf("importing playlist %s: %w", playlistID, err)
	}

	if err := printImport(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	return checkComplete(res, opts.allowPartial)
}

// checkComplete fails an import that left the stored catalog unloadable,
// unless partial catalogs are allowed.
func checkComplete(res *importer.Result, allowPartial bool) error {
	if len(res.EmptyMoods) == 0 || allowPartial {
		return nil
	}
	return fmt.Errorf("%w: %v (import more tracks, or rerun with --allow-partial)", errIncompleteCatalog, res.EmptyMoods)
}

// tagLookup returns the Last.fm tag source, cached in the database when one
// is configured. It returns nil when LASTFM_API_KEY is not set.
func tagLookup(cfg *config.Config, database *db.DB, concurrency int, logger *slog.Logger) (importer.TagLookup, error) {
	if cfg.LastfmAPIKey == "" {
		logger.Info("LASTFM_API_KEY not set, tag classification disabled")
		return nil, nil
	}

	client, err := lastfm.NewClient(cfg.LastfmAPIKey)
	if err != nil {
		return nil, fmt.Errorf("creating Last.fm client: %w", err)
	}
	svc := tags.NewService(client, tags.WithConcurrency(concurrency))
	if database == nil {
		return svc, nil
	}
	return tags.NewCache(database.Tags(), svc, tags.WithLogger(logger)), nil
}

func printImport(w io.Writer, res *importer.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MOOD\tBY\tTRACK")
	for _, c := range res.Tracks {
		fmt.Fprintf(tw, "%s\t%s\t%s - %s\n", c.Mood, c.By, c.Track.Artist, c.Track.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts := res.Counts()
	fmt.Fprintf(w, "\nFetched %d tracks, classified %d, skipped %d without preview\n",
		res.Fetched, len(res.Tracks), res.Skipped)
	for _, m := range mood.All() {
		fmt.Fprintf(w, "  %-10s %d\n", m, counts[m])
	}
	if len(res.EmptyMoods) > 0 {
		fmt.Fprintf(w, "\nStored catalog has no tracks for: %v\n", res.EmptyMoods)
	}
	return nil
}
