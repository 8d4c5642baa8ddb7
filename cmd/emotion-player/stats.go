package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/justestif/go-emotion-player/internal/config"
	"github.com/justestif/go-emotion-player/internal/tags"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show how often each mood was played",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := requireDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			counts, err := database.Plays().CountByMood(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(counts) == 0 {
				fmt.Fprintln(w, "No plays recorded yet.")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MOOD\tPLAYS")
			for _, c := range counts {
				fmt.Fprintf(tw, "%s\t%d\n", c.Mood, c.Plays)
			}
			return tw.Flush()
		},
	}
}

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show the latest tracks played in a browser session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sessionID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid session id %q: %w", args[0], err)
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

			plays, err := database.Plays().RecentForSession(ctx, sessionID, limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PLAYED AT\tMOOD\tTRACK\tREASON")
			for _, p := range plays {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.PlayedAt.Local().Format(time.DateTime), p.Mood, p.TrackID, p.Reason)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of plays to show")
	return cmd
}

func newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the Last.fm tag cache",
	}

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete cached tags older than the cache TTL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			database, err := requireDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := database.Tags().DeleteStale(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cached tags\n", n)
			return nil
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", tags.CacheTTL, "age after which cached tags are removed")

	cmd.AddCommand(prune)
	return cmd
}
