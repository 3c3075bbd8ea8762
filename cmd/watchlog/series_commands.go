package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"watchlog/internal/watchlog"
)

func newSeriesCommand(ctx *commandContext) *cobra.Command {
	seriesCmd := &cobra.Command{
		Use:   "series",
		Short: "Inspect and sync tracked series",
	}

	seriesCmd.AddCommand(newSeriesListCommand(ctx))
	seriesCmd.AddCommand(newSeriesSyncCommand(ctx))
	seriesCmd.AddCommand(newSeriesShowCommand(ctx))
	seriesCmd.AddCommand(newSeriesFindCommand(ctx))

	return seriesCmd
}

func newSeriesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				rows, err := m.SeriesRows(c)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, rows)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderSeriesTable(rows))
				return nil
			})
		},
	}
}

func newSeriesSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <tvmaze-id|imdb-id>...",
		Short: "Fetch series and episodes from TVMaze and store them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				out := cmd.OutOrStdout()
				for _, id := range args {
					show, err := m.SyncSeries(c, id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "Synced %s (%s): %d episodes\n", show.ID(), show.Name(), show.NumEpisodes())
				}
				return nil
			})
		},
	}
}

type seriesDetails struct {
	watchlog.SeriesInfo
	Episodes      int    `json:"episodes"`
	OpenWatchlog  *int64 `json:"open_watchlog_id,omitempty"`
	WatchlogCount int    `json:"watchlog_count"`
}

func newSeriesShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <series-id>",
		Short: "Show stored details and watch-log state of a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				info, err := m.SeriesInfo(c, args[0])
				if err != nil {
					if errors.Is(err, watchlog.ErrNotFound) {
						return fmt.Errorf("%w (run `watchlog series sync %s` first)", err, args[0])
					}
					return err
				}
				details := seriesDetails{SeriesInfo: info}
				episodes, err := m.EpisodeRows(c, info.ID)
				if err != nil {
					return err
				}
				details.Episodes = len(episodes)
				logs, err := m.SeriesWatchlogRows(c, false)
				if err != nil {
					return err
				}
				for _, row := range logs {
					if row.SeriesID == info.ID {
						details.WatchlogCount++
					}
				}
				if id, ok, err := m.OpenSeriesWatchlog(c, info.ID); err != nil {
					return err
				} else if ok {
					details.OpenWatchlog = &id
				}

				if ctx.JSONMode() {
					return writeJSON(cmd, details)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Series:     %s (%s)\n", info.Name, info.ID)
				fmt.Fprintf(out, "Status:     %s\n", dash(info.Status))
				fmt.Fprintf(out, "Premiered:  %s\n", dash(info.PremiereDate))
				fmt.Fprintf(out, "Ended:      %s\n", dash(info.EndedDate))
				fmt.Fprintf(out, "Episodes:   %d\n", details.Episodes)
				fmt.Fprintf(out, "Watch logs: %d\n", details.WatchlogCount)
				if details.OpenWatchlog != nil {
					fmt.Fprintf(out, "Watching:   yes (entry %s)\n", strconv.FormatInt(*details.OpenWatchlog, 10))
				} else {
					fmt.Fprintln(out, "Watching:   no")
				}
				return nil
			})
		},
	}
}

func newSeriesFindCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy-search tracked series by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				matches, err := m.FindSeries(c, args[0])
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, matches)
				}
				rows := make([][]string, 0, len(matches))
				for _, match := range matches {
					rows = append(rows, []string{match.ID, match.Name, strconv.Itoa(match.Distance)})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Distance"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}

func newEpisodesCommand(ctx *commandContext) *cobra.Command {
	episodesCmd := &cobra.Command{
		Use:   "episodes",
		Short: "Inspect stored episodes",
	}

	var seriesID string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				rows, err := m.EpisodeRows(c, seriesID)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, rows)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderEpisodeTable(rows))
				return nil
			})
		},
	}
	listCmd.Flags().StringVar(&seriesID, "series", "", "Only list episodes of this series id")
	episodesCmd.AddCommand(listCmd)

	return episodesCmd
}
