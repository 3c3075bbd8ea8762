package main

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"watchlog/internal/watchlog"
)

func newLogCommand(ctx *commandContext) *cobra.Command {
	logCmd := &cobra.Command{
		Use:   "log",
		Short: "Record and inspect series watch logs",
	}

	logCmd.AddCommand(newLogListCommand(ctx))
	logCmd.AddCommand(newLogStartCommand(ctx))
	logCmd.AddCommand(newLogFinishCommand(ctx))
	logCmd.AddCommand(newLogAddCommand(ctx))
	logCmd.AddCommand(newLogRemoveCommand(ctx))

	return logCmd
}

func newLogListCommand(ctx *commandContext) *cobra.Command {
	var openOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List series watch logs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				rows, err := m.SeriesWatchlogRows(c, openOnly)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, rows)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderWatchlogTable(rows, shouldColorize(cmd.OutOrStdout())))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&openOnly, "open", false, "Only list entries still being watched")
	return cmd
}

func dateArg(args []string, m *watchlog.Manager) string {
	if len(args) > 1 {
		return args[1]
	}
	return m.Today()
}

func newLogStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start <series-id> [YYYY-MM-DD]",
		Short: "Record that you started watching a series (default today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				date := dateArg(args, m)
				if err := m.SetStartDate(c, args[0], date); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started series %s on %s\n", args[0], date)
				return nil
			})
		},
	}
}

func newLogFinishCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "finish <series-id> [YYYY-MM-DD]",
		Short: "Record that you finished watching a series (default today)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				date := dateArg(args, m)
				if err := m.SetFinishDate(c, args[0], date); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Finished series %s on %s\n", args[0], date)
				return nil
			})
		},
	}
}

func newLogAddCommand(ctx *commandContext) *cobra.Command {
	var start, finish string
	cmd := &cobra.Command{
		Use:   "add <series-id>",
		Short: "Add a finished watch log for a past viewing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				if err := m.AddCompleteRecord(c, args[0], start, finish); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added watch log for series %s (%s to %s)\n", args[0], dash(start), dash(finish))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&finish, "finish", "", "Finish date (YYYY-MM-DD)")
	return cmd
}

func newLogRemoveCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool
	cmd := &cobra.Command{
		Use:   "remove <watchlog-id>",
		Short: "Delete a watch-log entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
			if err != nil {
				return fmt.Errorf("invalid watchlog id %q", args[0])
			}
			return ctx.withManager(cmd, func(c context.Context, m *watchlog.Manager) error {
				out := cmd.OutOrStdout()
				exists, err := m.SeriesWatchlogExists(c, id)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("watchlog %d: %w", id, watchlog.ErrNotFound)
				}
				if !assumeYes {
					fmt.Fprintf(out, "Remove watchlog %d? [y/n]: ", id)
					answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if strings.ToLower(strings.TrimSpace(answer)) != "y" {
						fmt.Fprintln(out, "Aborted deletion")
						return nil
					}
				}
				if _, err := m.RemoveSeriesWatchlog(c, id); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed watchlog %d\n", id)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}
