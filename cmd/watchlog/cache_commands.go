package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the TVMaze response cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop every cached TVMaze response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				out := cmd.OutOrStdout()
				if !s.cache.Enabled() {
					fmt.Fprintln(out, "Catalog cache is disabled")
					return nil
				}
				removed, err := s.cache.Purge()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d cached responses\n", removed)
				return nil
			})
		},
	})
	return cacheCmd
}
