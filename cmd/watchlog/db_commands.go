package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database maintenance",
	}
	dbCmd.AddCommand(newDBHealthCommand(ctx))
	return dbCmd
}

type healthReport struct {
	Path          string         `json:"path"`
	Exists        bool           `json:"exists"`
	Readable      bool           `json:"readable"`
	Tables        []string       `json:"tables"`
	MissingTables []string       `json:"missing_tables"`
	RowCounts     map[string]int `json:"row_counts"`
	IntegrityOK   bool           `json:"integrity_ok"`
	Healthy       bool           `json:"healthy"`
	Error         string         `json:"error,omitempty"`
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check database health (tables, row counts, integrity)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				health, err := s.manager.Health(cmd.Context())
				if err != nil && health.Error == "" {
					return err
				}
				report := healthReport{
					Path:          health.Path,
					Exists:        health.Exists,
					Readable:      health.Readable,
					Tables:        health.Tables,
					MissingTables: health.MissingTables,
					RowCounts:     health.RowCounts,
					IntegrityOK:   health.IntegrityOK,
					Healthy:       health.Healthy(),
					Error:         health.Error,
				}
				if ctx.JSONMode() {
					return writeJSON(cmd, report)
				}

				out := cmd.OutOrStdout()
				color := shouldColorize(out)
				fmt.Fprintf(out, "Database path: %s\n", report.Path)
				fmt.Fprintf(out, "Database exists: %s\n", yesNo(report.Exists))
				fmt.Fprintf(out, "Readable: %s\n", yesNo(report.Readable))
				if len(report.MissingTables) > 0 {
					fmt.Fprintf(out, "Missing tables: %s\n", strings.Join(report.MissingTables, ", "))
				} else {
					fmt.Fprintln(out, "Missing tables: none")
				}
				tables := make([]string, 0, len(report.RowCounts))
				for table := range report.RowCounts {
					tables = append(tables, table)
				}
				sort.Strings(tables)
				for _, table := range tables {
					fmt.Fprintf(out, "Rows in %s: %d\n", table, report.RowCounts[table])
				}
				fmt.Fprintf(out, "Integrity check: %s\n", yesNo(report.IntegrityOK))
				if report.Error != "" {
					fmt.Fprintf(out, "Error: %s\n", report.Error)
				}
				if report.Healthy {
					fmt.Fprintln(out, colorize("Database healthy", ansiGreen, color))
				} else {
					fmt.Fprintln(out, colorize("Database unhealthy", ansiRed, color))
				}
				return nil
			})
		},
	}
}
