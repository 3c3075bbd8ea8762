package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"watchlog/internal/watchlog"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

func isTerminal(stream any) bool {
	file, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}

// isInteractive reports whether both ends of the session are a terminal.
func isInteractive(in io.Reader, out io.Writer) bool {
	return isTerminal(in) && isTerminal(out)
}

func colorize(s, color string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ansiReset
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func watchlogState(finished bool, colorEnabled bool) string {
	if finished {
		return colorize("finished", ansiGreen, colorEnabled)
	}
	return colorize("watching", ansiYellow, colorEnabled)
}

func renderSeriesTable(rows []watchlog.SeriesRow) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			row.ID,
			row.Name,
			dash(row.Status),
			dash(row.PremiereDate),
			dash(row.EndedDate),
			strconv.Itoa(row.Episodes),
		})
	}
	return renderTable(
		[]string{"ID", "Name", "Status", "Premiered", "Ended", "Episodes"},
		data,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func renderEpisodeTable(rows []watchlog.EpisodeRow) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			row.ID,
			row.SeriesName,
			row.Season,
			dash(row.Number),
			row.Name,
			dash(row.AirDate),
			dash(row.Runtime),
		})
	}
	return renderTable(
		[]string{"ID", "Series", "Season", "Episode", "Name", "Aired", "Runtime"},
		data,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft, alignLeft, alignRight},
	)
}

func renderWatchlogTable(rows []watchlog.SeriesWatchlogRow, colorEnabled bool) string {
	data := make([][]string, 0, len(rows))
	for _, row := range rows {
		data = append(data, []string{
			strconv.FormatInt(row.ID, 10),
			row.SeriesID,
			row.SeriesName,
			dash(row.StartDate),
			dash(row.FinishDate),
			watchlogState(row.Finished, colorEnabled),
		})
	}
	return renderTable(
		[]string{"ID", "Series ID", "Series", "Started", "Finished", "State"},
		data,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func printError(out io.Writer, err error, colorEnabled bool) {
	fmt.Fprintln(out, colorize("Error: "+err.Error(), ansiRed, colorEnabled))
}
