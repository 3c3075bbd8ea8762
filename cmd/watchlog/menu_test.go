package main

import (
	"strings"
	"testing"

	"watchlog/internal/watchlog"
)

func TestMenuAddEntryStartsWatching(t *testing.T) {
	env := setupCLITestEnv(t)

	script := strings.Join([]string{
		"3", // add entry
		"x", // not a valid id
		"6", // series
		"y", // start today
		"n", // no finish date
		"n", // not complete
		"1", // view menu
		"2", // full watchlog
		"5", // back
		"5", // exit
	}, "\n") + "\n"
	out, _, err := runCLI(t, []string{"menu"}, env.configPath, script)
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	requireContains(t, out, "invalid ID, please try again")
	requireContains(t, out, "Successfully updated entry.")
	requireContains(t, out, "Show 6")

	var rows []watchlog.SeriesWatchlogRow
	decodeJSON(t, env.mustRun(t, "--json", "log", "list", "--open"), &rows)
	if len(rows) != 1 || rows[0].SeriesID != "6" || rows[0].StartDate == "" {
		t.Fatalf("unexpected open rows: %+v", rows)
	}
}

func TestMenuAddCompleteEntry(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "log", "start", "6", "2021-01-01")

	script := strings.Join([]string{
		"3", "6",
		"n", "2020-01-01", // start
		"y",               // include finish
		"n", "2020-02-01", // finish
		"5",
	}, "\n") + "\n"
	out, _, err := runCLI(t, []string{"menu"}, env.configPath, script)
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	requireContains(t, out, "Successfully updated entry.")

	var rows []watchlog.SeriesWatchlogRow
	decodeJSON(t, env.mustRun(t, "--json", "log", "list"), &rows)
	if len(rows) != 2 {
		t.Fatalf("expected paused entry plus complete record, got %+v", rows)
	}
	decodeJSON(t, env.mustRun(t, "--json", "log", "list", "--open"), &rows)
	if len(rows) != 1 || rows[0].StartDate != "2021-01-01" {
		t.Fatalf("expected original entry to stay open, got %+v", rows)
	}
}

func TestMenuUpdateEntrySetsFinishDate(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "log", "start", "6", "2021-01-01")

	script := "2\n1\nn\nnot-a-date\n2021-05-05\n5\n"
	out, _, err := runCLI(t, []string{"menu"}, env.configPath, script)
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	requireContains(t, out, "invalid date, please try again")
	requireContains(t, out, "Successfully updated entry.")

	var rows []watchlog.SeriesWatchlogRow
	decodeJSON(t, env.mustRun(t, "--json", "log", "list"), &rows)
	if len(rows) != 1 || rows[0].FinishDate != "2021-05-05" || !rows[0].Finished {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestMenuRemoveAndInvalidInput(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "log", "start", "6", "2021-01-01")

	script := "abc\n9\n4\n1\nn\n4\nb\n4\n1\ny\n5\n"
	out, _, err := runCLI(t, []string{"menu"}, env.configPath, script)
	if err != nil {
		t.Fatalf("menu failed: %v", err)
	}
	requireContains(t, out, "Invalid input (not an integer), please try again.")
	requireContains(t, out, "Option '9' does not exist, please try again.")
	requireContains(t, out, "Aborted deletion")
	requireContains(t, out, "(1) deleted from watchlog successfully")

	var rows []watchlog.SeriesWatchlogRow
	decodeJSON(t, env.mustRun(t, "--json", "log", "list"), &rows)
	if len(rows) != 0 {
		t.Fatalf("expected entry removed, got %+v", rows)
	}
}

func TestMenuStopsAtEndOfInput(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"menu"}, env.configPath, "1\n"); err != nil {
		t.Fatalf("menu should exit cleanly at end of input: %v", err)
	}
	if _, _, err := runCLI(t, []string{"menu"}, env.configPath, "3\n6\n"); err != nil {
		t.Fatalf("menu should exit cleanly mid-prompt: %v", err)
	}
}
