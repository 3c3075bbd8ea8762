package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"watchlog/internal/tvmaze"
	"watchlog/internal/watchlog"
)

// errBack signals that the user entered "b" at a prompt.
var errBack = errors.New("back")

const (
	mainMenuText = `
Options:
 1) View watchlog
 2) Update entry in watchlog
 3) Add entry to watchlog
 4) Remove entry in watchlog
 5) Exit

Enter a number [1-5] to select one of the options above: `
	viewMenuText = `
View watchlog options:
 1) View list of tracked series
 2) View full watchlog
 3) View open watchlog
 4) View episodes
 5) Go back

Enter a number [1-5] to select one of the options above: `
)

func newMenuCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(s *session) error {
				return newMenu(cmd, s.manager).run(cmd.Context())
			})
		},
	}
}

type menu struct {
	in      *bufio.Scanner
	out     io.Writer
	manager *watchlog.Manager
	color   bool
}

func newMenu(cmd *cobra.Command, manager *watchlog.Manager) *menu {
	return &menu{
		in:      bufio.NewScanner(cmd.InOrStdin()),
		out:     cmd.OutOrStdout(),
		manager: manager,
		color:   shouldColorize(cmd.OutOrStdout()),
	}
}

// run loops until the user exits or input ends. Failed actions are reported
// and the loop continues.
func (m *menu) run(ctx context.Context) error {
	inView := false
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if inView {
			fmt.Fprint(m.out, viewMenuText)
		} else {
			fmt.Fprint(m.out, mainMenuText)
		}
		line, err := m.readLine()
		if err != nil {
			return ignoreEOF(err)
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(m.out, "Invalid input (not an integer), please try again.")
			continue
		}

		var actionErr error
		switch {
		case inView && choice == 1:
			actionErr = m.viewSeries(ctx)
		case inView && choice == 2:
			actionErr = m.viewWatchlog(ctx, false)
		case inView && choice == 3:
			actionErr = m.viewWatchlog(ctx, true)
		case inView && choice == 4:
			actionErr = m.viewEpisodes(ctx)
		case inView && choice == 5:
			inView = false
		case !inView && choice == 1:
			inView = true
		case !inView && choice == 2:
			actionErr = m.updateEntry(ctx)
		case !inView && choice == 3:
			actionErr = m.addEntry(ctx)
		case !inView && choice == 4:
			actionErr = m.removeEntry(ctx)
		case !inView && choice == 5:
			return nil
		default:
			fmt.Fprintf(m.out, "Option '%d' does not exist, please try again.\n", choice)
		}

		switch {
		case actionErr == nil, errors.Is(actionErr, errBack):
		case errors.Is(actionErr, io.EOF):
			return nil
		case errors.Is(actionErr, context.Canceled):
			return actionErr
		default:
			printError(m.out, actionErr, m.color)
		}
	}
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (m *menu) readLine() (string, error) {
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(m.in.Text()), nil
}

func (m *menu) prompt(text string) (string, error) {
	fmt.Fprint(m.out, text)
	line, err := m.readLine()
	if err != nil {
		return "", err
	}
	if strings.EqualFold(line, "b") {
		return "", errBack
	}
	return line, nil
}

// askYesNo repeats prompt until the answer is y or n.
func (m *menu) askYesNo(text string) (bool, error) {
	for {
		answer, err := m.prompt(text)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		fmt.Fprintln(m.out, "invalid input, please try again")
	}
}

// askDate offers the current date before asking for one.
func (m *menu) askDate() (string, error) {
	for {
		useToday, err := m.askYesNo("\nWould you like to use the current date? [y/n] [or enter b to go back]: ")
		if err != nil {
			return "", err
		}
		if useToday {
			return m.manager.Today(), nil
		}
		date, err := m.askDateInput()
		if errors.Is(err, errBack) {
			continue
		}
		return date, err
	}
}

func (m *menu) askDateInput() (string, error) {
	for {
		date, err := m.prompt("\nEnter the day in the format 'YYYY-MM-DD' (eg. '2021-02-01' for 1st February 2021) [or enter b to go back]: ")
		if err != nil {
			return "", err
		}
		if watchlog.ValidDate(date) {
			return date, nil
		}
		fmt.Fprintln(m.out, "invalid date, please try again")
	}
}

// askWatchlogID asks for the id of an existing entry, optionally only open ones.
func (m *menu) askWatchlogID(ctx context.Context, openOnly bool) (int64, error) {
	valid, err := m.manager.SeriesWatchlogIDs(ctx, openOnly)
	if err != nil {
		return 0, err
	}
	for {
		input, err := m.prompt("\nEnter the watchlog id of the entry you would like to select [or enter b to go back]: ")
		if err != nil {
			return 0, err
		}
		id, convErr := strconv.ParseInt(input, 10, 64)
		if convErr == nil && slices.Contains(valid, id) {
			return id, nil
		}
		fmt.Fprintln(m.out, "invalid ID, please try again")
	}
}

// askSeriesID asks for a TVMaze or IMDb id the catalog knows.
func (m *menu) askSeriesID(ctx context.Context) (string, error) {
	for {
		input, err := m.prompt("\nEnter the series id (TVMaze or IMDb id) of the series you would like to add a watchlog for [or enter b to go back]: ")
		if err != nil {
			return "", err
		}
		if tvmaze.IsIMDbID(input) {
			native, err := m.manager.ResolveIMDb(ctx, input)
			if err == nil {
				return native, nil
			}
			if !errors.Is(err, watchlog.ErrInvalidID) {
				return "", err
			}
		} else {
			ok, err := m.manager.ValidateSeriesID(ctx, input)
			if err != nil {
				return "", err
			}
			if ok {
				return input, nil
			}
		}
		fmt.Fprintln(m.out, "invalid ID, please try again")
	}
}

func (m *menu) viewSeries(ctx context.Context) error {
	rows, err := m.manager.SeriesRows(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, renderSeriesTable(rows))
	return nil
}

func (m *menu) viewWatchlog(ctx context.Context, openOnly bool) error {
	rows, err := m.manager.SeriesWatchlogRows(ctx, openOnly)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, renderWatchlogTable(rows, m.color))
	return nil
}

func (m *menu) viewEpisodes(ctx context.Context) error {
	rows, err := m.manager.EpisodeRows(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, renderEpisodeTable(rows))
	return nil
}

func (m *menu) updateEntry(ctx context.Context) error {
	if err := m.viewWatchlog(ctx, true); err != nil {
		return err
	}
	id, err := m.askWatchlogID(ctx, true)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nUpdating finish date:")
	date, err := m.askDate()
	if err != nil {
		return err
	}
	seriesID, ok, err := m.manager.SeriesIDOf(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("watchlog %d: %w", id, watchlog.ErrNotFound)
	}
	if err := m.manager.SetFinishDate(ctx, seriesID, date); err != nil {
		return fmt.Errorf("update watchlog %d: %w", id, err)
	}
	fmt.Fprintln(m.out, "Successfully updated entry.")
	return nil
}

func (m *menu) addEntry(ctx context.Context) error {
	fmt.Fprintln(m.out, "\nCurrently tracked series:")
	if err := m.viewSeries(ctx); err != nil {
		return err
	}
	seriesID, err := m.askSeriesID(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "\nStart date:")
	start, err := m.askDate()
	if err != nil {
		return err
	}

	var finish string
	complete := false
	for {
		withFinish, err := m.askYesNo("\nWould you like to include a finish date? [y/n] [or enter b to go back]: ")
		if err != nil {
			return err
		}
		if withFinish {
			fmt.Fprintln(m.out, "Finish date:")
			finish, err = m.askDate()
			if errors.Is(err, errBack) {
				continue
			}
			if err != nil {
				return err
			}
			complete = true
			break
		}
		complete, err = m.askYesNo("\nIs this watchlog entry complete? [y/n] [or enter b to go back]: ")
		if errors.Is(err, errBack) {
			continue
		}
		if err != nil {
			return err
		}
		break
	}

	if complete {
		err = m.manager.AddCompleteRecord(ctx, seriesID, start, finish)
		if errors.Is(err, watchlog.ErrRollback) {
			return fmt.Errorf("action failed, no changes were made: %w", err)
		}
	} else {
		err = m.manager.SetStartDate(ctx, seriesID, start)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, "Successfully updated entry.")
	return nil
}

func (m *menu) removeEntry(ctx context.Context) error {
	if err := m.viewWatchlog(ctx, false); err != nil {
		return err
	}
	id, err := m.askWatchlogID(ctx, false)
	if err != nil {
		return err
	}
	confirmed, err := m.askYesNo("\nWould you like to continue? [y/n] [or enter b to go back]: ")
	if err != nil {
		return err
	}
	if !confirmed {
		fmt.Fprintln(m.out, "Aborted deletion")
		return nil
	}
	if _, err := m.manager.RemoveSeriesWatchlog(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "(%d) deleted from watchlog successfully\n", id)
	return nil
}
