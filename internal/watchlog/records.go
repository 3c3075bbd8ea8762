package watchlog

import (
	"context"
	"fmt"

	"watchlog/internal/logging"
)

// SetStartDate records that viewing of a series started on date. An open row
// already holding the same start date is left alone; one holding a different
// start date is closed and a new open row takes the date. Untracked series
// are synced first.
func (m *Manager) SetStartDate(ctx context.Context, seriesID, date string) error {
	date, err := requireDate("start date", date)
	if err != nil {
		return err
	}
	key, err := m.ensureTracked(ctx, seriesID)
	if err != nil {
		return err
	}
	err = m.store.WithTx(ctx, func() error {
		return m.setStart(ctx, key, date)
	})
	if err != nil {
		return fmt.Errorf("set start date of series %d: %w", key, err)
	}
	return nil
}

func (m *Manager) setStart(ctx context.Context, seriesKey int64, date string) error {
	rowID, _, err := m.openRow(ctx, seriesKey, true)
	if err != nil {
		return err
	}
	current, hasStart, err := m.store.GetCell(ctx, tableSeriesWatchlog, rowID, colStartDate)
	if err != nil {
		return err
	}
	if hasStart {
		if current == date {
			return nil
		}
		if err := m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colFinished, 1); err != nil {
			return err
		}
		m.logger.Info("closed watchlog for new start date",
			logging.Int64(logging.FieldSeriesID, seriesKey),
			logging.Int64(logging.FieldWatchlogID, rowID),
			logging.String("previous_start", current),
			logging.String("start", date),
		)
		if rowID, _, err = m.openRow(ctx, seriesKey, true); err != nil {
			return err
		}
	}
	return m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colStartDate, date)
}

// SetFinishDate records that viewing of a series finished on date and closes
// the open row. A date earlier than the open row's start date is rejected
// without changes; historical intervals go through AddCompleteRecord.
func (m *Manager) SetFinishDate(ctx context.Context, seriesID, date string) error {
	date, err := requireDate("finish date", date)
	if err != nil {
		return err
	}
	key, err := m.ensureTracked(ctx, seriesID)
	if err != nil {
		return err
	}
	err = m.store.WithTx(ctx, func() error {
		return m.setFinish(ctx, key, date)
	})
	if err != nil {
		return fmt.Errorf("set finish date of series %d: %w", key, err)
	}
	return nil
}

func (m *Manager) setFinish(ctx context.Context, seriesKey int64, date string) error {
	rowID, exists, err := m.openRow(ctx, seriesKey, false)
	if err != nil {
		return err
	}
	if exists {
		start, hasStart, err := m.store.GetCell(ctx, tableSeriesWatchlog, rowID, colStartDate)
		if err != nil {
			return err
		}
		if hasStart && before(date, start) {
			return invalidArgument("finish date %s precedes start date %s; add a complete record instead", date, start)
		}
	} else if rowID, _, err = m.openRow(ctx, seriesKey, true); err != nil {
		return err
	}
	if err := m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colFinishDate, date); err != nil {
		return err
	}
	return m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colFinished, 1)
}

// AddCompleteRecord inserts a finished watch-log row covering start..finish
// without disturbing an interval already in progress. Either date may be
// empty but not both. The steps run in one transaction; any failure rolls
// back and is returned as a *RollbackError.
func (m *Manager) AddCompleteRecord(ctx context.Context, seriesID, start, finish string) error {
	start, err := optionalDate("start date", start)
	if err != nil {
		return err
	}
	finish, err = optionalDate("finish date", finish)
	if err != nil {
		return err
	}
	if start == "" && finish == "" {
		return invalidArgument("a start or finish date is required")
	}
	if start != "" && finish != "" && before(finish, start) {
		return invalidArgument("finish date %s precedes start date %s", finish, start)
	}
	key, err := m.ensureTracked(ctx, seriesID)
	if err != nil {
		return err
	}

	return m.atomically(ctx, fmt.Sprintf("add complete record for series %d", key), func() error {
		paused, hadOpen, err := m.openRow(ctx, key, false)
		if err != nil {
			return err
		}
		if hadOpen {
			if err := m.store.SetCell(ctx, tableSeriesWatchlog, paused, colFinished, 1); err != nil {
				return err
			}
		}
		if start != "" {
			if err := m.setStart(ctx, key, start); err != nil {
				return err
			}
		}
		if finish != "" {
			if err := m.setFinish(ctx, key, finish); err != nil {
				return err
			}
		} else {
			rowID, ok, err := m.openRow(ctx, key, false)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: no open watchlog to finish for series %d", ErrIntegrity, key)
			}
			if err := m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colFinished, 1); err != nil {
				return err
			}
		}
		if hadOpen {
			return m.reopen(ctx, key, paused)
		}
		return nil
	})
}

// reopen restores a temporarily closed row unless another row is open or the
// row has a finish date.
func (m *Manager) reopen(ctx context.Context, seriesKey, rowID int64) error {
	ids, err := m.openRowIDs(ctx, seriesKey)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return nil
	}
	_, hasFinish, err := m.store.GetCell(ctx, tableSeriesWatchlog, rowID, colFinishDate)
	if err != nil {
		return err
	}
	if hasFinish {
		return nil
	}
	return m.store.SetCell(ctx, tableSeriesWatchlog, rowID, colFinished, 0)
}

// RemoveSeriesWatchlog deletes a watch-log row and reports whether it existed.
func (m *Manager) RemoveSeriesWatchlog(ctx context.Context, id int64) (bool, error) {
	removed, err := m.store.DeleteRow(ctx, tableSeriesWatchlog, id)
	if err != nil {
		return false, fmt.Errorf("remove watchlog %d: %w", id, err)
	}
	if removed {
		m.logger.Info("watchlog removed", logging.Int64(logging.FieldWatchlogID, id))
	}
	return removed, nil
}
