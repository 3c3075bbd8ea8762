package watchlog

import (
	"context"
	"fmt"

	"watchlog/internal/logging"
	"watchlog/internal/sqlstore"
)

func openFilter(seriesKey int64) sqlstore.Filter {
	return sqlstore.Where(sqlstore.Eq(colSeriesID, seriesKey), sqlstore.Eq(colFinished, 0))
}

func (m *Manager) openRowIDs(ctx context.Context, seriesKey int64) ([]int64, error) {
	keys, err := m.store.PrimaryKeysWhere(ctx, tableSeriesWatchlog, openFilter(seriesKey))
	if err != nil {
		return nil, fmt.Errorf("list open watchlogs of series %d: %w", seriesKey, err)
	}
	return parseKeys(keys)
}

// OpenSeriesWatchlog returns the newest open watch-log row of a series. It
// never writes, even when several rows are open.
func (m *Manager) OpenSeriesWatchlog(ctx context.Context, seriesID string) (int64, bool, error) {
	key, ok := parseSeriesKey(seriesID)
	if !ok {
		return 0, false, nil
	}
	ids, err := m.openRowIDs(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[len(ids)-1], true, nil
}

// HasOpenSeriesWatchlog reports whether the series has an open watch-log row.
func (m *Manager) HasOpenSeriesWatchlog(ctx context.Context, seriesID string) (bool, error) {
	_, ok, err := m.OpenSeriesWatchlog(ctx, seriesID)
	return ok, err
}

// RepairOpenSeriesWatchlogs closes every open row of a series except the most
// recently created one and returns how many rows it closed.
func (m *Manager) RepairOpenSeriesWatchlogs(ctx context.Context, seriesID string) (int, error) {
	key, ok := parseSeriesKey(seriesID)
	if !ok {
		return 0, nil
	}
	return m.repairOpenRows(ctx, key)
}

func (m *Manager) repairOpenRows(ctx context.Context, seriesKey int64) (int, error) {
	ids, err := m.openRowIDs(ctx, seriesKey)
	if err != nil {
		return 0, err
	}
	if len(ids) < 2 {
		return 0, nil
	}
	stale := ids[:len(ids)-1]
	for _, id := range stale {
		if err := m.store.SetCell(ctx, tableSeriesWatchlog, id, colFinished, 1); err != nil {
			return 0, fmt.Errorf("close stale watchlog %d: %w", id, err)
		}
	}
	logging.WarnWithContext(m.logger, "closed duplicate open watchlogs", "watchlog_repair",
		logging.Int64(logging.FieldSeriesID, seriesKey),
		logging.Int64(logging.FieldWatchlogID, ids[len(ids)-1]),
		logging.Int("closed", len(stale)),
		logging.String(logging.FieldImpact, "older open entries were marked finished"),
		logging.String(logging.FieldErrorHint, "review the series with 'watchlog log list'"),
	)
	return len(stale), nil
}

// openRow repairs the series' open rows and returns the remaining one. When
// none is open and forceful is set, a fresh row is created.
func (m *Manager) openRow(ctx context.Context, seriesKey int64, forceful bool) (int64, bool, error) {
	if _, err := m.repairOpenRows(ctx, seriesKey); err != nil {
		return 0, false, err
	}
	ids, err := m.openRowIDs(ctx, seriesKey)
	if err != nil {
		return 0, false, err
	}
	if len(ids) > 0 {
		return ids[len(ids)-1], true, nil
	}
	if !forceful {
		return 0, false, nil
	}
	id, err := m.store.InsertRecord(ctx, tableSeriesWatchlog, colSeriesID, seriesKey)
	if err != nil {
		return 0, false, fmt.Errorf("open watchlog for series %d: %w", seriesKey, err)
	}
	m.logger.Debug("opened watchlog",
		logging.Int64(logging.FieldSeriesID, seriesKey),
		logging.Int64(logging.FieldWatchlogID, id),
	)
	return id, true, nil
}
