package watchlog

import (
	"context"
	"fmt"

	"watchlog/internal/sqlstore"
)

// SeriesIDs lists the ids of all tracked series in ascending order.
func (m *Manager) SeriesIDs(ctx context.Context) ([]string, error) {
	ids, err := m.store.PrimaryKeys(ctx, tableSeries)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return ids, nil
}

// EpisodeIDs lists the ids of all stored episodes in ascending order.
func (m *Manager) EpisodeIDs(ctx context.Context) ([]string, error) {
	ids, err := m.store.PrimaryKeys(ctx, tableEpisode)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	return ids, nil
}

// SeriesWatchlogIDs lists watch-log row ids, optionally only the open ones.
func (m *Manager) SeriesWatchlogIDs(ctx context.Context, openOnly bool) ([]int64, error) {
	var filter sqlstore.Filter
	if openOnly {
		filter = sqlstore.Where(sqlstore.Eq(colFinished, 0))
	}
	keys, err := m.store.PrimaryKeysWhere(ctx, tableSeriesWatchlog, filter)
	if err != nil {
		return nil, fmt.Errorf("list watchlogs: %w", err)
	}
	return parseKeys(keys)
}

// SeriesWatchlogExists reports whether a watch-log row with id exists.
func (m *Manager) SeriesWatchlogExists(ctx context.Context, id int64) (bool, error) {
	exists, err := m.store.HasPrimaryKey(ctx, tableSeriesWatchlog, id)
	if err != nil {
		return false, fmt.Errorf("check watchlog %d: %w", id, err)
	}
	return exists, nil
}

// StartDate returns the start date of a watch-log row; ok is false when the
// row is missing or has no start date.
func (m *Manager) StartDate(ctx context.Context, id int64) (string, bool, error) {
	return m.watchlogCell(ctx, id, colStartDate)
}

// FinishDate returns the finish date of a watch-log row; ok is false when the
// row is missing or has no finish date.
func (m *Manager) FinishDate(ctx context.Context, id int64) (string, bool, error) {
	return m.watchlogCell(ctx, id, colFinishDate)
}

// SeriesIDOf returns the series a watch-log row belongs to.
func (m *Manager) SeriesIDOf(ctx context.Context, id int64) (string, bool, error) {
	return m.watchlogCell(ctx, id, colSeriesID)
}

// Finished reports whether a watch-log row is closed.
func (m *Manager) Finished(ctx context.Context, id int64) (bool, error) {
	value, ok, err := m.watchlogCell(ctx, id, colFinished)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("watchlog %d: %w", id, ErrNotFound)
	}
	return value == "1", nil
}

func (m *Manager) watchlogCell(ctx context.Context, id int64, column string) (string, bool, error) {
	value, ok, err := m.store.GetCell(ctx, tableSeriesWatchlog, id, column)
	if err != nil {
		return "", false, fmt.Errorf("read watchlog %d: %w", id, err)
	}
	return value, ok, nil
}

// IdenticalSeriesWatchlogExists reports whether a row with exactly these
// values exists. Empty dates match NULL.
func (m *Manager) IdenticalSeriesWatchlogExists(ctx context.Context, seriesID, start, finish string, finished bool) (bool, error) {
	key, ok := parseSeriesKey(seriesID)
	if !ok {
		return false, nil
	}
	filter := sqlstore.Where(
		sqlstore.Eq(colSeriesID, key),
		sqlstore.Eq(colStartDate, nullable(start)),
		sqlstore.Eq(colFinishDate, nullable(finish)),
		sqlstore.Eq(colFinished, boolToInt(finished)),
	)
	count, err := m.store.Count(ctx, tableSeriesWatchlog, filter)
	if err != nil {
		return false, fmt.Errorf("match watchlog of series %d: %w", key, err)
	}
	return count >= 1, nil
}

// SeriesInfo is the stored catalog data of one series. Absent values are "".
type SeriesInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	PremiereDate string `json:"premiere_date"`
	EndedDate    string `json:"ended_date"`
}

// SeriesInfo returns the stored catalog data of a tracked series.
func (m *Manager) SeriesInfo(ctx context.Context, seriesID string) (SeriesInfo, error) {
	key, ok := parseSeriesKey(seriesID)
	if !ok {
		return SeriesInfo{}, fmt.Errorf("series %q: %w", seriesID, ErrNotFound)
	}
	values, found, err := m.readRow(ctx, tableSeries, key, colName, colStatus, colPremiereDate, colEndedDate)
	if err != nil {
		return SeriesInfo{}, err
	}
	if !found {
		return SeriesInfo{}, fmt.Errorf("series %d: %w", key, ErrNotFound)
	}
	return SeriesInfo{
		ID:           formatKey(key),
		Name:         values[0],
		Status:       values[1],
		PremiereDate: values[2],
		EndedDate:    values[3],
	}, nil
}

// readRow reads columns of one row; NULL cells come back as "".
func (m *Manager) readRow(ctx context.Context, table string, key any, columns ...string) ([]string, bool, error) {
	exists, err := m.store.HasPrimaryKey(ctx, table, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s %v: %w", table, key, err)
	}
	if !exists {
		return nil, false, nil
	}
	values := make([]string, len(columns))
	for i, column := range columns {
		value, _, err := m.store.GetCell(ctx, table, key, column)
		if err != nil {
			return nil, false, fmt.Errorf("read %s %v: %w", table, key, err)
		}
		values[i] = value
	}
	return values, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
