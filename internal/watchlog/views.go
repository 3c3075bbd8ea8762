package watchlog

import (
	"context"
	"fmt"

	"watchlog/internal/sqlstore"
)

// SeriesRow is one tracked series with its stored episode count.
type SeriesRow struct {
	SeriesInfo
	Episodes int `json:"episodes"`
}

// EpisodeRow is one stored episode joined with its series name.
type EpisodeRow struct {
	ID         string `json:"id"`
	SeriesID   string `json:"series_id"`
	SeriesName string `json:"series_name"`
	Season     string `json:"season"`
	Number     string `json:"number"`
	Name       string `json:"name"`
	AirDate    string `json:"airdate"`
	Runtime    string `json:"runtime"`
}

// SeriesWatchlogRow is one series watch-log row joined with its series name.
type SeriesWatchlogRow struct {
	ID         int64  `json:"id"`
	SeriesID   string `json:"series_id"`
	SeriesName string `json:"series_name"`
	StartDate  string `json:"start_date"`
	FinishDate string `json:"finish_date"`
	Finished   bool   `json:"finished"`
}

// EpisodeWatchlogRow is one episode watch-log row joined with its episode
// and series names.
type EpisodeWatchlogRow struct {
	ID          int64  `json:"id"`
	EpisodeID   string `json:"episode_id"`
	EpisodeName string `json:"episode_name"`
	SeriesName  string `json:"series_name"`
	StartDate   string `json:"start_date"`
	FinishDate  string `json:"finish_date"`
	Finished    bool   `json:"finished"`
}

// SeriesRows returns every tracked series.
func (m *Manager) SeriesRows(ctx context.Context) ([]SeriesRow, error) {
	ids, err := m.SeriesIDs(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]SeriesRow, 0, len(ids))
	for _, id := range ids {
		info, err := m.SeriesInfo(ctx, id)
		if err != nil {
			return nil, err
		}
		count, err := m.store.Count(ctx, tableEpisode, sqlstore.Where(sqlstore.Eq(colSeriesID, id)))
		if err != nil {
			return nil, fmt.Errorf("count episodes of series %s: %w", id, err)
		}
		rows = append(rows, SeriesRow{SeriesInfo: info, Episodes: count})
	}
	return rows, nil
}

// EpisodeRows returns stored episodes, limited to one series when seriesID
// is not empty.
func (m *Manager) EpisodeRows(ctx context.Context, seriesID string) ([]EpisodeRow, error) {
	var filter sqlstore.Filter
	if seriesID != "" {
		key, ok := parseSeriesKey(seriesID)
		if !ok {
			return nil, fmt.Errorf("series %q: %w", seriesID, ErrNotFound)
		}
		filter = sqlstore.Where(sqlstore.Eq(colSeriesID, key))
	}
	ids, err := m.store.PrimaryKeysWhere(ctx, tableEpisode, filter)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	names := make(map[string]string)
	rows := make([]EpisodeRow, 0, len(ids))
	for _, id := range ids {
		values, _, err := m.readRow(ctx, tableEpisode, id, colSeriesID, colSeasonNum, colEpisodeNum, colName, colAirdate, colRuntime)
		if err != nil {
			return nil, err
		}
		seriesName, err := m.seriesName(ctx, names, values[0])
		if err != nil {
			return nil, fmt.Errorf("episode %s: %w", id, err)
		}
		rows = append(rows, EpisodeRow{
			ID:         id,
			SeriesID:   values[0],
			SeriesName: seriesName,
			Season:     values[1],
			Number:     values[2],
			Name:       values[3],
			AirDate:    values[4],
			Runtime:    values[5],
		})
	}
	return rows, nil
}

// SeriesWatchlogRows returns series watch-log rows, optionally only open ones.
func (m *Manager) SeriesWatchlogRows(ctx context.Context, openOnly bool) ([]SeriesWatchlogRow, error) {
	ids, err := m.SeriesWatchlogIDs(ctx, openOnly)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	rows := make([]SeriesWatchlogRow, 0, len(ids))
	for _, id := range ids {
		values, _, err := m.readRow(ctx, tableSeriesWatchlog, id, colSeriesID, colStartDate, colFinishDate, colFinished)
		if err != nil {
			return nil, err
		}
		seriesName, err := m.seriesName(ctx, names, values[0])
		if err != nil {
			return nil, fmt.Errorf("watchlog %d: %w", id, err)
		}
		rows = append(rows, SeriesWatchlogRow{
			ID:         id,
			SeriesID:   values[0],
			SeriesName: seriesName,
			StartDate:  values[1],
			FinishDate: values[2],
			Finished:   values[3] == "1",
		})
	}
	return rows, nil
}

// EpisodeWatchlogRows returns every episode watch-log row.
func (m *Manager) EpisodeWatchlogRows(ctx context.Context) ([]EpisodeWatchlogRow, error) {
	keys, err := m.store.PrimaryKeys(ctx, tableEpisodeWatchlog)
	if err != nil {
		return nil, fmt.Errorf("list episode watchlogs: %w", err)
	}
	ids, err := parseKeys(keys)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	rows := make([]EpisodeWatchlogRow, 0, len(ids))
	for _, id := range ids {
		values, _, err := m.readRow(ctx, tableEpisodeWatchlog, id, colEpisodeID, colStartDate, colFinishDate, colFinished)
		if err != nil {
			return nil, err
		}
		episode, found, err := m.readRow(ctx, tableEpisode, values[0], colName, colSeriesID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("episode watchlog %d: %w: episode %s is missing", id, ErrIntegrity, values[0])
		}
		seriesName, err := m.seriesName(ctx, names, episode[1])
		if err != nil {
			return nil, fmt.Errorf("episode watchlog %d: %w", id, err)
		}
		rows = append(rows, EpisodeWatchlogRow{
			ID:          id,
			EpisodeID:   values[0],
			EpisodeName: episode[0],
			SeriesName:  seriesName,
			StartDate:   values[1],
			FinishDate:  values[2],
			Finished:    values[3] == "1",
		})
	}
	return rows, nil
}

// seriesName resolves a series id to its name, memoizing lookups in cache.
func (m *Manager) seriesName(ctx context.Context, cache map[string]string, seriesID string) (string, error) {
	if name, ok := cache[seriesID]; ok {
		return name, nil
	}
	values, found, err := m.readRow(ctx, tableSeries, seriesID, colName)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: series %q is missing", ErrIntegrity, seriesID)
	}
	cache[seriesID] = values[0]
	return values[0], nil
}
