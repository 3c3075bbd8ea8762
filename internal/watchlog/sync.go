package watchlog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"watchlog/internal/logging"
	"watchlog/internal/tvmaze"
)

// SyncSeries loads a show from the catalog and upserts its series row and
// every episode row in one transaction. IMDb ids (tt…) are resolved to the
// native id first. Watch-log rows are never touched.
func (m *Manager) SyncSeries(ctx context.Context, id string) (*tvmaze.Show, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("sync series: %w: empty identifier", ErrInvalidID)
	}
	if tvmaze.IsIMDbID(id) {
		native, err := m.catalog.ResolveIMDb(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("sync series %s: %w", id, err)
		}
		id = native
	}
	show, err := m.catalog.Lookup(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("sync series %s: %w", id, err)
	}
	key, ok := parseSeriesKey(show.ID())
	if !ok {
		return nil, fmt.Errorf("sync series %s: %w: catalog returned id %q", id, ErrInvalidID, show.ID())
	}

	err = m.store.WithTx(ctx, func() error {
		if err := m.upsertSeries(ctx, key, show); err != nil {
			return err
		}
		for _, ep := range show.Episodes() {
			if err := m.upsertEpisode(ctx, key, ep); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sync series %s: %w", id, err)
	}
	m.logger.Info("series synced",
		logging.String(logging.FieldSeriesID, show.ID()),
		logging.String("name", show.Name()),
		logging.Int("episodes", show.NumEpisodes()),
	)
	return show, nil
}

func (m *Manager) upsertSeries(ctx context.Context, key int64, show *tvmaze.Show) error {
	if err := m.ensureRow(ctx, tableSeries, colSeriesID, key); err != nil {
		return err
	}
	return m.setCells(ctx, tableSeries, key, map[string]any{
		colName:         show.Name(),
		colStatus:       nullable(show.Status()),
		colPremiereDate: nullable(show.PremiereDate()),
		colEndedDate:    nullable(show.EndedDate()),
	})
}

func (m *Manager) upsertEpisode(ctx context.Context, seriesKey int64, ep tvmaze.Episode) error {
	if err := m.ensureRow(ctx, tableEpisode, colEpisodeID, ep.ID); err != nil {
		return err
	}
	var number, runtime any
	if ep.HasNumber {
		number = strconv.Itoa(ep.Number)
	}
	if ep.HasRuntime {
		runtime = strconv.Itoa(ep.Runtime)
	}
	return m.setCells(ctx, tableEpisode, ep.ID, map[string]any{
		colSeriesID:   seriesKey,
		colSeasonNum:  strconv.Itoa(ep.Season),
		colEpisodeNum: number,
		colName:       ep.Name,
		colAirdate:    nullable(ep.AirDate),
		colRuntime:    runtime,
	})
}

func (m *Manager) ensureRow(ctx context.Context, table, pkColumn string, key int64) error {
	exists, err := m.store.HasPrimaryKey(ctx, table, key)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	_, err = m.store.InsertRecord(ctx, table, pkColumn, key)
	return err
}

func (m *Manager) setCells(ctx context.Context, table string, key int64, values map[string]any) error {
	for column, value := range values {
		if err := m.store.SetCell(ctx, table, key, column, value); err != nil {
			return err
		}
	}
	return nil
}

// IsTracked reports whether a series row exists for id. Ids that are not
// positive decimal integers are never tracked and are not queried.
func (m *Manager) IsTracked(ctx context.Context, id string) (bool, error) {
	key, ok := parseSeriesKey(id)
	if !ok {
		return false, nil
	}
	tracked, err := m.store.HasPrimaryKey(ctx, tableSeries, key)
	if err != nil {
		return false, fmt.Errorf("check series %s: %w", id, err)
	}
	return tracked, nil
}

// ensureTracked syncs the series when no row exists yet and returns its key.
func (m *Manager) ensureTracked(ctx context.Context, id string) (int64, error) {
	tracked, err := m.IsTracked(ctx, id)
	if err != nil {
		return 0, err
	}
	if tracked {
		key, _ := parseSeriesKey(id)
		return key, nil
	}
	show, err := m.SyncSeries(ctx, id)
	if err != nil {
		return 0, err
	}
	key, _ := parseSeriesKey(show.ID())
	return key, nil
}

// ValidateSeriesID asks the catalog whether id names a show.
func (m *Manager) ValidateSeriesID(ctx context.Context, id string) (bool, error) {
	return m.catalog.Validate(ctx, id)
}

// ResolveIMDb translates an IMDb id to the native series id.
func (m *Manager) ResolveIMDb(ctx context.Context, imdbID string) (string, error) {
	return m.catalog.ResolveIMDb(ctx, imdbID)
}
