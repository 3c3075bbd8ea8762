package watchlog

import (
	"context"
	"fmt"

	"watchlog/internal/logging"
	"watchlog/internal/sqlstore"
)

const (
	tableSeries          = "series"
	tableEpisode         = "episode"
	tableSeriesWatchlog  = "series_watchlog"
	tableEpisodeWatchlog = "episode_watchlog"

	colSeriesID          = "series_id"
	colName              = "name"
	colStatus            = "status"
	colPremiereDate      = "premiere_date"
	colEndedDate         = "ended_date"
	colEpisodeID         = "episode_id"
	colSeasonNum         = "season_num"
	colEpisodeNum        = "episode_num"
	colAirdate           = "airdate"
	colRuntime           = "runtime"
	colAlternateEpisode  = "alternate_episode_num"
	colSeriesWatchlogID  = "series_watchlog_id"
	colEpisodeWatchlogID = "episode_watchlog_id"
	colStartDate         = "start_date"
	colFinishDate        = "finish_date"
	colFinished          = "finished"
)

type tableSpec struct {
	name    string
	columns []sqlstore.Column
}

// schema lists the tables in creation order; parents precede children.
var schema = []tableSpec{
	{
		name: tableSeries,
		columns: []sqlstore.Column{
			{Name: colSeriesID, Type: sqlstore.TypeInt, PrimaryKey: true, NotNull: true},
			{Name: colName, Type: sqlstore.TypeText},
			{Name: colStatus, Type: sqlstore.TypeText},
			{Name: colPremiereDate, Type: sqlstore.TypeText},
			{Name: colEndedDate, Type: sqlstore.TypeText},
		},
	},
	{
		name: tableEpisode,
		columns: []sqlstore.Column{
			{Name: colEpisodeID, Type: sqlstore.TypeInt, PrimaryKey: true, NotNull: true},
			{Name: colSeriesID, Type: sqlstore.TypeInt, References: &sqlstore.Reference{Table: tableSeries, Column: colSeriesID}},
			{Name: colSeasonNum, Type: sqlstore.TypeText},
			{Name: colName, Type: sqlstore.TypeText},
			{Name: colEpisodeNum, Type: sqlstore.TypeText},
			{Name: colAirdate, Type: sqlstore.TypeText},
			{Name: colRuntime, Type: sqlstore.TypeText},
			{Name: colAlternateEpisode, Type: sqlstore.TypeText},
		},
	},
	{
		name: tableSeriesWatchlog,
		columns: []sqlstore.Column{
			{Name: colSeriesWatchlogID, PrimaryKey: true, AutoIncrement: true},
			{Name: colSeriesID, Type: sqlstore.TypeInt, NotNull: true, References: &sqlstore.Reference{Table: tableSeries, Column: colSeriesID}},
			{Name: colStartDate, Type: sqlstore.TypeText},
			{Name: colFinishDate, Type: sqlstore.TypeText},
			{Name: colFinished, Type: sqlstore.TypeBool},
		},
	},
	{
		name: tableEpisodeWatchlog,
		columns: []sqlstore.Column{
			{Name: colEpisodeWatchlogID, PrimaryKey: true, AutoIncrement: true},
			{Name: colEpisodeID, Type: sqlstore.TypeInt, NotNull: true, References: &sqlstore.Reference{Table: tableEpisode, Column: colEpisodeID}},
			{Name: colStartDate, Type: sqlstore.TypeText},
			{Name: colFinishDate, Type: sqlstore.TypeText},
			{Name: colFinished, Type: sqlstore.TypeBool},
		},
	},
}

func tableNames() []string {
	names := make([]string, 0, len(schema))
	for _, tbl := range schema {
		names = append(names, tbl.name)
	}
	return names
}

// EnsureSchema creates every missing table, each in its own transaction, and
// adds nullable columns missing from tables created by older releases. A
// failed creation is rolled back and returned as a *RollbackError. Calling it
// on a complete schema changes nothing.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	for _, tbl := range schema {
		exists, err := m.store.TableExists(ctx, tbl.name)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if !exists {
			err := m.atomically(ctx, "create table "+tbl.name, func() error {
				return m.store.CreateTable(ctx, tbl.name, tbl.columns...)
			})
			if err != nil {
				return err
			}
			m.logger.Info("created table", logging.String("table", tbl.name))
			continue
		}
		if err := m.addMissingColumns(ctx, tbl); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) addMissingColumns(ctx context.Context, tbl tableSpec) error {
	for _, col := range tbl.columns {
		if col.PrimaryKey || col.NotNull || col.References != nil {
			continue
		}
		exists, err := m.store.ColumnExists(ctx, tbl.name, col.Name)
		if err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
		if exists {
			continue
		}
		err = m.atomically(ctx, "add column "+tbl.name+"."+col.Name, func() error {
			return m.store.AddColumn(ctx, tbl.name, col.Name, col.Type)
		})
		if err != nil {
			return err
		}
		m.logger.Info("added column", logging.String("table", tbl.name), logging.String("column", col.Name))
	}
	return nil
}
