package watchlog_test

import (
	"context"
	"errors"
	"testing"

	"watchlog/internal/sqlstore"
	"watchlog/internal/testsupport"
	"watchlog/internal/watchlog"
)

func TestSeriesRowsCountEpisodes(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"2", "1"} {
		if _, err := fx.manager.SyncSeries(ctx, id); err != nil {
			t.Fatalf("SyncSeries %s failed: %v", id, err)
		}
	}

	rows, err := fx.manager.SeriesRows(ctx)
	if err != nil {
		t.Fatalf("SeriesRows failed: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "1" || rows[1].ID != "2" {
		t.Fatalf("expected series sorted by id, got %+v", rows)
	}
	if rows[0].Episodes != 3 || rows[0].Name != "Show 1" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	all, err := fx.manager.EpisodeRows(ctx, "")
	if err != nil {
		t.Fatalf("EpisodeRows failed: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected 6 episodes, got %d", len(all))
	}
}

func TestSeriesWatchlogRowsOpenOnly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	if err := fx.manager.SetStartDate(ctx, "40", "2021-01-01"); err != nil {
		t.Fatalf("SetStartDate failed: %v", err)
	}
	if err := fx.manager.AddCompleteRecord(ctx, "41", "2020-01-01", "2020-02-01"); err != nil {
		t.Fatalf("AddCompleteRecord failed: %v", err)
	}

	open, err := fx.manager.SeriesWatchlogRows(ctx, true)
	if err != nil {
		t.Fatalf("SeriesWatchlogRows failed: %v", err)
	}
	if len(open) != 1 || open[0].SeriesID != "40" || open[0].SeriesName != "Show 40" {
		t.Fatalf("unexpected open rows: %+v", open)
	}
	all, err := fx.manager.SeriesWatchlogRows(ctx, false)
	if err != nil {
		t.Fatalf("SeriesWatchlogRows failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rows, got %+v", all)
	}
}

func TestEpisodeWatchlogRowsResolveNames(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	rows, err := fx.manager.EpisodeWatchlogRows(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected no episode watchlogs, got %v (err=%v)", rows, err)
	}
	if _, err := fx.manager.SyncSeries(ctx, "50"); err != nil {
		t.Fatalf("SyncSeries failed: %v", err)
	}
	id, err := fx.store.InsertRecord(ctx, "episode_watchlog", "episode_id", 5001)
	if err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	if err := fx.store.SetCell(ctx, "episode_watchlog", id, "start_date", "2021-01-01"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}

	rows, err = fx.manager.EpisodeWatchlogRows(ctx)
	if err != nil {
		t.Fatalf("EpisodeWatchlogRows failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row, got %+v", rows)
	}
	if rows[0].EpisodeName != "Pilot" || rows[0].SeriesName != "Show 50" || rows[0].StartDate != "2021-01-01" || rows[0].Finished {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestViewsReportMissingReferences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	// A legacy table without a foreign key lets orphaned rows in.
	err := store.CreateTable(ctx, "series_watchlog",
		sqlstore.Column{Name: "series_watchlog_id", PrimaryKey: true, AutoIncrement: true},
		sqlstore.Column{Name: "series_id", Type: sqlstore.TypeInt, NotNull: true},
		sqlstore.Column{Name: "start_date", Type: sqlstore.TypeText},
		sqlstore.Column{Name: "finish_date", Type: sqlstore.TypeText},
		sqlstore.Column{Name: "finished", Type: sqlstore.TypeBool},
	)
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	manager := watchlog.New(store, nil)
	if err := manager.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	if _, err := store.InsertRecord(ctx, "series_watchlog", "series_id", 777); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	_, err = manager.SeriesWatchlogRows(ctx, false)
	if !errors.Is(err, watchlog.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
	if kind := watchlog.Kind(err); kind != "integrity" {
		t.Fatalf("expected integrity kind, got %q", kind)
	}
}

func TestFindSeries(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.catalog.AddShow(named(60, "Breaking Bad"))
	fx.catalog.AddShow(named(61, "Better Call Saul"))
	fx.catalog.AddShow(named(62, "The Bear"))
	fx.catalog.AddShow(named(63, "Pokémon"))
	for _, id := range []string{"60", "61", "62", "63"} {
		if _, err := fx.manager.SyncSeries(ctx, id); err != nil {
			t.Fatalf("SyncSeries %s failed: %v", id, err)
		}
	}

	matches, err := fx.manager.FindSeries(ctx, "breaking")
	if err != nil {
		t.Fatalf("FindSeries failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "60" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	matches, err = fx.manager.FindSeries(ctx, "b")
	if err != nil {
		t.Fatalf("FindSeries failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected every title to match, got %+v", matches)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i-1].Distance > matches[i].Distance {
			t.Fatalf("matches not ranked: %+v", matches)
		}
	}
	matches, err = fx.manager.FindSeries(ctx, "POKEMON")
	if err != nil || len(matches) != 1 || matches[0].Name != "Pokémon" {
		t.Fatalf("expected accent-insensitive match, got %+v (err=%v)", matches, err)
	}
	matches, err = fx.manager.FindSeries(ctx, "61")
	if err != nil || len(matches) == 0 || matches[0].ID != "61" {
		t.Fatalf("expected id match first, got %+v (err=%v)", matches, err)
	}
	if _, err := fx.manager.FindSeries(ctx, " "); !errors.Is(err, watchlog.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for blank query, got %v", err)
	}
}

func named(id int64, name string) testsupport.FakeShow {
	show := testsupport.GeneratedShow(id)
	show.Name = name
	return show
}
