package sqlstore_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"watchlog/internal/sqlstore"
)

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createShows(t *testing.T, store *sqlstore.Store) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateBareTable(ctx, "shows", "show_id"); err != nil {
		t.Fatalf("CreateBareTable failed: %v", err)
	}
	if err := store.AddColumn(ctx, "shows", "name", sqlstore.TypeText); err != nil {
		t.Fatalf("AddColumn name failed: %v", err)
	}
	if err := store.AddColumn(ctx, "shows", "watched", sqlstore.TypeBool); err != nil {
		t.Fatalf("AddColumn watched failed: %v", err)
	}
}

func TestCreateTableAndColumns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	exists, err := store.TableExists(ctx, "shows")
	if err != nil || !exists {
		t.Fatalf("expected shows table, exists=%v err=%v", exists, err)
	}
	cols, err := store.Columns(ctx, "shows")
	if err != nil {
		t.Fatalf("Columns failed: %v", err)
	}
	if !slices.Equal(cols, []string{"show_id", "name", "watched"}) {
		t.Fatalf("unexpected columns: %v", cols)
	}
	pk, err := store.PrimaryKeyColumn(ctx, "shows")
	if err != nil || pk != "show_id" {
		t.Fatalf("expected show_id primary key, got %q err=%v", pk, err)
	}

	if err := store.CreateBareTable(ctx, "shows", "show_id"); err == nil {
		t.Fatal("expected duplicate table creation to fail")
	}
	if err := store.AddColumn(ctx, "shows", "name", sqlstore.TypeText); err == nil {
		t.Fatal("expected duplicate column to fail")
	}
	if err := store.AddColumn(ctx, "missing", "name", sqlstore.TypeText); err == nil {
		t.Fatal("expected add column on missing table to fail")
	}
	if ok, _ := store.ColumnExists(ctx, "shows", "watched"); !ok {
		t.Fatal("expected watched column to exist")
	}
	if ok, _ := store.ColumnExists(ctx, "shows", "rating"); ok {
		t.Fatal("did not expect rating column")
	}
}

func TestInvalidNamesRejectedBeforeSQL(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	if err := store.CreateBareTable(ctx, "bad name", "id"); !errors.Is(err, sqlstore.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, _, err := store.GetCell(ctx, "shows", 1, `name"; DROP TABLE shows; --`); !errors.Is(err, sqlstore.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for column, got %v", err)
	}
	if _, err := store.Count(ctx, "shows", sqlstore.Where(sqlstore.Eq("1=1 OR name", "x"))); !errors.Is(err, sqlstore.ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName for filter field, got %v", err)
	}
	if ok, _ := store.TableExists(ctx, "shows"); !ok {
		t.Fatal("shows table should survive injection attempts")
	}
}

func TestCellRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	if _, err := store.InsertRecord(ctx, "shows", "show_id", 6); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	if _, err := store.InsertRecord(ctx, "shows", "show_id", 6); err == nil {
		t.Fatal("expected primary key collision to fail")
	}
	if _, err := store.InsertRecord(ctx, "shows", "nope", 7); err == nil {
		t.Fatal("expected unknown column to fail")
	}

	if _, ok, err := store.GetCell(ctx, "shows", 6, "name"); err != nil || ok {
		t.Fatalf("expected unset cell to be absent, ok=%v err=%v", ok, err)
	}
	if err := store.SetCell(ctx, "shows", 6, "name", "The Simpsons"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	name, ok, err := store.GetCell(ctx, "shows", "6", "name")
	if err != nil || !ok || name != "The Simpsons" {
		t.Fatalf("unexpected cell: %q ok=%v err=%v", name, ok, err)
	}
	watched, ok, err := store.GetCell(ctx, "shows", 6, "watched")
	if err != nil || !ok || watched != "0" {
		t.Fatalf("expected bool default 0, got %q ok=%v err=%v", watched, ok, err)
	}
	if err := store.SetCell(ctx, "shows", 6, "watched", 2); err == nil {
		t.Fatal("expected bool check constraint to reject 2")
	}
	if err := store.SetCell(ctx, "shows", 6, "name", nil); err != nil {
		t.Fatalf("SetCell nil failed: %v", err)
	}
	if _, ok, _ := store.GetCell(ctx, "shows", 6, "name"); ok {
		t.Fatal("expected NULL after setting nil")
	}

	if err := store.SetCell(ctx, "shows", 99, "name", "ghost"); err != nil {
		t.Fatalf("SetCell on missing key should be a no-op, got %v", err)
	}
	if has, _ := store.HasPrimaryKey(ctx, "shows", 99); has {
		t.Fatal("SetCell must not create rows")
	}
	if _, ok, err := store.GetCell(ctx, "shows", 99, "name"); err != nil || ok {
		t.Fatalf("expected missing row to be absent, ok=%v err=%v", ok, err)
	}

	deleted, err := store.DeleteRow(ctx, "shows", 6)
	if err != nil || !deleted {
		t.Fatalf("DeleteRow failed: deleted=%v err=%v", deleted, err)
	}
	deleted, err = store.DeleteRow(ctx, "shows", 6)
	if err != nil || deleted {
		t.Fatalf("expected second delete to report false, deleted=%v err=%v", deleted, err)
	}
}

func TestCountAndPrimaryKeys(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	for _, id := range []int{30, 4, 12} {
		if _, err := store.InsertRecord(ctx, "shows", "show_id", id); err != nil {
			t.Fatalf("InsertRecord %d failed: %v", id, err)
		}
	}
	if err := store.SetCell(ctx, "shows", 12, "watched", 1); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}
	if err := store.SetCell(ctx, "shows", 12, "name", "Lost"); err != nil {
		t.Fatalf("SetCell failed: %v", err)
	}

	keys, err := store.PrimaryKeys(ctx, "shows")
	if err != nil {
		t.Fatalf("PrimaryKeys failed: %v", err)
	}
	if !slices.Equal(keys, []string{"4", "12", "30"}) {
		t.Fatalf("expected ascending keys, got %v", keys)
	}

	total, err := store.Count(ctx, "shows", sqlstore.Filter{})
	if err != nil || total != 3 {
		t.Fatalf("expected 3 rows, got %d err=%v", total, err)
	}
	unwatched, err := store.Count(ctx, "shows", sqlstore.Where(sqlstore.Eq("watched", 0)))
	if err != nil || unwatched != 2 {
		t.Fatalf("expected 2 unwatched rows, got %d err=%v", unwatched, err)
	}
	unnamed, err := store.Count(ctx, "shows", sqlstore.Where(sqlstore.Eq("name", nil)))
	if err != nil || unnamed != 2 {
		t.Fatalf("expected 2 unnamed rows, got %d err=%v", unnamed, err)
	}
	keys, err = store.PrimaryKeysWhere(ctx, "shows", sqlstore.Where(sqlstore.Gt("show_id", 5)).And(sqlstore.Eq("watched", 0)))
	if err != nil {
		t.Fatalf("PrimaryKeysWhere failed: %v", err)
	}
	if !slices.Equal(keys, []string{"30"}) {
		t.Fatalf("unexpected filtered keys: %v", keys)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	err := store.CreateTable(ctx, "visits",
		sqlstore.Column{Name: "visit_id", AutoIncrement: true},
		sqlstore.Column{Name: "show_id", Type: sqlstore.TypeInt, NotNull: true, References: &sqlstore.Reference{Table: "shows", Column: "show_id"}},
	)
	if err != nil {
		t.Fatalf("CreateTable failed: %v", err)
	}
	if _, err := store.InsertRecord(ctx, "visits", "show_id", 404); err == nil {
		t.Fatal("expected foreign key violation")
	}
	if _, err := store.InsertRecord(ctx, "shows", "show_id", 1); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	first, err := store.InsertRecord(ctx, "visits", "show_id", 1)
	if err != nil {
		t.Fatalf("InsertRecord visit failed: %v", err)
	}
	second, err := store.InsertRecord(ctx, "visits", "show_id", 1)
	if err != nil {
		t.Fatalf("InsertRecord visit failed: %v", err)
	}
	if second <= first {
		t.Fatalf("expected increasing ids, got %d then %d", first, second)
	}
}

func TestRenameAndDropTable(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	if err := store.RenameTable(ctx, "shows", "series"); err != nil {
		t.Fatalf("RenameTable failed: %v", err)
	}
	if ok, _ := store.TableExists(ctx, "shows"); ok {
		t.Fatal("old table name still present")
	}
	if pk, err := store.PrimaryKeyColumn(ctx, "series"); err != nil || pk != "show_id" {
		t.Fatalf("unexpected primary key after rename: %q err=%v", pk, err)
	}
	if err := store.DropTable(ctx, "series"); err != nil {
		t.Fatalf("DropTable failed: %v", err)
	}
	tables, err := store.Tables(ctx)
	if err != nil {
		t.Fatalf("Tables failed: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %v", tables)
	}
}

func TestSecondOpenIsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locked.db")
	first, err := sqlstore.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := sqlstore.Open(path); !errors.Is(err, sqlstore.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	second, err := sqlstore.Open(path)
	if err != nil {
		t.Fatalf("reopen after close failed: %v", err)
	}
	_ = second.Close()
}

func TestCheckHealth(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)
	if _, err := store.InsertRecord(ctx, "shows", "show_id", 1); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}

	health, err := store.CheckHealth(ctx, "shows", "episodes")
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Exists || !health.Readable || !health.IntegrityOK {
		t.Fatalf("unexpected health: %+v", health)
	}
	if health.RowCounts["shows"] != 1 {
		t.Fatalf("expected one show, got %v", health.RowCounts)
	}
	if !slices.Equal(health.MissingTables, []string{"episodes"}) {
		t.Fatalf("expected episodes missing, got %v", health.MissingTables)
	}
	if health.Healthy() {
		t.Fatal("missing table should make the database unhealthy")
	}
}
