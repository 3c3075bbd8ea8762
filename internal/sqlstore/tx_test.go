package sqlstore_test

import (
	"context"
	"errors"
	"testing"

	"watchlog/internal/sqlstore"
)

func TestRollbackDiscardsWrites(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	if err := store.Begin(ctx); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !store.InTx() {
		t.Fatal("expected active transaction")
	}
	if err := store.Begin(ctx); !errors.Is(err, sqlstore.ErrTxActive) {
		t.Fatalf("expected ErrTxActive, got %v", err)
	}
	if _, err := store.InsertRecord(ctx, "shows", "show_id", 5); err != nil {
		t.Fatalf("InsertRecord failed: %v", err)
	}
	if err := store.CreateBareTable(ctx, "scratch", "id"); err != nil {
		t.Fatalf("CreateBareTable in tx failed: %v", err)
	}
	if has, _ := store.HasPrimaryKey(ctx, "shows", 5); !has {
		t.Fatal("expected insert visible inside transaction")
	}
	if err := store.Rollback(); err != nil {
		t.Fatalf("Rollback failed: %v", err)
	}
	if has, _ := store.HasPrimaryKey(ctx, "shows", 5); has {
		t.Fatal("expected insert discarded by rollback")
	}
	if ok, _ := store.TableExists(ctx, "scratch"); ok {
		t.Fatal("expected table creation discarded by rollback")
	}
	if err := store.Rollback(); !errors.Is(err, sqlstore.ErrNoTx) {
		t.Fatalf("expected ErrNoTx, got %v", err)
	}
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	createShows(t, store)

	err := store.WithTx(ctx, func() error {
		_, err := store.InsertRecord(ctx, "shows", "show_id", 1)
		return err
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}
	if has, _ := store.HasPrimaryKey(ctx, "shows", 1); !has {
		t.Fatal("expected committed row")
	}

	boom := errors.New("boom")
	err = store.WithTx(ctx, func() error {
		if _, err := store.InsertRecord(ctx, "shows", "show_id", 2); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if has, _ := store.HasPrimaryKey(ctx, "shows", 2); has {
		t.Fatal("expected rolled back row to be absent")
	}
	if store.InTx() {
		t.Fatal("transaction should be closed")
	}
}

func TestCommitWithoutBegin(t *testing.T) {
	store := openStore(t)
	if err := store.Commit(); !errors.Is(err, sqlstore.ErrNoTx) {
		t.Fatalf("expected ErrNoTx, got %v", err)
	}
}
