package sqlstore

import (
	"errors"
	"slices"
	"testing"
)

func TestFilterClause(t *testing.T) {
	filter := Where(Eq("series_id", "6"), Eq("finished", 0)).And(IsNull("finish_date"))
	where, args, err := filter.clause()
	if err != nil {
		t.Fatalf("clause failed: %v", err)
	}
	want := ` WHERE "series_id" = ? AND "finished" = ? AND "finish_date" IS NULL`
	if where != want {
		t.Fatalf("unexpected clause:\n got %s\nwant %s", where, want)
	}
	if !slices.Equal(args, []any{"6", 0}) {
		t.Fatalf("unexpected args: %v", args)
	}
	if got := filter.String(); got != "series_id = 6 AND finished = 0 AND finish_date IS NULL" {
		t.Fatalf("unexpected String: %q", got)
	}
}

func TestFilterEqNilBecomesIsNull(t *testing.T) {
	if c := Eq("start_date", nil); c.Op != OpIsNull {
		t.Fatalf("expected IS NULL, got %q", c.Op)
	}
}

func TestEmptyFilterMatchesAll(t *testing.T) {
	where, args, err := Filter{}.clause()
	if err != nil || where != "" || len(args) != 0 {
		t.Fatalf("expected empty clause, got %q %v %v", where, args, err)
	}
}

func TestFilterRejectsBadField(t *testing.T) {
	_, _, err := Where(Eq("x OR 1=1", 1)).clause()
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestFilterRejectsUnknownOperator(t *testing.T) {
	if _, _, err := Where(Cond{Field: "a", Op: "LIKE"}).clause(); err == nil {
		t.Fatal("expected unsupported operator error")
	}
}
