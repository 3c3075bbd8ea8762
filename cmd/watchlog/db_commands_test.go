package main

import (
	"testing"

	"watchlog/internal/testsupport"
)

func TestDBHealthReportsTables(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "log", "start", "6", "2021-01-01")

	out := env.mustRun(t, "db", "health")
	requireContains(t, out, "Missing tables: none")
	requireContains(t, out, "Rows in episode: 3")
	requireContains(t, out, "Rows in series_watchlog: 1")
	requireContains(t, out, "Database healthy")

	var report healthReport
	decodeJSON(t, env.mustRun(t, "--json", "db", "health"), &report)
	if !report.Healthy || !report.IntegrityOK || report.RowCounts["series"] != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestCachePurge(t *testing.T) {
	env := setupCLITestEnv(t)
	requireContains(t, env.mustRun(t, "cache", "purge"), "Catalog cache is disabled")

	cached := setupCLITestEnv(t, testsupport.WithCatalogCache())
	cached.mustRun(t, "series", "sync", "6")
	cached.mustRun(t, "series", "sync", "6")
	if hits := cached.catalog.Hits("/shows/6"); hits != 1 {
		t.Fatalf("expected cached second sync, got %d show fetches", hits)
	}
	requireContains(t, cached.mustRun(t, "cache", "purge"), "Removed 2 cached responses")
	requireContains(t, cached.mustRun(t, "cache", "purge"), "Removed 0 cached responses")
}
