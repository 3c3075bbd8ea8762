package testsupport

import (
	"context"
	"testing"

	"watchlog/internal/config"
	"watchlog/internal/sqlstore"
	"watchlog/internal/tvmaze"
	"watchlog/internal/watchlog"
)

// MustOpenStore opens the configured database for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlstore.Store {
	t.Helper()

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store, err := sqlstore.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("sqlstore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewManager builds a Manager over a fresh store with the schema in place,
// talking to the catalog configured in cfg.
func NewManager(t testing.TB, cfg *config.Config, opts ...watchlog.Option) *watchlog.Manager {
	t.Helper()

	catalog, err := tvmaze.New(cfg.Catalog.BaseURL,
		tvmaze.WithTimeout(cfg.CatalogTimeout()),
		tvmaze.WithMaxRedirects(cfg.Catalog.MaxRedirects),
	)
	if err != nil {
		t.Fatalf("tvmaze.New: %v", err)
	}
	manager := watchlog.New(MustOpenStore(t, cfg), catalog, opts...)
	if err := manager.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return manager
}
