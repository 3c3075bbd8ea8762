package watchlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"watchlog/internal/logging"
	"watchlog/internal/sqlstore"
	"watchlog/internal/tvmaze"
)

// Catalog is the metadata source the Manager syncs series from.
type Catalog interface {
	Lookup(ctx context.Context, id string) (*tvmaze.Show, error)
	Validate(ctx context.Context, id string) (bool, error)
	ResolveIMDb(ctx context.Context, imdbID string) (string, error)
}

// Manager coordinates the catalog tables and the watch logs of one store.
// It is not safe for concurrent use.
type Manager struct {
	store   *sqlstore.Store
	catalog Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the clock used for Today.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New returns a Manager backed by store and catalog.
func New(store *sqlstore.Store, catalog Catalog, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		catalog: catalog,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "watchlog")
	return m
}

// Today returns the current local date in ISO form.
func (m *Manager) Today() string {
	return m.now().Format(dateLayout)
}

// parseSeriesKey turns a native series id into its integer key. Anything other
// than a positive decimal integer is rejected.
func parseSeriesKey(id string) (int64, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func formatKey(key int64) string {
	return strconv.FormatInt(key, 10)
}

func parseKeys(keys []string) ([]int64, error) {
	ids := make([]int64, 0, len(keys))
	for _, key := range keys {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric key %q", ErrIntegrity, key)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// atomically runs fn inside a transaction. A failure rolls back and is
// reported as a *RollbackError.
func (m *Manager) atomically(ctx context.Context, op string, fn func() error) error {
	if err := m.store.Begin(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := fn(); err != nil {
		cause := err
		if rbErr := m.store.Rollback(); rbErr != nil {
			cause = errors.Join(err, rbErr)
		}
		logging.WarnWithContext(m.logger, "transaction rolled back", "rollback",
			logging.String("operation", op),
			logging.Error(err),
			logging.String(logging.FieldImpact, "no changes were written"),
			logging.String(logging.FieldErrorHint, "retry the operation or run 'watchlog db health'"),
		)
		return &RollbackError{Op: op, Err: cause}
	}
	if err := m.store.Commit(); err != nil {
		return &RollbackError{Op: op, Err: err}
	}
	return nil
}

// Health checks the database and reports which watch-log tables are missing.
func (m *Manager) Health(ctx context.Context) (sqlstore.Health, error) {
	return m.store.CheckHealth(ctx, tableNames()...)
}
