package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"
)

// Health captures diagnostic information about the database.
type Health struct {
	Path          string
	Exists        bool
	Readable      bool
	Tables        []string
	MissingTables []string
	RowCounts     map[string]int
	IntegrityOK   bool
	Error         string
}

// CheckHealth inspects the database file, verifies that the expected tables
// are present, counts their rows and runs SQLite's integrity check.
func (s *Store) CheckHealth(ctx context.Context, expectedTables ...string) (Health, error) {
	health := Health{Path: s.path, RowCounts: make(map[string]int)}

	if s.path == "" {
		return health, errors.New("database path is unknown")
	}
	if s.path != memoryPath {
		info, err := os.Stat(s.path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return health, nil
			}
			return health, fmt.Errorf("stat database: %w", err)
		}
		if info.IsDir() {
			return health, fmt.Errorf("database path %q is a directory", s.path)
		}
	}
	health.Exists = true

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	tables, err := s.Tables(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.Readable = true
	health.Tables = tables

	for _, table := range expectedTables {
		if !slices.Contains(tables, table) {
			health.MissingTables = append(health.MissingTables, table)
			continue
		}
		count, err := s.Count(connCtx, table, Filter{})
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		health.RowCounts[table] = count
	}

	var integrityResult string
	if err := s.conn().QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

// Healthy reports whether the database exists, is readable, has every
// expected table and passes the integrity check.
func (h Health) Healthy() bool {
	return h.Exists && h.Readable && len(h.MissingTables) == 0 && h.IntegrityOK && h.Error == ""
}
