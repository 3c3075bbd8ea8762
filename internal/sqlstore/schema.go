package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ColumnType is the storage class of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInt
	// TypeBool is an INT constrained to 0 or 1 with default 0.
	TypeBool
)

func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeBool:
		return "bool"
	default:
		return "text"
	}
}

// Reference names the parent column of a foreign key.
type Reference struct {
	Table  string
	Column string
}

// Column describes one column for CreateTable.
type Column struct {
	Name          string
	Type          ColumnType
	PrimaryKey    bool
	AutoIncrement bool
	NotNull       bool
	References    *Reference
}

func (c Column) definition() (string, error) {
	if err := validateName(c.Name); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(quote(c.Name))
	switch {
	case c.AutoIncrement:
		// SQLite only allows AUTOINCREMENT on an INTEGER PRIMARY KEY.
		b.WriteString(" INTEGER PRIMARY KEY AUTOINCREMENT")
	case c.Type == TypeBool:
		b.WriteString(" INT DEFAULT 0 CHECK(" + quote(c.Name) + " IN (0, 1))")
	case c.Type == TypeInt:
		b.WriteString(" INT")
	default:
		b.WriteString(" TEXT")
	}
	if c.NotNull && !c.AutoIncrement {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey && !c.AutoIncrement {
		b.WriteString(" PRIMARY KEY")
	}
	if ref := c.References; ref != nil {
		if err := validateNames(ref.Table, ref.Column); err != nil {
			return "", err
		}
		b.WriteString(" REFERENCES " + quote(ref.Table) + "(" + quote(ref.Column) + ")")
	}
	return b.String(), nil
}

// CreateBareTable creates a table holding only an INT NOT NULL PRIMARY KEY column.
func (s *Store) CreateBareTable(ctx context.Context, table, pkColumn string) error {
	return s.CreateTable(ctx, table, Column{Name: pkColumn, Type: TypeInt, PrimaryKey: true, NotNull: true})
}

// CreateTable creates a table with the given columns. It fails if the table exists.
func (s *Store) CreateTable(ctx context.Context, table string, columns ...Column) error {
	if err := validateName(table); err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("create table %s: no columns", table)
	}
	defs := make([]string, 0, len(columns))
	for _, col := range columns {
		def, err := col.definition()
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}
	query := "CREATE TABLE " + quote(table) + " (" + strings.Join(defs, ", ") + ")"
	if _, err := s.exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	s.forgetTable(table)
	return nil
}

// AddColumn adds a typed column to an existing table.
func (s *Store) AddColumn(ctx context.Context, table, column string, typ ColumnType) error {
	if err := validateName(table); err != nil {
		return err
	}
	def, err := Column{Name: column, Type: typ}.definition()
	if err != nil {
		return err
	}
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("add column %s.%s: no such table", table, column)
	}
	if _, err := s.exec(ctx, "ALTER TABLE "+quote(table)+" ADD COLUMN "+def); err != nil {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// RenameTable renames a table.
func (s *Store) RenameTable(ctx context.Context, from, to string) error {
	if err := validateNames(from, to); err != nil {
		return err
	}
	if _, err := s.exec(ctx, "ALTER TABLE "+quote(from)+" RENAME TO "+quote(to)); err != nil {
		return fmt.Errorf("rename table %s: %w", from, err)
	}
	s.forgetTable(from)
	s.forgetTable(to)
	return nil
}

// DropTable removes a table. Dropping a missing table is not an error.
func (s *Store) DropTable(ctx context.Context, table string) error {
	if err := validateName(table); err != nil {
		return err
	}
	if _, err := s.exec(ctx, "DROP TABLE IF EXISTS "+quote(table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	s.forgetTable(table)
	return nil
}

// TableExists reports whether a table is present.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	if err := validateName(table); err != nil {
		return false, err
	}
	var name string
	row := s.conn().QueryRowContext(ensureContext(ctx),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return true, nil
}

// Tables lists user tables in name order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.conn().QueryContext(ensureContext(ctx),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

type columnInfo struct {
	name       string
	typ        string
	primaryKey bool
}

func (s *Store) columns(ctx context.Context, table string) ([]columnInfo, error) {
	if err := validateName(table); err != nil {
		return nil, err
	}
	rows, err := s.conn().QueryContext(ensureContext(ctx), "PRAGMA table_info("+quote(table)+")")
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info %s: %w", table, err)
		}
		cols = append(cols, columnInfo{name: name, typ: typeStr, primaryKey: pk > 0})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table info %s: %w", table, err)
	}
	return cols, nil
}

// Columns lists the column names of a table in declaration order.
func (s *Store) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := s.columns(ctx, table)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.name)
	}
	return names, nil
}

// ColumnExists reports whether table has the named column.
func (s *Store) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	if err := validateName(column); err != nil {
		return false, err
	}
	cols, err := s.columns(ctx, table)
	if err != nil {
		return false, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.name, column) {
			return true, nil
		}
	}
	return false, nil
}

// PrimaryKeyColumn returns the name of the table's primary key column.
func (s *Store) PrimaryKeyColumn(ctx context.Context, table string) (string, error) {
	s.mu.Lock()
	cached, ok := s.pkColumns[table]
	s.mu.Unlock()
	if ok {
		return cached, nil
	}

	cols, err := s.columns(ctx, table)
	if err != nil {
		return "", err
	}
	if len(cols) == 0 {
		return "", fmt.Errorf("primary key of %s: no such table", table)
	}
	for _, c := range cols {
		if c.primaryKey {
			s.mu.Lock()
			s.pkColumns[table] = c.name
			s.mu.Unlock()
			return c.name, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNoPrimaryKey, table)
}

func (s *Store) forgetTable(table string) {
	s.mu.Lock()
	delete(s.pkColumns, table)
	s.mu.Unlock()
}
