package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// InsertRecord inserts a row with a single column populated and returns the
// new rowid. It fails on primary-key collision or an unknown column.
func (s *Store) InsertRecord(ctx context.Context, table, column string, value any) (int64, error) {
	if err := validateNames(table, column); err != nil {
		return 0, err
	}
	query := "INSERT INTO " + quote(table) + " (" + quote(column) + ") VALUES (?)"
	res, err := s.exec(ctx, query, value)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert into %s: last insert id: %w", table, err)
	}
	return id, nil
}

// GetCell reads one cell by primary key. ok is false when no row has the key
// or the cell is NULL.
func (s *Store) GetCell(ctx context.Context, table string, key any, column string) (string, bool, error) {
	if err := validateNames(table, column); err != nil {
		return "", false, err
	}
	pk, err := s.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return "", false, err
	}
	var value sql.NullString
	query := "SELECT " + quote(column) + " FROM " + quote(table) + " WHERE " + quote(pk) + " = ?"
	if err := s.conn().QueryRowContext(ensureContext(ctx), query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s.%s: %w", table, column, err)
	}
	return value.String, value.Valid, nil
}

// SetCell writes one cell by primary key. A nil value stores NULL. Setting a
// cell on a key that does not exist is a silent no-op.
func (s *Store) SetCell(ctx context.Context, table string, key any, column string, value any) error {
	if err := validateNames(table, column); err != nil {
		return err
	}
	pk, err := s.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return err
	}
	query := "UPDATE " + quote(table) + " SET " + quote(column) + " = ? WHERE " + quote(pk) + " = ?"
	if _, err := s.exec(ctx, query, value, key); err != nil {
		return fmt.Errorf("set %s.%s: %w", table, column, err)
	}
	return nil
}

// DeleteRow removes the row with the given primary key and reports whether one existed.
func (s *Store) DeleteRow(ctx context.Context, table string, key any) (bool, error) {
	if err := validateName(table); err != nil {
		return false, err
	}
	pk, err := s.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return false, err
	}
	res, err := s.exec(ctx, "DELETE FROM "+quote(table)+" WHERE "+quote(pk)+" = ?", key)
	if err != nil {
		return false, fmt.Errorf("delete from %s: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete from %s: rows affected: %w", table, err)
	}
	return affected > 0, nil
}

// HasPrimaryKey reports whether a row with the given key exists.
func (s *Store) HasPrimaryKey(ctx context.Context, table string, key any) (bool, error) {
	pk, err := s.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return false, err
	}
	count, err := s.Count(ctx, table, Where(Eq(pk, key)))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count returns the number of rows matching filter.
func (s *Store) Count(ctx context.Context, table string, filter Filter) (int, error) {
	if err := validateName(table); err != nil {
		return 0, err
	}
	where, args, err := filter.clause()
	if err != nil {
		return 0, err
	}
	var count int
	query := "SELECT COUNT(*) FROM " + quote(table) + where
	if err := s.conn().QueryRowContext(ensureContext(ctx), query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count %s where %s: %w", table, filter, err)
	}
	return count, nil
}

// PrimaryKeys lists every primary key of table in ascending order.
func (s *Store) PrimaryKeys(ctx context.Context, table string) ([]string, error) {
	return s.PrimaryKeysWhere(ctx, table, Filter{})
}

// PrimaryKeysWhere lists the primary keys of rows matching filter in ascending order.
func (s *Store) PrimaryKeysWhere(ctx context.Context, table string, filter Filter) ([]string, error) {
	if err := validateName(table); err != nil {
		return nil, err
	}
	pk, err := s.PrimaryKeyColumn(ctx, table)
	if err != nil {
		return nil, err
	}
	where, args, err := filter.clause()
	if err != nil {
		return nil, err
	}
	query := "SELECT " + quote(pk) + " FROM " + quote(table) + where + " ORDER BY " + quote(pk)
	rows, err := s.conn().QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list keys of %s: %w", table, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key sql.NullString
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key of %s: %w", table, err)
		}
		if key.Valid {
			keys = append(keys, key.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keys of %s: %w", table, err)
	}
	return keys, nil
}
