// Package sqlstore is a small generic table layer over SQLite.
//
// It creates tables and typed columns, inserts single-column rows, reads and
// writes individual cells by primary key, counts and lists rows matching a
// structured Filter, and exposes an explicit Begin/Commit/Rollback
// transaction that every subsequent statement joins until it ends. The store
// knows nothing about watch logs; callers own every business rule.
//
// Table and column names are validated and quoted before they reach SQL, and
// filter values are always bound as arguments. A Store pins itself to one
// connection and holds an advisory file lock so two processes cannot share a
// database file.
package sqlstore
