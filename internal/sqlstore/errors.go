package sqlstore

import "errors"

var (
	// ErrInvalidName reports a table or column name that is not a plain SQL identifier.
	ErrInvalidName = errors.New("invalid identifier")
	// ErrTxActive is returned by Begin while another transaction is open.
	ErrTxActive = errors.New("transaction already active")
	// ErrNoTx is returned by Commit or Rollback without an open transaction.
	ErrNoTx = errors.New("no active transaction")
	// ErrLocked reports that another process holds the database lock.
	ErrLocked = errors.New("database is in use by another process")
	// ErrNoPrimaryKey is returned for key operations on a table without a primary key.
	ErrNoPrimaryKey = errors.New("table has no primary key")
)
