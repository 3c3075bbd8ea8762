package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// Begin starts an explicit transaction. Until Commit or Rollback every store
// operation runs inside it.
func (s *Store) Begin(ctx context.Context) error {
	if s.tx != nil {
		return ErrTxActive
	}
	// Only Commit or Rollback end the transaction, never ctx cancellation.
	tx, err := s.db.BeginTx(context.WithoutCancel(ensureContext(ctx)), &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Commit makes the active transaction's writes durable.
func (s *Store) Commit() error {
	if s.tx == nil {
		return ErrNoTx
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the active transaction's writes.
func (s *Store) Rollback() error {
	if s.tx == nil {
		return ErrNoTx
	}
	tx := s.tx
	s.tx = nil
	s.mu.Lock()
	clear(s.pkColumns)
	s.mu.Unlock()
	if err := tx.Rollback(); err != nil {
		return fmt.Errorf("rollback transaction: %w", err)
	}
	return nil
}

// InTx reports whether an explicit transaction is active.
func (s *Store) InTx() bool {
	return s.tx != nil
}

// WithTx runs fn inside a transaction, committing on success and rolling back
// when fn returns an error. The rollback error, if any, is joined to fn's.
func (s *Store) WithTx(ctx context.Context, fn func() error) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}
	if err := fn(); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	return s.Commit()
}
