// Package postgres provides Postgres-backed persistence for the pipeline.
// All writes for one run flow through a single Session, i.e. one pooled
// connection holding one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seoaudit/etl/internal/etl"
)

// sessionPool is the subset of pgxpool.Pool the session needs. pgxmock's
// pool satisfies it too, which is how the store tests run without a server.
type sessionPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Session owns one connection and one transaction for an entire ETL run.
// Every store in this package writes through it, so database-visible
// ordering follows the orchestrator's traversal exactly. Commit happens
// once at the end of a successful run; any run-scoped failure rolls back
// everything, including domains that had already been processed.
type Session struct {
	pool sessionPool
	tx   pgx.Tx
}

// Connect opens a pool for dsn and begins the run transaction.
func Connect(ctx context.Context, dsn string) (*Session, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	sess, err := NewSessionWithPool(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return sess, nil
}

// NewSessionWithPool begins the run transaction on an existing pool
// (primarily for testing).
func NewSessionWithPool(ctx context.Context, pool sessionPool) (*Session, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Session{pool: pool, tx: tx}, nil
}

// Exec runs a statement inside the run transaction.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) error {
	if _, err := s.tx.Exec(ctx, sql, args...); err != nil {
		return s.classify(err)
	}
	return nil
}

// QueryRowScan runs a single-row query and scans the result. A missing row
// surfaces as pgx.ErrNoRows for the caller to interpret.
func (s *Session) QueryRowScan(ctx context.Context, sql string, args []any, dest ...any) error {
	if err := s.tx.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		return s.classify(err)
	}
	return nil
}

// SendBatch submits a batch on the run transaction and drains its results.
func (s *Session) SendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := s.tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck // already failing
			return s.classify(err)
		}
	}
	if err := results.Close(); err != nil {
		return s.classify(err)
	}
	return nil
}

// Commit finishes the run transaction.
func (s *Session) Commit(ctx context.Context) error {
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback abandons the run transaction. Calling it after Commit is a
// harmless no-op, so callers can defer it for early-return paths.
func (s *Session) Rollback(ctx context.Context) {
	// pgx.ErrTxClosed after a successful commit is expected; any other
	// failure still releases the connection, so there is nothing to do.
	_ = s.tx.Rollback(ctx)
}

// Close releases the underlying pool. Safe after Commit or Rollback.
func (s *Session) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// classify wraps errors that indicate a dead transaction or connection in
// etl.FatalError so the orchestrator aborts the run instead of treating
// them as one more domain-scoped failure.
func (s *Session) classify(err error) error {
	if errors.Is(err, pgx.ErrTxClosed) {
		return &etl.FatalError{Err: err}
	}
	if conn := s.tx.Conn(); conn != nil && conn.IsClosed() {
		return &etl.FatalError{Err: err}
	}
	return err
}
