// Package db owns the relational side of the pipeline: one connection,
// one open transaction at a time, batched commits driven by the caller.
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"atlas/config"
)

// Store wraps a single Postgres connection with an always-open
// transaction. The pipeline runner decides when to commit; a failed
// statement rolls back and reopens the transaction so later floats are
// unaffected.
type Store struct {
	conn *pgx.Conn
	tx   pgx.Tx
}

func Connect(ctx context.Context, cfg *config.Config) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.DBTimeout)
	defer cancel()

	conn, err := pgx.Connect(connectCtx, cfg.PgWriteURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &Store{conn: conn, tx: tx}, nil
}

// Commit commits the current transaction and opens the next one.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("no open transaction")
	}
	if err := s.tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return s.begin(ctx)
}

func (s *Store) Close(ctx context.Context) {
	if s.tx != nil {
		// Whatever was not committed is discarded deliberately.
		if err := s.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Warn("rollback on close", "error", err)
		}
	}
	s.conn.Close(ctx)
}

func (s *Store) begin(ctx context.Context) error {
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		s.tx = nil
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// reset rolls back after a failed statement and reopens the transaction.
func (s *Store) reset(ctx context.Context) {
	if s.tx != nil {
		if err := s.tx.Rollback(ctx); err != nil && err != pgx.ErrTxClosed {
			slog.Warn("rollback failed", "error", err)
		}
	}
	if err := s.begin(ctx); err != nil {
		slog.Error("could not reopen transaction", "error", err)
	}
}
