package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgx shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs standalone or inside a transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore implements Store with Postgres.
type PGStore struct {
	db        DB
	pool      *pgxpool.Pool // nil when bound to a transaction
	txTimeout time.Duration
}

// NewPGStore returns a PGStore. txTimeout bounds every transaction opened
// through InTx; exceeding it aborts the unit of work with a context error.
func NewPGStore(pool *pgxpool.Pool, txTimeout time.Duration) *PGStore {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &PGStore{db: pool, pool: pool, txTimeout: txTimeout}
}

func (s *PGStore) Tasks() TaskRepo                 { return &pgTaskRepo{db: s.db} }
func (s *PGStore) Tags() TagRepo                   { return &pgTagRepo{db: s.db} }
func (s *PGStore) History() HistoryRepo            { return &pgHistoryRepo{db: s.db} }
func (s *PGStore) Notifications() NotificationRepo { return &pgNotificationRepo{db: s.db} }
func (s *PGStore) Projects() ProjectRepo           { return &pgProjectRepo{db: s.db} }
func (s *PGStore) Users() UserRepo                 { return &pgUserRepo{db: s.db} }

// InTx implements the transaction gateway. A nested call on a Store that
// is already transactional reuses the same handle.
func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, st Store) error) error {
	if s.pool == nil {
		return fn(ctx, s)
	}
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// No-op after Commit; guarantees rollback when fn panics.
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := &PGStore{db: tx, txTimeout: s.txTimeout}
	if err := fn(ctx, txStore); err != nil {
		return classifyPG(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classifyPG(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// classifyPG maps Postgres error codes onto the shared error taxonomy.
// Everything else passes through unchanged.
func classifyPG(err error) error {
	var pge *pgconn.PgError
	if errors.As(err, &pge) {
		switch pge.Code {
		case "23505":
			return fmt.Errorf("%w: %s", dom.ErrConflict, pge.ConstraintName)
		case "23503", "23514":
			return fmt.Errorf("%w: %s", dom.ErrConstraint, pge.ConstraintName)
		}
	}
	return err
}

// notFoundIfNoRows translates pgx.ErrNoRows into the domain sentinel.
func notFoundIfNoRows(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return dom.ErrNotFound
	}
	return err
}
