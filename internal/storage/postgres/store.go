// Package postgres stores bot records in a single key/value table.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediabot/internal/errs"
)

// PgxPool is the subset of *pgxpool.Pool used by the store; pgxmock
// implements it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

type Store struct {
	pool PgxPool
}

// New migrates the schema and opens a connection pool.
func New(ctx context.Context, dsn string) (*Store, error) {
	if err := Migrate(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewWithPool(pool), nil
}

func NewWithPool(pool PgxPool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM bot_records WHERE key=$1`
	var data []byte
	if err := s.pool.QueryRow(ctx, q, key).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *Store) Save(ctx context.Context, key string, data []byte) error {
	const q = `
INSERT INTO bot_records (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := s.pool.Exec(ctx, q, key, data)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM bot_records WHERE key=$1`
	_, err := s.pool.Exec(ctx, q, key)
	return err
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT key FROM bot_records WHERE starts_with(key, $1) ORDER BY key`
	rows, err := s.pool.Query(ctx, q, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
