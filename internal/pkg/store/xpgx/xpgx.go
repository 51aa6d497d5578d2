// Package xpgx wraps pgxpool with squirrel-aware helpers so store code can
// pass query builders straight to the pool and scan results by db tag.
package xpgx

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sqlizer is satisfied by squirrel builders.
type Sqlizer interface {
	ToSql() (string, []interface{}, error)
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queryer is the query surface shared by the pool and an open transaction.
type Queryer interface {
	pgxQuerier
	Execx(ctx context.Context, query Sqlizer) (pgconn.CommandTag, error)
	Getx(ctx context.Context, dst any, query Sqlizer) error
	Selectx(ctx context.Context, dst any, query Sqlizer) error
}

type queries struct {
	db pgxQuerier
}

func (q queries) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return q.db.Exec(ctx, sql, args...)
}

func (q queries) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return q.db.Query(ctx, sql, args...)
}

func (q queries) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.db.QueryRow(ctx, sql, args...)
}

func (q queries) Execx(ctx context.Context, query Sqlizer) (pgconn.CommandTag, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build query: %w", err)
	}
	return q.db.Exec(ctx, sql, args...)
}

func (q queries) Getx(ctx context.Context, dst any, query Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Get(ctx, q.db, dst, sql, args...)
}

func (q queries) Selectx(ctx context.Context, dst any, query Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return pgxscan.Select(ctx, q.db, dst, sql, args...)
}

type Pool struct {
	queries
	pool *pgxpool.Pool
}

func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &Pool{queries: queries{db: pool}, pool: pool}, nil
}

func (p *Pool) Close() {
	p.pool.Close()
}

// InTx runs fn inside a single transaction. The transaction commits only when
// fn returns nil; any error rolls everything back.
func (p *Pool) InTx(ctx context.Context, fn func(q Queryer) error) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}
