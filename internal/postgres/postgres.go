package postgres

import (
	"context"
	"database/sql"
	"log"

	"github.com/flexprice/flexprice/internal/config"
	_ "github.com/lib/pq"
	"github.com/jmoiron/sqlx"
)

// DB wraps sqlx.DB so repositories can transparently run against either
// the base connection pool or an in-flight transaction pulled from ctx.
type DB struct {
	*sqlx.DB
}

// Querier is the subset of *sqlx.DB / *sqlx.Tx that repositories need;
// GetQuerier returns whichever one is active for ctx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// NamedQuerier additionally exposes sqlx's named-parameter helpers, which
// repositories use to bind struct fields by db tag directly.
type NamedQuerier interface {
	Querier
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	NamedQueryContext(ctx context.Context, query string, arg interface{}) (*sqlx.Rows, error)
}

// GetNamedQuerier returns the transaction bound to ctx, if one was started
// with WithTx, or the base pool otherwise - the NamedQuerier-capable
// counterpart to GetQuerier.
func (db *DB) GetNamedQuerier(ctx context.Context) NamedQuerier {
	if tx, ok := GetTx(ctx); ok {
		return tx.Tx
	}
	return db.DB
}

// NewDB opens the connection pool and applies the configured pool limits.
func NewDB(cfg *config.Configuration) (*DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Postgres.GetDSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)

	return &DB{DB: db}, nil
}

func (db *DB) Close() {
	if err := db.DB.Close(); err != nil {
		log.Printf("error closing postgres connection: %v", err)
	}
}

// GetQuerier returns the transaction bound to ctx, if one was started with
// WithTx, or the base pool otherwise.
func (db *DB) GetQuerier(ctx context.Context) Querier {
	if tx, ok := GetTx(ctx); ok {
		return tx.Tx
	}
	return db.DB
}
