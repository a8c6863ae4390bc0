package sqlorm

import (
	"context"
	"database/sql"
	"time"

	"github.com/levlavryniuk/sqlorm/internal/errs"
	"github.com/levlavryniuk/sqlorm/internal/valuer"
	"github.com/levlavryniuk/sqlorm/model"
)

type DBOption func(*DB)

// DB is the entry point: a dialect, a metadata registry and a database/sql
// handle. It performs no pooling or retrying of its own; both are the
// driver's and the caller's concern.
type DB struct {
	core
	db *sql.DB
}

// Open opens a database/sql handle and selects the dialect from the driver
// name: pgx/postgres -> Postgres, sqlite3 -> SQLite3. Any other driver is
// a configuration error.
func Open(driver string, dsn string, opts ...DBOption) (*DB, error) {
	dialect, err := dialectByDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return OpenDB(db, append([]DBOption{DBWithDialect(dialect)}, opts...)...)
}

// OpenDB wraps an existing handle. The caller must select a dialect via
// DBWithDialect; zero dialects is as much a configuration error as two
// handles cannot share one.
func OpenDB(db *sql.DB, opts ...DBOption) (*DB, error) {
	res := &DB{
		core: core{
			r:          model.NewRegistry(),
			valCreator: valuer.NewUnsafeValue,
			clock:      time.Now,
		},
		db: db,
	}
	for _, opt := range opts {
		opt(res)
	}
	if res.dialect == nil {
		return nil, errs.ErrNoDialect
	}
	return res, nil
}

// MustOpen is Open or panic, for wiring at program start.
func MustOpen(driver string, dsn string, opts ...DBOption) *DB {
	db, err := Open(driver, dsn, opts...)
	if err != nil {
		panic(err)
	}
	return db
}

func DBWithDialect(d Dialect) DBOption {
	return func(db *DB) {
		db.dialect = d
	}
}

func DBWithRegistry(r model.Registry) DBOption {
	return func(db *DB) {
		db.r = r
	}
}

func DBWithMiddlewares(mdls ...Middleware) DBOption {
	return func(db *DB) {
		db.mdls = mdls
	}
}

// DBWithClock replaces the timestamp source used to stamp created_at and
// updated_at columns. Tests use a fixed clock.
func DBWithClock(clock func() time.Time) DBOption {
	return func(db *DB) {
		db.clock = clock
	}
}

// DBUseReflectValuer switches row decoding to the reflection-based
// implementation.
func DBUseReflectValuer() DBOption {
	return func(db *DB) {
		db.valCreator = valuer.NewReflectValue
	}
}

func (db *DB) getCore() core {
	return db.core
}

func (db *DB) queryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

func (db *DB) execContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction sharing this DB's core.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: db}, nil
}

func (db *DB) Close() error {
	return db.db.Close()
}
