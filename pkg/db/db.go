// Package db is the connection facade: it translates portable statements
// for the connection's dialect, runs them through database/sql and remaps
// driver errors onto the canonical hierarchy.
//
//	d, err := db.Open(ctx, adapter.Config{Type: "sqlite", Path: "app.db"})
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//
//	rows, err := d.Query(ctx, "select * from [:table name=users] where id = :id",
//		map[string]any{"id": 7})
package db

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/leapstack-labs/portsql/pkg/adapter"
	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/translate"
)

// Errors returned by QueryOne.
var (
	ErrNotFound    = errors.New("db: query returned no rows")
	ErrTooManyRows = errors.New("db: query returned more than one row")
)

// Option configures a Database.
type Option func(*options)

type options struct {
	remapper  *dberr.Remapper
	mc        macro.Context
	cacheSize int
	logger    *slog.Logger
	dialect   *dialect.Dialect
}

// WithRemapper replaces the error remapper. By default Open uses the
// adapter's rules and New uses only the database/sql rules.
func WithRemapper(r *dberr.Remapper) Option {
	return func(o *options) { o.remapper = r }
}

// WithMacroContext sets the context handed to macro handlers. A nil DB
// field is filled in with the Database itself.
func WithMacroContext(mc macro.Context) Option {
	return func(o *options) { o.mc = mc }
}

// WithCacheSize bounds the translation cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDialect overrides the dialect chosen by the adapter.
func WithDialect(d *dialect.Dialect) Option {
	return func(o *options) { o.dialect = d }
}

// Database is a translated connection to one database. It is safe for
// concurrent use.
type Database struct {
	id      string
	sqlDB   *sql.DB
	adapter adapter.Adapter
	dialect *dialect.Dialect
	tr      *translate.Translator
	remap   *dberr.Remapper
	logger  *slog.Logger
}

// Open connects through the adapter registered for cfg.Type.
func Open(ctx context.Context, cfg adapter.Config, opts ...Option) (*Database, error) {
	o := buildOptions(opts)
	a, err := adapter.Connect(ctx, cfg, o.logger)
	if err != nil {
		return nil, err
	}
	if o.dialect == nil {
		o.dialect = a.Dialect()
	}
	if o.remapper == nil {
		o.remapper = adapter.Remapper(a)
	}
	d, err := newDatabase(a.SQLDB(), o)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	d.adapter = a
	d.logger.Debug("database opened", slog.String("adapter", cfg.Type), slog.String("dialect", d.dialect.String()))
	return d, nil
}

// New wraps an existing connection pool. Close closes sqlDB.
func New(sqlDB *sql.DB, d *dialect.Dialect, opts ...Option) (*Database, error) {
	if sqlDB == nil {
		return nil, errors.New("db: nil *sql.DB")
	}
	o := buildOptions(opts)
	if o.dialect == nil {
		o.dialect = d
	}
	if o.remapper == nil {
		o.remapper = dberr.NewRemapper(dberr.StdRules()...)
	}
	return newDatabase(sqlDB, o)
}

func buildOptions(opts []Option) options {
	o := options{cacheSize: translate.DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func newDatabase(sqlDB *sql.DB, o options) (*Database, error) {
	if o.dialect == nil {
		return nil, dialect.ErrDialectRequired
	}
	id := uuid.NewString()
	d := &Database{
		id:      id,
		sqlDB:   sqlDB,
		dialect: o.dialect,
		remap:   o.remapper,
		logger:  o.logger.With(slog.String("conn", id)),
	}
	mc := o.mc
	if mc.DB == nil {
		mc.DB = d
	}
	tr, err := translate.New(o.dialect,
		translate.WithContext(mc),
		translate.WithCacheSize(o.cacheSize),
		translate.WithLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}
	d.tr = tr
	return d, nil
}

// ID returns the identifier attached to the connection's log records.
func (d *Database) ID() string { return d.id }

// Dialect returns the dialect statements are translated to.
func (d *Database) Dialect() *dialect.Dialect { return d.dialect }

// Translator returns the connection's translator.
func (d *Database) Translator() *translate.Translator { return d.tr }

// SQLDB returns the underlying connection pool.
func (d *Database) SQLDB() *sql.DB { return d.sqlDB }

// Close closes the connection.
func (d *Database) Close() error {
	if d.adapter != nil {
		return d.adapter.Close()
	}
	return d.sqlDB.Close()
}

// Cursor returns a cursor running statements on the connection pool.
func (d *Database) Cursor() *Cursor {
	return &Cursor{db: d, conn: d.sqlDB}
}

// TxCursor returns a cursor running statements inside tx.
func (d *Database) TxCursor(tx *sql.Tx) *Cursor {
	return &Cursor{db: d, conn: tx, tx: tx}
}

// Begin starts a transaction. Errors are remapped.
func (d *Database) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := d.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return nil, d.remap.Wrap(err, dberr.Diagnostics{Operation: "BEGIN"})
	}
	return tx, nil
}

// Ping checks the connection with a trivial statement.
func (d *Database) Ping(ctx context.Context) error {
	_, err := d.QueryValue(ctx, "SELECT 1 AS foo [:from_dual]", nil)
	return err
}

// Query runs a statement and reads every row.
func (d *Database) Query(ctx context.Context, text string, params map[string]any) ([]Row, error) {
	rows, err := d.Cursor().Query(ctx, text, params)
	if err != nil {
		return nil, err
	}
	out, err := scanRows(rows)
	if err != nil {
		return nil, d.remap.Wrap(err, dberr.Diagnostics{Operation: text, Parameters: params})
	}
	return out, nil
}

// QueryOne runs a statement that must return exactly one row.
func (d *Database) QueryOne(ctx context.Context, text string, params map[string]any) (Row, error) {
	rows, err := d.Query(ctx, text, params)
	if err != nil {
		return Row{}, err
	}
	switch len(rows) {
	case 0:
		return Row{}, ErrNotFound
	case 1:
		return rows[0], nil
	default:
		return Row{}, ErrTooManyRows
	}
}

// QueryValue runs a statement that must return one row of one column and
// returns that value.
func (d *Database) QueryValue(ctx context.Context, text string, params map[string]any) (any, error) {
	row, err := d.QueryOne(ctx, text, params)
	if err != nil {
		return nil, err
	}
	if len(row.Columns) != 1 {
		return nil, dberr.Errorf(dberr.KindProgramming, "expected one column, got %d", len(row.Columns))
	}
	return row.Values[0], nil
}

// Execute runs a statement on a fresh cursor.
func (d *Database) Execute(ctx context.Context, text string, params map[string]any) (sql.Result, error) {
	return d.Cursor().Execute(ctx, text, params)
}
