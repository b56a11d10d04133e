package db

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/lexer"
	"github.com/leapstack-labs/portsql/pkg/token"
	"github.com/leapstack-labs/portsql/pkg/translate"
)

type conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// Cursor runs translated statements on a pool or inside a transaction.
type Cursor struct {
	db   *Database
	conn conn
	tx   *sql.Tx
}

// Execute translates and runs a statement that returns no rows.
func (c *Cursor) Execute(ctx context.Context, text string, params map[string]any) (sql.Result, error) {
	res, err := c.db.translate(text, params)
	if err != nil {
		return nil, err
	}
	result, err := c.conn.ExecContext(ctx, res.SQL, res.Args()...)
	if err != nil {
		return nil, c.db.wrap(err, text, params, res)
	}
	return result, nil
}

// Query translates and runs a statement returning rows. The caller closes
// the rows.
func (c *Cursor) Query(ctx context.Context, text string, params map[string]any) (*sql.Rows, error) {
	res, err := c.db.translate(text, params)
	if err != nil {
		return nil, err
	}
	rows, err := c.conn.QueryContext(ctx, res.SQL, res.Args()...)
	if err != nil {
		return nil, c.db.wrap(err, text, params, res)
	}
	return rows, nil
}

// ExecMany runs text once per parameter set and returns the total number of
// affected rows. The statement is prepared once. Unless the cursor already
// belongs to a transaction, the batch runs in its own and is rolled back on
// the first error. A statement that produces a result set is rejected
// before anything runs.
func (c *Cursor) ExecMany(ctx context.Context, text string, sets []map[string]any) (total int64, err error) {
	if len(sets) == 0 {
		return 0, nil
	}
	if returnsRows(text) {
		return 0, dberr.New(dberr.KindProgramming, "executemany produced result set").
			WithDiag(dberr.Diagnostics{Operation: text, Parameters: sets[0]})
	}
	first, err := c.db.translate(text, sets[0])
	if err != nil {
		return 0, err
	}

	target := c.conn
	if c.tx == nil {
		var tx *sql.Tx
		if tx, err = c.db.Begin(ctx); err != nil {
			return 0, err
		}
		defer func() {
			if err != nil {
				_ = tx.Rollback()
				return
			}
			if cerr := tx.Commit(); cerr != nil {
				err = c.db.wrap(cerr, text, nil, first)
			}
		}()
		target = tx
	}

	stmt, err := target.PrepareContext(ctx, first.SQL)
	if err != nil {
		return 0, c.db.wrap(err, text, sets[0], first)
	}
	defer stmt.Close()

	for i, set := range sets {
		res := first
		if i > 0 {
			if res, err = c.db.translate(text, set); err != nil {
				return 0, err
			}
		}
		result, err := stmt.ExecContext(ctx, res.Args()...)
		if err != nil {
			return 0, c.db.wrap(err, text, set, res)
		}
		if n, err := result.RowsAffected(); err == nil {
			total += n
		}
	}
	c.db.logger.Debug("batch executed", slog.Int("sets", len(sets)), slog.Int64("rows", total))
	return total, nil
}

func (d *Database) translate(text string, params map[string]any) (*translate.Result, error) {
	res, err := d.tr.Translate(text, params)
	if err != nil {
		d.logger.Debug("translation failed", slog.Any("error", err))
		return nil, err
	}
	d.logger.Debug("executing",
		slog.String("sql", dberr.PrettySQL(res.SQL, 120)),
		slog.Int("binds", res.Bound.Len()),
		slog.Bool("cached", res.Cached),
	)
	return res, nil
}

func (d *Database) wrap(err error, text string, params map[string]any, res *translate.Result) error {
	return d.remap.Wrap(err, dberr.Diagnostics{
		Operation:  text,
		SQL:        res.SQL,
		Parameters: params,
		Binds:      res.Bound.Value(),
	})
}

// rowVerbs start statements that produce a result set.
var rowVerbs = map[string]bool{
	"SELECT": true, "VALUES": true, "TABLE": true, "SHOW": true,
	"EXPLAIN": true, "DESCRIBE": true, "DESC": true,
}

// mainVerbs can follow the common table expressions of a WITH clause.
var mainVerbs = map[string]bool{
	"SELECT": true, "VALUES": true, "INSERT": true, "UPDATE": true,
	"DELETE": true, "MERGE": true,
}

// returnsRows reports whether text produces a result set: its main verb is a
// query, or it has a top-level RETURNING clause. Words inside parentheses,
// such as subqueries and CTE bodies, are ignored.
func returnsRows(text string) bool {
	depth := 0
	verb := ""
	afterWith := false
	for tok, err := range lexer.Tokens(text) {
		if err != nil {
			return false
		}
		switch tok.Kind {
		case token.OpenParen:
			depth++
			continue
		case token.CloseParen:
			depth--
			continue
		case token.EndOfStatement:
			return rowVerbs[verb]
		case token.Word:
		default:
			continue
		}
		if depth > 0 {
			continue
		}
		word := strings.ToUpper(tok.Text)
		switch {
		case verb == "" && !afterWith && word == "WITH":
			afterWith = true
		case verb == "" && !afterWith:
			verb = word
		case verb == "" && mainVerbs[word]:
			verb = word
		case verb != "" && word == "RETURNING":
			return true
		}
	}
	return rowVerbs[verb]
}
