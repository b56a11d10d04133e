// Package translate turns portable SQL into the SQL text and bound values a
// driver expects.
//
// A Translator belongs to one dialect. Translate tokenizes the statement,
// expands portability macros through the dialect's macro table, replaces
// :name placeholders with the dialect's paramstyle and converts the caller's
// values to match. Translations are cached per statement text.
//
// The cache assumes that macro expansion depends only on the statement text
// and the macro context given to New. Call Reset after anything the macros
// read (settings, constants) has changed.
package translate

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/dberr"
	"github.com/leapstack-labs/portsql/pkg/dialect"
	"github.com/leapstack-labs/portsql/pkg/lexer"
	"github.com/leapstack-labs/portsql/pkg/macro"
	"github.com/leapstack-labs/portsql/pkg/params"
	"github.com/leapstack-labs/portsql/pkg/token"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the number of statements a Translator remembers.
const DefaultCacheSize = 100

// Result is one translated statement.
type Result struct {
	SQL   string
	Bound params.Bound
	Names []string // bind parameter names, first-seen order

	// Unbound lists the names Preview found no value for.
	Unbound []string

	// Cached is set when the translation came from the cache.
	Cached bool
}

// Args returns the bound values as database/sql arguments.
func (r *Result) Args() []any { return r.Bound.Args() }

// Option configures a Translator.
type Option func(*Translator)

// WithContext sets the context handed to macro handlers.
func WithContext(mc macro.Context) Option {
	return func(t *Translator) { t.mc = mc }
}

// WithCacheSize bounds the statement cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(t *Translator) { t.cacheSize = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Translator) { t.logger = logger }
}

// Translator translates statements for one dialect. It is safe for
// concurrent use.
type Translator struct {
	dialect   *dialect.Dialect
	mc        macro.Context
	logger    *slog.Logger
	cacheSize int

	cache *stmtCache
	group singleflight.Group
}

// New returns a Translator for d.
func New(d *dialect.Dialect, opts ...Option) (*Translator, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	t := &Translator{dialect: d, cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(t)
	}
	if t.cacheSize < 0 {
		return nil, errors.New("translate: cache size must not be negative")
	}
	if t.logger == nil {
		t.logger = slog.New(slog.DiscardHandler)
	}
	if t.mc.Logger == nil {
		t.mc.Logger = t.logger
	}
	cache, err := newStmtCache(t.cacheSize)
	if err != nil {
		return nil, err
	}
	t.cache = cache
	return t, nil
}

// Dialect returns the translator's dialect.
func (t *Translator) Dialect() *dialect.Dialect { return t.dialect }

// Translate translates text and binds values to it. A nil map is treated
// as empty. Values implementing params.Coder bind as their integer code.
func (t *Translator) Translate(text string, values map[string]any) (*Result, error) {
	values = params.Normalize(values)

	e, cached, err := t.lookup(text)
	if err != nil {
		return nil, err
	}

	reg := e.tmpl.Instantiate()
	bound, err := reg.Convert(values)
	if err != nil {
		return nil, dberr.Errorf(dberr.KindValue, "%w", err).WithDiag(dberr.Diagnostics{
			Operation:  "translate",
			SQL:        e.sql,
			Parameters: values,
		})
	}
	return &Result{SQL: e.sql, Bound: bound, Names: reg.Names(), Cached: cached}, nil
}

// Preview translates text like Translate but does not require a value for
// every bind parameter. Names without a value bind as nil and are listed in
// Result.Unbound.
func (t *Translator) Preview(text string, values map[string]any) (*Result, error) {
	values = params.Normalize(values)

	e, cached, err := t.lookup(text)
	if err != nil {
		return nil, err
	}

	reg := e.tmpl.Instantiate()
	var unbound []string
	for _, name := range reg.Names() {
		if _, ok := values[name]; !ok {
			unbound = append(unbound, name)
			values[name] = nil
		}
	}
	bound, err := reg.Convert(values)
	if err != nil {
		return nil, dberr.Errorf(dberr.KindValue, "%w", err).WithDiag(dberr.Diagnostics{
			Operation: "translate",
			SQL:       e.sql,
		})
	}
	return &Result{SQL: e.sql, Bound: bound, Names: reg.Names(), Unbound: unbound, Cached: cached}, nil
}

// lookup returns the compiled form of text from the cache, compiling it on
// a miss. Concurrent misses of one statement compile once.
func (t *Translator) lookup(text string) (*entry, bool, error) {
	if e, ok := t.cache.get(text); ok {
		t.logger.Debug("translation cache hit", slog.String("sql", dberr.PrettySQL(text, 60)))
		return e, true, nil
	}
	v, err, _ := t.group.Do(text, func() (any, error) {
		if e, ok := t.cache.peek(text); ok {
			return e, nil
		}
		e, err := t.compile(text)
		if err != nil {
			return nil, err
		}
		t.cache.set(text, e)
		return e, nil
	})
	if err != nil {
		return nil, false, err
	}
	t.logger.Debug("translation cache miss", slog.String("sql", dberr.PrettySQL(text, 60)))
	return v.(*entry), false, nil
}

// Stats returns cache statistics.
func (t *Translator) Stats() Stats { return t.cache.snapshot() }

// Reset drops every cached translation.
func (t *Translator) Reset() { t.cache.clear() }

// compile runs the tokenizer over text and folds the token stream into
// output SQL and a parameter registration template.
func (t *Translator) compile(text string) (*entry, error) {
	diag := dberr.Diagnostics{Operation: "translate", SQL: text}
	rec := params.NewRecorder(t.dialect.Style())
	var out writer

	var (
		inv     *macro.Invocation
		invSpan bool
		done    bool
	)
	flush := func() error {
		if inv == nil {
			return nil
		}
		expanded, err := t.dialect.Macros().Expand(*inv, t.mc)
		if err != nil {
			return err
		}
		out.write(expanded, invSpan)
		inv = nil
		return nil
	}

	for tok, err := range lexer.Tokens(text) {
		if err != nil {
			return nil, dberr.Errorf(dberr.KindProgramming, "%w", err).WithDiag(diag)
		}
		if done {
			rest := strings.TrimSpace(text[tok.Pos.Offset:])
			return nil, dberr.Errorf(dberr.KindProgramming, "multiple statements are not allowed; found %q after ';'", rest).WithDiag(diag)
		}
		if tok.Kind == token.PortabilityArg {
			inv.Args = append(inv.Args, macro.Arg{Key: tok.Name(), Value: tok.Value()})
			continue
		}
		if err := flush(); err != nil {
			return nil, withDiag(err, diag)
		}

		switch tok.Kind {
		case token.PortabilityFunction:
			inv = &macro.Invocation{Name: tok.Text, Pos: tok.Pos}
			invSpan = tok.Spaced
		case token.BindParameter:
			out.write(rec.Register(tok.Name()), tok.Spaced)
		case token.EndOfStatement:
			done = true
		default:
			out.write(tok.Text, tok.Spaced)
		}
	}
	if err := flush(); err != nil {
		return nil, withDiag(err, diag)
	}
	return &entry{sql: out.String(), tmpl: rec.Template()}, nil
}

func withDiag(err error, diag dberr.Diagnostics) error {
	var de *dberr.Error
	if errors.As(err, &de) && de.Diag.IsZero() {
		return de.WithDiag(diag)
	}
	return err
}

// writer rebuilds statement text from tokens. Tokens that were separated in
// the source get a single space; adjacent tokens stay adjacent unless
// joining them would change how the result scans.
type writer struct {
	b       strings.Builder
	pending bool
}

func (w *writer) write(s string, spaced bool) {
	w.pending = w.pending || spaced
	if s == "" {
		return
	}
	if w.b.Len() > 0 {
		last := w.b.String()[w.b.Len()-1]
		if w.pending || fuses(last, s[0]) {
			w.b.WriteByte(' ')
		}
	}
	w.b.WriteString(s)
	w.pending = false
}

func (w *writer) String() string { return w.b.String() }

// fuses reports whether a followed directly by b would scan differently
// from the two pieces on their own. A word directly after ')' is split off
// as well, so that an expansion like NOW() reads as a separate term.
func fuses(a, b byte) bool {
	switch {
	case (isWordByte(a) || a == ')') && isWordByte(b):
		return true
	case a == '-' && b == '-', a == '/' && b == '*', a == '*' && b == '/':
		return true
	default:
		return false
	}
}

func isWordByte(ch byte) bool {
	return ch == '_' || ch >= 0x80 ||
		('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ('0' <= ch && ch <= '9')
}
