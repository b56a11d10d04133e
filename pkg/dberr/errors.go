package dberr

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Error is a canonical database error. Cause holds the driver-native (or
// scanner, converter, ...) error it was raised for.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Diag    Diagnostics

	sentinel bool
}

// Sentinels for errors.Is. A sentinel matches any *Error whose kind is the
// sentinel's kind or one of its descendants, so
// errors.Is(err, ErrDatabase) holds for an IntegrityError.
var (
	ErrWarning      = sentinel(KindWarning)
	ErrError        = sentinel(KindError)
	ErrInterface    = sentinel(KindInterface)
	ErrDatabase     = sentinel(KindDatabase)
	ErrData         = sentinel(KindData)
	ErrOperational  = sentinel(KindOperational)
	ErrIntegrity    = sentinel(KindIntegrity)
	ErrInternal     = sentinel(KindInternal)
	ErrProgramming  = sentinel(KindProgramming)
	ErrNotSupported = sentinel(KindNotSupported)
	ErrValue        = sentinel(KindValue)
)

func sentinel(k Kind) *Error {
	return &Error{Kind: k, sentinel: true}
}

// New returns an error of the given kind.
func New(k Kind, message string) *Error {
	return &Error{Kind: k, Message: message}
}

// Errorf formats an error of the given kind. A %w verb sets Cause.
func Errorf(k Kind, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: k, Message: err.Error(), Cause: errors.Unwrap(err)}
}

// Wrap returns cause as an error of the given kind. The message is taken
// from the cause.
func Wrap(k Kind, cause error) *Error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: k, Message: cause.Error(), Cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDiag returns a copy of e carrying diag.
func (e *Error) WithDiag(diag Diagnostics) *Error {
	cp := *e
	cp.Diag = diag
	return &cp
}

// Is matches the package sentinels by ancestry.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || !t.sentinel {
		return false
	}
	return e.Kind.IsA(t.Kind)
}

// Detail renders the error with its diagnostics on separate lines.
func (e *Error) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Diag.Operation != "" {
		fmt.Fprintf(&b, "\n  operation: %s", PrettySQL(e.Diag.Operation, 0))
	}
	if e.Diag.SQL != "" {
		fmt.Fprintf(&b, "\n  sql: %s", PrettySQL(e.Diag.SQL, 0))
	}
	if e.Diag.Parameters != nil {
		fmt.Fprintf(&b, "\n  parameters: %v", e.Diag.Parameters)
	}
	if e.Diag.Binds != nil {
		fmt.Fprintf(&b, "\n  binds: %v", e.Diag.Binds)
	}
	return b.String()
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
		slog.String("message", e.Message),
	}
	if !e.Diag.IsZero() {
		attrs = append(attrs, slog.Any("diag", e.Diag))
	}
	return slog.GroupValue(attrs...)
}

// KindOf returns the canonical kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Diagnostics is the context attached to an error raised while running a
// statement.
type Diagnostics struct {
	Operation  string         // statement text as supplied by the caller
	SQL        string         // translated text sent to the driver
	Parameters map[string]any // caller-supplied values
	Binds      any            // driver-shaped values
}

// IsZero reports whether no diagnostic field is set.
func (d Diagnostics) IsZero() bool {
	return d.Operation == "" && d.SQL == "" && d.Parameters == nil && d.Binds == nil
}

// LogValue implements slog.LogValuer.
func (d Diagnostics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("operation", PrettySQL(d.Operation, 120)),
		slog.String("sql", PrettySQL(d.SQL, 120)),
		slog.Any("parameters", d.Parameters),
		slog.Any("binds", d.Binds),
	)
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// PrettySQL collapses runs of whitespace and trims the statement. If maxlen
// is positive and the result is longer, it is cut to at most maxlen bytes,
// never inside a UTF-8 sequence, and "..." is appended.
func PrettySQL(sql string, maxlen int) string {
	s := strings.TrimSpace(whitespaceRun.ReplaceAllString(sql, " "))
	if maxlen > 0 && len(s) > maxlen {
		cut := maxlen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	return s
}
