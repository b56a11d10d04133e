package dberr

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriverError mimics a driver error carrying a SQLSTATE-like code.
type fakeDriverError struct {
	Code string
}

func (e *fakeDriverError) Error() string { return "driver says " + e.Code }

func fakeCode(err error) (string, bool) {
	var fe *fakeDriverError
	if errors.As(err, &fe) {
		return fe.Code[:2], true
	}
	return "", false
}

func TestKind_Hierarchy(t *testing.T) {
	tests := []struct {
		kind     Kind
		ancestor Kind
		want     bool
	}{
		{KindIntegrity, KindDatabase, true},
		{KindIntegrity, KindError, true},
		{KindIntegrity, KindIntegrity, true},
		{KindDatabase, KindIntegrity, false},
		{KindInterface, KindDatabase, false},
		{KindWarning, KindError, false},
		{KindValue, KindError, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.kind, tt.ancestor), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.IsA(tt.ancestor))
		})
	}

	assert.Equal(t, 0, KindError.Depth())
	assert.Equal(t, 1, KindDatabase.Depth())
	assert.Equal(t, 2, KindNotSupported.Depth())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("IntegrityError")
	require.True(t, ok)
	assert.Equal(t, KindIntegrity, k)

	_, ok = ParseKind("NoSuchError")
	assert.False(t, ok)
}

func TestError_IsByAncestry(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", New(KindIntegrity, "duplicate key"))

	assert.ErrorIs(t, err, ErrIntegrity)
	assert.ErrorIs(t, err, ErrDatabase)
	assert.ErrorIs(t, err, ErrError)
	assert.NotErrorIs(t, err, ErrData)
	assert.NotErrorIs(t, err, ErrInterface)
	assert.Equal(t, KindIntegrity, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestErrorf_KeepsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Errorf(KindProgramming, "translating: %w", cause)

	assert.Equal(t, "ProgrammingError: translating: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "IntegrityError", ErrIntegrity.Error())
}

func TestRemapper_WrongOrderStillMostSpecific(t *testing.T) {
	// The catch-all DatabaseError rule is listed first on purpose.
	rules := []Rule{
		{Kind: KindDatabase, Match: As[*fakeDriverError]()},
		{Kind: KindIntegrity, Match: func(err error) bool {
			code, ok := fakeCode(err)
			return ok && code == "23"
		}},
	}
	r := NewRemapper(rules...)

	err := r.Wrap(&fakeDriverError{Code: "23505"}, Diagnostics{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.Equal(t, KindIntegrity, KindOf(err))

	err = r.Wrap(&fakeDriverError{Code: "99999"}, Diagnostics{})
	assert.Equal(t, KindDatabase, KindOf(err))
}

func TestRemapper_Wrap(t *testing.T) {
	r := NewRemapper(CodeRules(fakeCode, map[string]Kind{
		"23": KindIntegrity,
		"22": KindData,
		"42": KindProgramming,
	}, KindDatabase)...).With(StdRules()...)

	diag := Diagnostics{
		Operation:  "insert into t values (:a)",
		SQL:        "insert into t values ($1)",
		Parameters: map[string]any{"a": 1},
		Binds:      []any{1},
	}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"integrity", &fakeDriverError{Code: "23505"}, KindIntegrity},
		{"data", &fakeDriverError{Code: "22003"}, KindData},
		{"programming", &fakeDriverError{Code: "42P01"}, KindProgramming},
		{"unlisted code", &fakeDriverError{Code: "XX000"}, KindDatabase},
		{"wrapped driver error", fmt.Errorf("exec: %w", &fakeDriverError{Code: "23503"}), KindIntegrity},
		{"bad conn", driver.ErrBadConn, KindOperational},
		{"deadline", context.DeadlineExceeded, KindOperational},
		{"conn done", sql.ErrConnDone, KindInterface},
		{"tx done", sql.ErrTxDone, KindInterface},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Wrap(tt.err, diag)
			var ce *Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind)
			assert.ErrorIs(t, err, tt.err, "cause must stay reachable")
			assert.Equal(t, diag, ce.Diag)
			assert.Equal(t, tt.err.Error(), ce.Message)
		})
	}
}

func TestRemapper_Unmatched(t *testing.T) {
	r := NewRemapper(StdRules()...)
	plain := errors.New("not a driver error")

	assert.Same(t, plain, r.Wrap(plain, Diagnostics{}))
	assert.NoError(t, r.Wrap(nil, Diagnostics{}))

	var nilRemapper *Remapper
	assert.Same(t, plain, nilRemapper.Wrap(plain, Diagnostics{}))
}

func TestRemapper_CanonicalPassThrough(t *testing.T) {
	r := NewRemapper(StdRules()...)
	diag := Diagnostics{Operation: "select 1"}

	orig := New(KindProgramming, "bad macro")
	got := r.Wrap(orig, diag)
	var ce *Error
	require.ErrorAs(t, got, &ce)
	assert.Equal(t, diag, ce.Diag)
	assert.True(t, orig.Diag.IsZero(), "original must not be mutated")

	withDiag := &Error{Kind: KindData, Message: "x", Diag: Diagnostics{SQL: "kept"}}
	got = r.Wrap(withDiag, diag)
	assert.Same(t, withDiag, got)
}

func TestRemapper_Do(t *testing.T) {
	r := NewRemapper(StdRules()...)
	err := r.Do(Diagnostics{SQL: "select 1"}, func() error {
		return driver.ErrBadConn
	})
	assert.ErrorIs(t, err, ErrOperational)

	assert.NoError(t, r.Do(Diagnostics{}, func() error { return nil }))
}

func TestError_Detail(t *testing.T) {
	err := &Error{
		Kind:    KindIntegrity,
		Message: "duplicate key",
		Diag: Diagnostics{
			Operation:  "insert   into t\n values (:a)",
			SQL:        "insert into t values (?)",
			Parameters: map[string]any{"a": 1},
			Binds:      []any{1},
		},
	}
	want := "IntegrityError: duplicate key\n" +
		"  operation: insert into t values (:a)\n" +
		"  sql: insert into t values (?)\n" +
		"  parameters: map[a:1]\n" +
		"  binds: [1]"
	assert.Equal(t, want, err.Detail())
}

func TestPrettySQL(t *testing.T) {
	sql := "SELECT *\n  FROM   foo\n WHERE x = 1"
	assert.Equal(t, "SELECT * FROM foo WHERE x = 1", PrettySQL(sql, 0))
	assert.Equal(t, "SELECT * F...", PrettySQL(sql, 10))
	assert.Equal(t, "SELECT 1", PrettySQL("  SELECT 1 ", 10))
}

func TestPrettySQL_MultiByte(t *testing.T) {
	got := PrettySQL("SELECT 'héllo'", 10)
	assert.Equal(t, "SELECT 'h...", got)
	assert.True(t, utf8.ValidString(got))

	for maxlen := 1; maxlen < 20; maxlen++ {
		got := PrettySQL("SELECT '日本語のテキスト'", maxlen)
		assert.True(t, utf8.ValidString(got), "maxlen %d: %q", maxlen, got)
	}
}
