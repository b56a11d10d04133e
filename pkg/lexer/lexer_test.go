package lexer

import (
	"testing"

	"github.com/leapstack-labs/portsql/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kt struct {
	kind token.Kind
	text string
}

func kinds(t *testing.T, input string) []kt {
	t.Helper()
	toks, err := Tokenize(input)
	require.NoError(t, err)
	out := make([]kt, 0, len(toks))
	for _, tok := range toks {
		out = append(out, kt{tok.Kind, tok.Text})
	}
	return out
}

func TestLexer_Basic(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []kt
	}{
		{
			name:  "simple select",
			input: "select a, b from t",
			want: []kt{
				{token.Word, "select"}, {token.Word, "a"}, {token.SpecialChar, ","},
				{token.Word, "b"}, {token.Word, "from"}, {token.Word, "t"},
			},
		},
		{
			name:  "bind parameters",
			input: "x=:foo and y = :bar_2",
			want: []kt{
				{token.Word, "x"}, {token.Operator, "="}, {token.BindParameter, ":foo"},
				{token.Word, "and"}, {token.Word, "y"}, {token.Operator, "="}, {token.BindParameter, ":bar_2"},
			},
		},
		{
			name:  "cast operator is not a bind parameter",
			input: "a::int",
			want:  []kt{{token.Word, "a"}, {token.Operator, "::"}, {token.Word, "int"}},
		},
		{
			name:  "lone colon and bracket",
			input: "a[1] : 2",
			want: []kt{
				{token.Word, "a"}, {token.SpecialChar, "["}, {token.IntegerLiteral, "1"},
				{token.SpecialChar, "]"}, {token.SpecialChar, ":"}, {token.IntegerLiteral, "2"},
			},
		},
		{
			name:  "string with escaped quote",
			input: "'it''s'",
			want:  []kt{{token.StringLiteral, "'it''s'"}},
		},
		{
			name:  "bind inside string is not a bind",
			input: "':foo [:now]'",
			want:  []kt{{token.StringLiteral, "':foo [:now]'"}},
		},
		{
			name:  "quoted identifier",
			input: `"Weird ""name"""`,
			want:  []kt{{token.Word, `"Weird ""name"""`}},
		},
		{
			name:  "numbers",
			input: "1 2.5 .5 1e9 1.5E-3 3.",
			want: []kt{
				{token.IntegerLiteral, "1"}, {token.FloatLiteral, "2.5"}, {token.FloatLiteral, ".5"},
				{token.FloatLiteral, "1e9"}, {token.FloatLiteral, "1.5E-3"}, {token.FloatLiteral, "3."},
			},
		},
		{
			name:  "signed literal after operator",
			input: "x = -5",
			want:  []kt{{token.Word, "x"}, {token.Operator, "="}, {token.IntegerLiteral, "-5"}},
		},
		{
			name:  "minus between operands is an operator",
			input: "a-1",
			want:  []kt{{token.Word, "a"}, {token.Operator, "-"}, {token.IntegerLiteral, "1"}},
		},
		{
			name:  "signed literal at start and after paren",
			input: "+1 * (-2.5)",
			want: []kt{
				{token.IntegerLiteral, "+1"}, {token.Operator, "*"}, {token.OpenParen, "("},
				{token.FloatLiteral, "-2.5"}, {token.CloseParen, ")"},
			},
		},
		{
			name:  "multi-char operators",
			input: "a <= b <> c != d || e >= f",
			want: []kt{
				{token.Word, "a"}, {token.Operator, "<="}, {token.Word, "b"}, {token.Operator, "<>"},
				{token.Word, "c"}, {token.Operator, "!="}, {token.Word, "d"}, {token.Operator, "||"},
				{token.Word, "e"}, {token.Operator, ">="}, {token.Word, "f"},
			},
		},
		{
			name:  "comments are dropped",
			input: "select -- line comment\n 1 /* block\ncomment */ from dual",
			want: []kt{
				{token.Word, "select"}, {token.IntegerLiteral, "1"}, {token.Word, "from"}, {token.Word, "dual"},
			},
		},
		{
			name:  "end of statement",
			input: "select (1);",
			want: []kt{
				{token.Word, "select"}, {token.OpenParen, "("}, {token.IntegerLiteral, "1"},
				{token.CloseParen, ")"}, {token.EndOfStatement, ";"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, tt.input))
		})
	}
}

func TestLexer_PortabilityMacro(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []kt
	}{
		{
			name:  "bare operation",
			input: "[:now]",
			want:  []kt{{token.PortabilityFunction, "now"}},
		},
		{
			name:  "arguments",
			input: "from [:table schema=cerebrum name=foo] x",
			want: []kt{
				{token.Word, "from"}, {token.PortabilityFunction, "table"},
				{token.PortabilityArg, "schema=cerebrum"}, {token.PortabilityArg, "name=foo"},
				{token.Word, "x"},
			},
		},
		{
			name:  "no surrounding whitespace",
			input: "foo[:now]bar",
			want: []kt{
				{token.Word, "foo"}, {token.PortabilityFunction, "now"}, {token.Word, "bar"},
			},
		},
		{
			name:  "quoted value",
			input: "[:get_config var='it''s here']",
			want: []kt{
				{token.PortabilityFunction, "get_config"}, {token.PortabilityArg, "var=it's here"},
			},
		},
		{
			name:  "whitespace inside brackets",
			input: "[: sequence  name=s op=next ]",
			want: []kt{
				{token.PortabilityFunction, "sequence"}, {token.PortabilityArg, "name=s"},
				{token.PortabilityArg, "op=next"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, tt.input))
		})
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unbalanced open at end of input", "select (1", "left open at end of input"},
		{"unbalanced open at end of statement", "select (1;", "left open at end of statement"},
		{"unexpected close", "select 1)", ErrUnbalancedClose},
		{"unterminated string", "select 'abc", ErrUnterminatedString},
		{"unterminated identifier", `select "abc`, ErrUnterminatedIdent},
		{"unterminated comment", "select /* abc", ErrUnterminatedComment},
		{"unterminated macro", "select [:now", ErrUnterminatedMacro},
		{"empty macro", "select [:]", "without an operation name"},
		{"argument before name", "[:a=b]", "before the operation name"},
		{"missing value", "[:table name=]", "missing value"},
		{"bad character in macro", "[:table (]", "unexpected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			require.Error(t, err)
			var scanErr *Error
			require.ErrorAs(t, err, &scanErr)
			assert.Contains(t, scanErr.Message, tt.message)
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks, err := Tokenize("select\n  :x")
	require.NoError(t, err)
	require.Len(t, toks, 2)

	assert.Equal(t, token.Position{Line: 1, Column: 1, Offset: 0}, toks[0].Pos)
	assert.Equal(t, token.Position{Line: 2, Column: 3, Offset: 9}, toks[1].Pos)
	assert.False(t, toks[0].Spaced)
	assert.True(t, toks[1].Spaced)
	assert.Equal(t, "x", toks[1].Name())
}

func TestLexer_StickyAfterEOF(t *testing.T) {
	l := New("a")
	tok, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, token.Word, tok.Kind)

	for range 2 {
		tok, err = l.Next()
		require.NoError(t, err)
		assert.Equal(t, token.EOF, tok.Kind)
	}
}

func TestLexer_StickyError(t *testing.T) {
	l := New(")")
	_, err := l.Next()
	require.Error(t, err)
	_, again := l.Next()
	assert.Same(t, err, again)
}

func TestTokens_StopsEarly(t *testing.T) {
	var seen []string
	for tok, err := range Tokens("a b c d") {
		require.NoError(t, err)
		seen = append(seen, tok.Text)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}
