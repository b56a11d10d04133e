// Package lexer scans portable SQL into a flat token stream.
//
// The lexer knows just enough SQL to find portability macros ([:op k=v]),
// bind parameters (:name), literals and statement boundaries. Everything
// else is passed through as words, operators and special characters.
package lexer

import (
	"iter"
	"strings"

	"github.com/leapstack-labs/portsql/pkg/token"
)

// Tokenizer produces tokens one at a time. Next returns a token of kind
// token.EOF once the input is exhausted.
type Tokenizer interface {
	Next() (token.Token, error)
}

// Lexer tokenizes a single statement text. It is single-use: once it has
// returned EOF or an error it keeps returning the same result.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	depth int // parenthesis nesting

	// portability macro sub-state
	inMacro   bool
	macroPos  token.Position
	macroFunc bool // an operation name has been seen in the open macro

	prev token.Kind // kind of the last emitted token
	seen bool       // at least one token was emitted
	err  error      // sticky error
}

var _ Tokenizer = (*Lexer)(nil)

// New creates a new Lexer for the given input.
func New(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.readPos+n >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n]
}

func (l *Lexer) eof() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// Next returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	if l.err != nil {
		return token.Token{}, l.err
	}
	tok, err := l.next()
	if err != nil {
		l.err = err
		return token.Token{}, err
	}
	if tok.Kind != token.EOF {
		l.prev = tok.Kind
		l.seen = true
	}
	return tok, nil
}

func (l *Lexer) next() (token.Token, error) {
	spaced, err := l.skipWhitespaceAndComments()
	if err != nil {
		return token.Token{}, err
	}
	if l.inMacro {
		return l.nextInMacro(spaced)
	}

	pos := l.currentPos()
	if l.eof() {
		if l.depth != 0 {
			return token.Token{}, errorf(pos, ErrUnbalancedOpen, l.depth, "end of input")
		}
		return token.Token{Kind: token.EOF, Pos: pos, Spaced: spaced}, nil
	}

	tok := token.Token{Pos: pos, Spaced: spaced}
	switch ch := l.ch; {
	case ch == '[' && l.peekChar() == ':':
		l.readChar()
		l.readChar()
		l.inMacro = true
		l.macroPos = pos
		l.macroFunc = false
		return l.nextInMacro(spaced)

	case ch == '(':
		l.depth++
		l.readChar()
		tok.Kind, tok.Text = token.OpenParen, "("

	case ch == ')':
		if l.depth == 0 {
			return token.Token{}, errorf(pos, ErrUnbalancedClose)
		}
		l.depth--
		l.readChar()
		tok.Kind, tok.Text = token.CloseParen, ")"

	case ch == ';':
		if l.depth != 0 {
			return token.Token{}, errorf(pos, ErrUnbalancedOpen, l.depth, "end of statement")
		}
		l.readChar()
		tok.Kind, tok.Text = token.EndOfStatement, ";"

	case ch == '\'':
		text, err := l.readString()
		if err != nil {
			return token.Token{}, err
		}
		tok.Kind, tok.Text = token.StringLiteral, text

	case ch == '"':
		text, err := l.readQuotedIdentifier()
		if err != nil {
			return token.Token{}, err
		}
		tok.Kind, tok.Text = token.Word, text

	case ch == ':':
		switch next := l.peekChar(); {
		case next == ':':
			l.readChar()
			l.readChar()
			tok.Kind, tok.Text = token.Operator, "::"
		case isBindStart(next):
			start := l.pos
			l.readChar()
			for isBindChar(l.ch) && !l.eof() {
				l.readChar()
			}
			tok.Kind, tok.Text = token.BindParameter, l.input[start:l.pos]
		default:
			l.readChar()
			tok.Kind, tok.Text = token.SpecialChar, ":"
		}

	case isDigit(ch) || (ch == '.' && isDigit(l.peekChar())):
		tok.Text, tok.Kind = l.readNumber()

	case (ch == '+' || ch == '-') && l.signAllowed() && l.numberFollowsSign():
		tok.Text, tok.Kind = l.readNumber()

	case isIdentStart(ch):
		tok.Kind, tok.Text = token.Word, l.readIdentifier()

	default:
		if op, ok := l.readOperator(); ok {
			tok.Kind, tok.Text = token.Operator, op
			break
		}
		tok.Kind, tok.Text = token.SpecialChar, l.readRune()
	}
	return tok, nil
}

// nextInMacro scans inside [: ... ]. The closing bracket produces no token.
func (l *Lexer) nextInMacro(spaced bool) (token.Token, error) {
	for isSpace(l.ch) && !l.eof() {
		l.readChar()
	}
	pos := l.currentPos()
	switch {
	case l.eof():
		return token.Token{}, errorf(l.macroPos, ErrUnterminatedMacro)

	case l.ch == ']':
		if !l.macroFunc {
			return token.Token{}, errorf(l.macroPos, "portability macro without an operation name")
		}
		l.readChar()
		l.inMacro = false
		return l.next()

	case isBindStart(l.ch):
		name := l.readIdentifier()
		if l.ch != '=' {
			l.macroFunc = true
			return token.Token{Kind: token.PortabilityFunction, Text: name, Pos: pos, Spaced: spaced}, nil
		}
		if !l.macroFunc {
			return token.Token{}, errorf(pos, "portability argument %q before the operation name", name)
		}
		l.readChar()
		val, err := l.readMacroValue(name)
		if err != nil {
			return token.Token{}, err
		}
		return token.Token{Kind: token.PortabilityArg, Text: name + "=" + val, Pos: pos}, nil

	default:
		return token.Token{}, errorf(pos, "unexpected %q in portability macro", l.ch)
	}
}

// readMacroValue reads the value of a key=value pair. Values are either a
// single-quoted string or a run of characters up to whitespace or ']'.
func (l *Lexer) readMacroValue(key string) (string, error) {
	if l.ch == '\'' {
		text, err := l.readString()
		if err != nil {
			return "", err
		}
		return strings.ReplaceAll(text[1:len(text)-1], "''", "'"), nil
	}
	start := l.pos
	for !l.eof() && !isSpace(l.ch) && l.ch != ']' {
		l.readChar()
	}
	if l.pos == start {
		return "", errorf(l.currentPos(), "missing value for portability argument %q", key)
	}
	return l.input[start:l.pos], nil
}

// skipWhitespaceAndComments skips whitespace, -- line comments and /* */
// block comments, reporting whether anything was skipped.
func (l *Lexer) skipWhitespaceAndComments() (bool, error) {
	skipped := false
	for !l.eof() {
		switch {
		case isSpace(l.ch):
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for !l.eof() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			pos := l.currentPos()
			l.readChar()
			l.readChar()
			for !(l.ch == '*' && l.peekChar() == '/') {
				if l.eof() {
					return false, errorf(pos, ErrUnterminatedComment)
				}
				l.readChar()
			}
			l.readChar()
			l.readChar()
		default:
			return skipped, nil
		}
		skipped = true
	}
	return skipped, nil
}

// readString reads a single-quoted string literal, quotes included.
// An embedded quote is written as ''.
func (l *Lexer) readString() (string, error) {
	pos := l.currentPos()
	start := l.pos
	l.readChar()
	for {
		if l.eof() {
			return "", errorf(pos, ErrUnterminatedString)
		}
		if l.ch == '\'' {
			if l.peekChar() == '\'' {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return l.input[start:l.pos], nil
		}
		l.readChar()
	}
}

// readQuotedIdentifier reads a "quoted" identifier, quotes included.
func (l *Lexer) readQuotedIdentifier() (string, error) {
	pos := l.currentPos()
	start := l.pos
	l.readChar()
	for {
		if l.eof() {
			return "", errorf(pos, ErrUnterminatedIdent)
		}
		if l.ch == '"' {
			if l.peekChar() == '"' {
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return l.input[start:l.pos], nil
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for !l.eof() && isIdentChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads an optionally signed integer or float literal.
func (l *Lexer) readNumber() (string, token.Kind) {
	start := l.pos
	kind := token.IntegerLiteral
	if l.ch == '+' || l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' {
		kind = token.FloatLiteral
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	if (l.ch == 'e' || l.ch == 'E') && l.exponentFollows() {
		kind = token.FloatLiteral
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.pos], kind
}

func (l *Lexer) exponentFollows() bool {
	next := l.peekChar()
	if next == '+' || next == '-' {
		return isDigit(l.peekAt(1))
	}
	return isDigit(next)
}

func (l *Lexer) numberFollowsSign() bool {
	next := l.peekChar()
	return isDigit(next) || (next == '.' && isDigit(l.peekAt(1)))
}

// signAllowed reports whether a + or - at the current position starts a
// signed literal rather than acting as a binary operator.
func (l *Lexer) signAllowed() bool {
	if !l.seen {
		return true
	}
	switch l.prev {
	case token.Operator, token.SpecialChar, token.OpenParen, token.EndOfStatement:
		return true
	default:
		return false
	}
}

func (l *Lexer) readOperator() (string, bool) {
	two := ""
	if l.readPos < len(l.input) {
		two = l.input[l.pos : l.readPos+1]
	}
	switch two {
	case "<=", ">=", "<>", "!=", "||":
		l.readChar()
		l.readChar()
		return two, true
	}
	switch l.ch {
	case '+', '-', '*', '/', '%', '=', '<', '>', '|', '&', '^', '~', '!':
		op := string(l.ch)
		l.readChar()
		return op, true
	}
	return "", false
}

// readRune consumes one character. Multi-byte UTF-8 sequences outside
// identifiers are kept together.
func (l *Lexer) readRune() string {
	start := l.pos
	l.readChar()
	for !l.eof() && l.ch&0xC0 == 0x80 {
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// isIdentStart accepts non-ASCII bytes so UTF-8 identifiers stay in one word.
func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_' || ch >= 0x80
}

func isIdentChar(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$' || ch == '#'
}

func isBindStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isBindChar(ch byte) bool {
	return isBindStart(ch) || isDigit(ch)
}

// Tokens returns an iterator over the tokens of input. Iteration stops at
// the first error, which is yielded with a zero token.
func Tokens(input string) iter.Seq2[token.Token, error] {
	return func(yield func(token.Token, error) bool) {
		l := New(input)
		for {
			tok, err := l.Next()
			if err != nil {
				yield(token.Token{}, err)
				return
			}
			if tok.Kind == token.EOF {
				return
			}
			if !yield(tok, nil) {
				return
			}
		}
	}
}

// Tokenize returns all tokens of input, excluding the final EOF.
func Tokenize(input string) ([]token.Token, error) {
	var tokens []token.Token
	for tok, err := range Tokens(input) {
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
