// Package token defines the lexical tokens of the portable SQL dialect.
//
// The set is deliberately small: the translator only needs to find macros,
// bind parameters, literals and statement boundaries, so keywords are plain
// words and every punctuation character outside an operator is a SpecialChar.
package token

import (
	"fmt"
	"strings"
)

// Kind identifies the class of a lexical token.
type Kind int32

const (
	// EOF marks the end of input. It is never part of a statement.
	EOF Kind = iota

	Word                // identifiers, keywords and "quoted" identifiers
	Operator            // + - * / % = < > <= >= <> != || :: and friends
	SpecialChar         // , . ? [ ] and any other single character
	BindParameter       // :name
	PortabilityFunction // the op name inside [: ... ]
	PortabilityArg      // key=value inside [: ... ]
	EndOfStatement      // ;
	OpenParen           // (
	CloseParen          // )
	IntegerLiteral      // 42, -7
	FloatLiteral        // 1.5, .5, 1e9
	StringLiteral       // 'it''s'
)

var kindNames = map[Kind]string{
	EOF:                 "EOF",
	Word:                "Word",
	Operator:            "Operator",
	SpecialChar:         "SpecialChar",
	BindParameter:       "BindParameter",
	PortabilityFunction: "PortabilityFunction",
	PortabilityArg:      "PortabilityArg",
	EndOfStatement:      "EndOfStatement",
	OpenParen:           "OpenParen",
	CloseParen:          "CloseParen",
	IntegerLiteral:      "IntegerLiteral",
	FloatLiteral:        "FloatLiteral",
	StringLiteral:       "StringLiteral",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int32(k))
}

// IsLiteral reports whether the kind is a numeric or string literal.
func (k Kind) IsLiteral() bool {
	return k == IntegerLiteral || k == FloatLiteral || k == StringLiteral
}

// Token is a single lexical token.
type Token struct {
	Kind Kind
	Text string   // source text; bind parameters keep the leading colon
	Pos  Position // position of the first byte of Text

	// Spaced is set when whitespace or a comment separated this token from
	// the previous one in the source.
	Spaced bool
}

// Name returns the logical name of a BindParameter or PortabilityFunction.
// For a PortabilityArg it returns the key.
func (t Token) Name() string {
	switch t.Kind {
	case BindParameter:
		return strings.TrimPrefix(t.Text, ":")
	case PortabilityArg:
		key, _, _ := strings.Cut(t.Text, "=")
		return key
	default:
		return t.Text
	}
}

// Value returns the value half of a PortabilityArg token.
func (t Token) Value() string {
	if t.Kind != PortabilityArg {
		return ""
	}
	_, val, _ := strings.Cut(t.Text, "=")
	return val
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Text, t.Pos)
}
