package lexer

import (
	"fmt"

	"github.com/leapstack-labs/portsql/pkg/token"
)

// Error is a scan error with the position it was detected at.
type Error struct {
	Pos     token.Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("scan error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

func errorf(pos token.Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Common error messages
const (
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedIdent   = "unterminated quoted identifier"
	ErrUnterminatedComment = "unterminated block comment"
	ErrUnterminatedMacro   = "unterminated portability macro"
	ErrUnbalancedClose     = "unbalanced parentheses: unexpected ')'"
	ErrUnbalancedOpen      = "unbalanced parentheses: %d left open at %s"
)
