package querylang

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a query error.
type ErrorCode string

const (
	// CodeSyntax marks lexical and grammar errors, raised before compilation.
	CodeSyntax ErrorCode = "SYNTAX"

	// CodeValidation marks semantic errors found while compiling a parsed query.
	CodeValidation ErrorCode = "VALIDATION"

	// CodeDialect marks constructs the target SQL dialect cannot express.
	CodeDialect ErrorCode = "DIALECT"
)

// Lexer and parser errors.
var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnterminatedString = errors.New("unterminated string")
	ErrUnexpectedToken    = errors.New("unexpected token")
	ErrEmptyQuery         = errors.New("empty query")
)

// Validation errors.
var (
	ErrMissingValue         = errors.New("missing pair value")
	ErrInvalidOperator      = errors.New("invalid operator")
	ErrInvalidNumber        = errors.New("invalid numeric value")
	ErrInvalidArgument      = errors.New("invalid location argument")
	ErrArgumentRange        = errors.New("minimum greater than maximum")
	ErrSharedContextNegated = errors.New("shared context with negated operator")
	ErrNoPrecedingStructure = errors.New("no preceding structure pair")
	ErrShortPrivilegedPair  = errors.New("privileged attribute without operator")
	ErrInvalidSortField     = errors.New("invalid sort field")
)

// Pos locates a token in the query text. Line and Column are 1-based,
// Offset and Length are in bytes.
type Pos struct {
	Line   int
	Column int
	Offset int
	Length int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Error is a query error carrying the position of the offending token.
type Error struct {
	Code    ErrorCode
	Message string
	Pos     Pos
	Err     error // sentinel, for errors.Is
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error at %s: %s", e.Code, e.Pos, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an Error at pos wrapping the given sentinel.
func NewError(code ErrorCode, pos Pos, err error, msgFmt string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(msgFmt, args...),
		Pos:     pos,
		Err:     err,
	}
}

func syntaxError(pos Pos, err error, msgFmt string, args ...any) *Error {
	return NewError(CodeSyntax, pos, err, msgFmt, args...)
}

// IsSyntaxError reports whether err is a grammar-level query error.
func IsSyntaxError(err error) bool {
	return hasCode(err, CodeSyntax)
}

// IsValidationError reports whether err is a semantic query error.
func IsValidationError(err error) bool {
	return hasCode(err, CodeValidation)
}

// IsDialectError reports whether err was raised by the SQL dialect.
func IsDialectError(err error) bool {
	return hasCode(err, CodeDialect)
}

func hasCode(err error, code ErrorCode) bool {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}
