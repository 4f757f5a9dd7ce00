package querylang

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/pythia/internal/spandist"
)

// TokenKind identifies the type of lexical token.
type TokenKind int

const (
	TokEOF    TokenKind = iota
	TokWord             // bare word: name, number or unquoted value
	TokString           // double-quoted value, quotes kept in Lit
	TokOp               // pair operator
	TokLBrack           // [
	TokRBrack           // ]
	TokLParen           // (
	TokRParen           // )
	TokComma            // ,
	TokSemi             // ;
	TokAt               // @
	TokAtAt             // @@
	TokDollar           // $
	TokAnd              // AND
	TokOr               // OR
	TokNot              // NOT
	TokAndNot           // ANDNOT
	TokOrNot            // ORNOT
	TokLocop            // NEAR, BEFORE, ... and their NOT-prefixed forms
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokWord:
		return "WORD"
	case TokString:
		return "STRING"
	case TokOp:
		return "OPERATOR"
	case TokLBrack:
		return "["
	case TokRBrack:
		return "]"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	case TokComma:
		return ","
	case TokSemi:
		return ";"
	case TokAt:
		return "@"
	case TokAtAt:
		return "@@"
	case TokDollar:
		return "$"
	case TokAnd:
		return "AND"
	case TokOr:
		return "OR"
	case TokNot:
		return "NOT"
	case TokAndNot:
		return "ANDNOT"
	case TokOrNot:
		return "ORNOT"
	case TokLocop:
		return "LOCOP"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Kind TokenKind
	Lit  string
	Pos  Pos

	Op      Operator          // TokOp
	Locop   spandist.Operator // TokLocop
	Negated bool              // TokLocop written as NOTxxx
}

// Lexer tokenizes a query string.
type Lexer struct {
	input string
	pos   int
	line  int
	col   int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize returns every token of input, ending with TokEOF.
func Tokenize(input string) ([]Token, error) {
	lex := NewLexer(input)
	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			return tokens, nil
		}
	}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.mark(0)}, nil
	}

	ch := l.input[l.pos]
	switch ch {
	case '[':
		return l.single(TokLBrack), nil
	case ']':
		return l.single(TokRBrack), nil
	case '(':
		return l.single(TokLParen), nil
	case ')':
		return l.single(TokRParen), nil
	case ',':
		return l.single(TokComma), nil
	case ';':
		return l.single(TokSemi), nil
	case '@':
		if l.peek(1) == '@' {
			return l.emit(TokAtAt, 2), nil
		}
		return l.single(TokAt), nil
	case '"':
		return l.scanString()
	case '=':
		if l.peek(1) == '=' {
			return l.op(OpNumEq, 2), nil
		}
		return l.op(OpEq, 1), nil
	case '<':
		switch l.peek(1) {
		case '=':
			return l.op(OpLte, 2), nil
		case '>':
			return l.op(OpNeq, 2), nil
		}
		return l.op(OpLt, 1), nil
	case '>':
		if l.peek(1) == '=' {
			return l.op(OpGte, 2), nil
		}
		return l.op(OpGt, 1), nil
	case '$':
		if l.peek(1) == '=' {
			return l.op(OpEndsWith, 2), nil
		}
		return l.single(TokDollar), nil
	case '!', '*', '^', '~', '?', '%':
		if l.peek(1) != '=' {
			return Token{}, syntaxError(l.mark(1), ErrSyntax, "unexpected character %q", ch)
		}
		return l.op(compoundOps[ch], 2), nil
	}

	if r, _ := utf8.DecodeRuneInString(l.input[l.pos:]); isWordRune(r) {
		return l.scanWord(), nil
	}

	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, syntaxError(l.mark(size), ErrSyntax, "unexpected character %q", r)
}

var compoundOps = map[byte]Operator{
	'!': OpNumNeq,
	'*': OpContains,
	'^': OpStartsWith,
	'~': OpRegexp,
	'?': OpWildcards,
	'%': OpSimilar,
}

var keywords = map[string]TokenKind{
	"AND":    TokAnd,
	"OR":     TokOr,
	"NOT":    TokNot,
	"ANDNOT": TokAndNot,
	"ORNOT":  TokOrNot,
}

func (l *Lexer) peek(ahead int) byte {
	if l.pos+ahead < len(l.input) {
		return l.input[l.pos+ahead]
	}
	return 0
}

// mark returns the position of the next size bytes without consuming them.
func (l *Lexer) mark(size int) Pos {
	return Pos{Line: l.line, Column: l.col, Offset: l.pos, Length: size}
}

// advance consumes size bytes, tracking line and column.
func (l *Lexer) advance(size int) {
	end := l.pos + size
	for l.pos < end {
		r, n := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += n
		if r == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
}

func (l *Lexer) emit(kind TokenKind, size int) Token {
	tok := Token{Kind: kind, Lit: l.input[l.pos : l.pos+size], Pos: l.mark(size)}
	l.advance(size)
	return tok
}

func (l *Lexer) single(kind TokenKind) Token {
	return l.emit(kind, 1)
}

func (l *Lexer) op(op Operator, size int) Token {
	tok := l.emit(TokOp, size)
	tok.Op = op
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, n := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.advance(n)
	}
}

// scanString scans a double-quoted value. Quotes cannot be escaped inside
// values; use the &0022; entity instead.
func (l *Lexer) scanString() (Token, error) {
	end := strings.IndexByte(l.input[l.pos+1:], '"')
	if end < 0 {
		return Token{}, syntaxError(l.mark(len(l.input)-l.pos), ErrUnterminatedString, "unterminated string")
	}
	return l.emit(TokString, end+2), nil
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) ||
		r == '_' || r == '-' || r == '.' || r == ':' || r == '\''
}

func (l *Lexer) scanWord() Token {
	size := 0
	for l.pos+size < len(l.input) {
		r, n := utf8.DecodeRuneInString(l.input[l.pos+size:])
		if !isWordRune(r) {
			break
		}
		size += n
	}

	tok := l.emit(TokWord, size)
	if kind, ok := keywords[tok.Lit]; ok {
		tok.Kind = kind
		return tok
	}

	keyword, negated := tok.Lit, false
	if rest, ok := strings.CutPrefix(keyword, "NOT"); ok {
		keyword, negated = rest, true
	}
	if op, ok := spandist.ParseOperator(keyword); ok {
		tok.Kind = TokLocop
		tok.Locop = op
		tok.Negated = negated
	}
	return tok
}
