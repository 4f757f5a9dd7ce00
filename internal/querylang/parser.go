package querylang

import (
	"strconv"
	"strings"

	"github.com/roach88/pythia/internal/spandist"
)

// Parser parses a query string into an AST.
//
// Grammar (EBNF):
//
//	query      = [ corpus_set ";" ] [ doc_set ";" ] text_or EOF
//	corpus_set = "@@" WORD ( [ "," ] WORD )*
//	doc_set    = "@" [ doc_or ]
//	doc_or     = doc_and ( ( "OR" | "OR NOT" ) doc_and )*
//	doc_and    = doc_prim ( ( "AND" | "AND NOT" ) doc_prim )*
//	doc_prim   = "(" doc_or ")" | pair
//	text_or    = text_and ( "OR" text_and )*
//	text_and   = text_loc ( ( "AND" | "AND NOT" ) text_loc )*
//	text_loc   = text_prim ( locop text_prim )*
//	text_prim  = "(" text_or ")" | pair
//	pair       = "[" [ "$" ] WORD [ OP [ STRING | WORD ] ] "]"
//	locop      = [ "NOT" ] LOCOP "(" [ arg ( "," arg )* ] ")"
//	arg        = WORD "=" WORD
//
// Precedence (highest to lowest):
//  1. Parentheses
//  2. Location operators
//  3. AND, AND NOT
//  4. OR, OR NOT
//
// All binary operators are left-associative.
type parser struct {
	tokens []Token
	idx    int
}

// Parse parses a query string into an AST.
func Parse(input string) (*Query, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	if p.cur().Kind == TokEOF {
		return nil, syntaxError(p.cur().Pos, ErrEmptyQuery, "empty query")
	}

	q := &Query{}
	if p.cur().Kind == TokAtAt {
		if q.Corpora, err = p.parseCorpusSet(); err != nil {
			return nil, err
		}
		if err := p.expect(TokSemi); err != nil {
			return nil, err
		}
	}
	if p.cur().Kind == TokAt {
		if q.Documents, err = p.parseDocumentSet(); err != nil {
			return nil, err
		}
		if err := p.expect(TokSemi); err != nil {
			return nil, err
		}
	}

	if q.Text, err = p.parseTextOr(); err != nil {
		return nil, err
	}
	if p.cur().Kind != TokEOF {
		return nil, p.unexpected()
	}
	return q, nil
}

func (p *parser) cur() Token {
	return p.tokens[p.idx]
}

func (p *parser) peek() Token {
	if p.idx+1 < len(p.tokens) {
		return p.tokens[p.idx+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() Token {
	tok := p.tokens[p.idx]
	if tok.Kind != TokEOF {
		p.idx++
	}
	return tok
}

func (p *parser) expect(kind TokenKind) error {
	if p.cur().Kind != kind {
		return syntaxError(p.cur().Pos, ErrUnexpectedToken, "expected %s, found %s", kind, describe(p.cur()))
	}
	p.advance()
	return nil
}

func (p *parser) unexpected() error {
	return syntaxError(p.cur().Pos, ErrUnexpectedToken, "unexpected %s", describe(p.cur()))
}

func describe(tok Token) string {
	if tok.Kind == TokEOF {
		return "end of query"
	}
	return strconv.Quote(tok.Lit)
}

// span returns a position covering from start to the end of the previous token.
func (p *parser) span(start Pos) Pos {
	last := p.tokens[max(p.idx-1, 0)].Pos
	start.Length = last.Offset + last.Length - start.Offset
	return start
}

func (p *parser) parseCorpusSet() (*CorpusSet, error) {
	set := &CorpusSet{Pos: p.advance().Pos}
	for {
		if p.cur().Kind != TokWord {
			return nil, syntaxError(p.cur().Pos, ErrUnexpectedToken, "expected corpus id, found %s", describe(p.cur()))
		}
		set.IDs = append(set.IDs, p.advance().Lit)
		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		if p.cur().Kind != TokWord {
			break
		}
	}
	set.Pos = p.span(set.Pos)
	return set, nil
}

func (p *parser) parseDocumentSet() (*DocumentSet, error) {
	set := &DocumentSet{Pos: p.advance().Pos}
	if p.cur().Kind == TokSemi {
		return set, nil
	}
	expr, err := p.parseDocOr()
	if err != nil {
		return nil, err
	}
	set.Expr = expr
	set.Pos = p.span(set.Pos)
	return set, nil
}

func (p *parser) parseDocOr() (DocExpr, error) {
	left, err := p.parseDocAnd()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.boolOp(TokOr, TokOrNot, BoolOr, BoolOrNot)
		if !ok {
			return left, nil
		}
		right, err := p.parseDocAnd()
		if err != nil {
			return nil, err
		}
		left = &DocBinary{Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseDocAnd() (DocExpr, error) {
	left, err := p.parseDocPrimary()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.boolOp(TokAnd, TokAndNot, BoolAnd, BoolAndNot)
		if !ok {
			return left, nil
		}
		right, err := p.parseDocPrimary()
		if err != nil {
			return nil, err
		}
		left = &DocBinary{Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseDocPrimary() (DocExpr, error) {
	switch p.cur().Kind {
	case TokLParen:
		p.advance()
		expr, err := p.parseDocOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBrack:
		return p.parsePair()
	default:
		return nil, p.unexpected()
	}
}

// boolOp consumes a binary set operator spelled either as plain (AND),
// joined (ANDNOT) or split (AND NOT).
func (p *parser) boolOp(plain, joined TokenKind, plainOp, negOp BoolOp) (BoolOp, Pos, bool) {
	tok := p.cur()
	switch tok.Kind {
	case joined:
		p.advance()
		return negOp, tok.Pos, true
	case plain:
		p.advance()
		if p.cur().Kind == TokNot {
			p.advance()
			return negOp, p.span(tok.Pos), true
		}
		return plainOp, tok.Pos, true
	default:
		return 0, Pos{}, false
	}
}

func (p *parser) parseTextOr() (TextExpr, error) {
	left, err := p.parseTextAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == TokOr {
		pos := p.advance().Pos
		right, err := p.parseTextAnd()
		if err != nil {
			return nil, err
		}
		left = &BooleanExpr{Op: BoolOr, Left: left, Right: right, Pos: pos}
	}
	return left, nil
}

func (p *parser) parseTextAnd() (TextExpr, error) {
	left, err := p.parseTextLocation()
	if err != nil {
		return nil, err
	}
	for {
		op, pos, ok := p.boolOp(TokAnd, TokAndNot, BoolAnd, BoolAndNot)
		if !ok {
			return left, nil
		}
		right, err := p.parseTextLocation()
		if err != nil {
			return nil, err
		}
		left = &BooleanExpr{Op: op, Left: left, Right: right, Pos: pos}
	}
}

func (p *parser) parseTextLocation() (TextExpr, error) {
	left, err := p.parseTextPrimary()
	if err != nil {
		return nil, err
	}
	for p.isLocopStart() {
		loc, err := p.parseLocop()
		if err != nil {
			return nil, err
		}
		right, err := p.parseTextPrimary()
		if err != nil {
			return nil, err
		}
		loc.Left, loc.Right = left, right
		left = loc
	}
	return left, nil
}

func (p *parser) isLocopStart() bool {
	switch p.cur().Kind {
	case TokLocop:
		return true
	case TokNot:
		return p.peek().Kind == TokLocop
	default:
		return false
	}
}

func (p *parser) parseTextPrimary() (TextExpr, error) {
	switch p.cur().Kind {
	case TokLParen:
		p.advance()
		expr, err := p.parseTextOr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return expr, nil
	case TokLBrack:
		return p.parsePair()
	default:
		return nil, p.unexpected()
	}
}

func (p *parser) parsePair() (*Pair, error) {
	pair := &Pair{Pos: p.advance().Pos}

	if p.cur().Kind == TokDollar {
		p.advance()
		pair.Prefix = PrefixStructure
	}

	name := p.cur()
	if name.Kind != TokWord {
		return nil, syntaxError(name.Pos, ErrUnexpectedToken, "expected attribute name, found %s", describe(name))
	}
	p.advance()
	pair.Name = name.Lit
	if pair.Prefix == PrefixNone && len(pair.Name) > 1 && strings.HasPrefix(pair.Name, "_") {
		pair.Prefix = PrefixStructAttribute
		pair.Name = pair.Name[1:]
	}

	if p.cur().Kind == TokOp {
		pair.Op = p.advance().Op
		if value := p.cur(); value.Kind == TokString || value.Kind == TokWord {
			p.advance()
			pair.Value = DecodeValue(value.Lit)
			pair.HasValue = true
			pair.ValuePos = value.Pos
		}
	}

	if err := p.expect(TokRBrack); err != nil {
		return nil, err
	}
	pair.Pos = p.span(pair.Pos)
	return pair, nil
}

var locationArgs = map[string]bool{"n": true, "m": true, "ns": true, "ms": true, "ne": true, "me": true, "s": true}

func (p *parser) parseLocop() (*LocationExpr, error) {
	loc := &LocationExpr{Pos: p.cur().Pos}
	if p.cur().Kind == TokNot {
		p.advance()
		loc.Negated = true
	}
	tok := p.advance()
	if loc.Negated && tok.Negated {
		return nil, syntaxError(tok.Pos, ErrUnexpectedToken, "unexpected %s after NOT", describe(tok))
	}
	loc.Op = tok.Locop
	loc.Negated = loc.Negated || tok.Negated
	loc.Pos = p.span(loc.Pos)

	if err := p.expect(TokLParen); err != nil {
		return nil, err
	}
	if p.cur().Kind == TokRParen {
		p.advance()
		return loc, nil
	}

	for {
		arg, err := p.parseLocationArg(loc.Op)
		if err != nil {
			return nil, err
		}
		if _, dup := loc.Arg(arg.Name); dup {
			return nil, NewError(CodeValidation, arg.Pos, ErrInvalidArgument, "duplicate argument %q", arg.Name)
		}
		loc.Args = append(loc.Args, arg)

		if p.cur().Kind == TokComma {
			p.advance()
			continue
		}
		if err := p.expect(TokRParen); err != nil {
			return nil, err
		}
		return loc, nil
	}
}

func (p *parser) parseLocationArg(op spandist.Operator) (LocationArg, error) {
	name := p.cur()
	if name.Kind != TokWord || !locationArgs[name.Lit] {
		return LocationArg{}, syntaxError(name.Pos, ErrUnexpectedToken, "expected location argument, found %s", describe(name))
	}
	p.advance()

	if tok := p.cur(); tok.Kind != TokOp || tok.Op != OpEq {
		return LocationArg{}, syntaxError(tok.Pos, ErrUnexpectedToken, "expected =, found %s", describe(tok))
	}
	p.advance()

	value := p.cur()
	if value.Kind != TokWord {
		return LocationArg{}, syntaxError(value.Pos, ErrUnexpectedToken, "expected argument value, found %s", describe(value))
	}
	p.advance()

	arg := LocationArg{Name: name.Lit, Pos: name.Pos}
	arg.Pos.Length = value.Pos.Offset + value.Pos.Length - name.Pos.Offset

	if arg.Name == "s" {
		arg.Text = value.Lit
		return arg, nil
	}

	inside := op == spandist.OpInside
	if inside != (len(arg.Name) == 2) {
		return LocationArg{}, NewError(CodeValidation, arg.Pos, ErrInvalidArgument,
			"argument %q is not valid for %s", arg.Name, op)
	}

	n, err := strconv.Atoi(value.Lit)
	if err != nil || n < 0 || n > spandist.Unbounded {
		return LocationArg{}, NewError(CodeValidation, value.Pos, ErrInvalidArgument,
			"argument %q must be an integer between 0 and %d", arg.Name, spandist.Unbounded)
	}
	arg.Int = n
	return arg, nil
}
