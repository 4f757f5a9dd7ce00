package querylang

import (
	"fmt"
	"strings"

	"github.com/roach88/pythia/internal/spandist"
)

// Query is a parsed query.
type Query struct {
	Corpora   *CorpusSet   // nil when absent
	Documents *DocumentSet // nil when absent
	Text      TextExpr
}

// CorpusSet restricts matches to documents of the listed corpora.
type CorpusSet struct {
	IDs []string
	Pos Pos
}

// DocumentSet restricts matches to documents satisfying Expr. A nil Expr
// (written "@;") applies no filter.
type DocumentSet struct {
	Expr DocExpr
	Pos  Pos
}

// DocExpr is a node of a document set expression.
//
// This is a sealed interface; implementations are *Pair and *DocBinary.
type DocExpr interface {
	docNode()
	Position() Pos
}

// TextExpr is a node of the text expression.
//
// This is a sealed interface; implementations are *Pair, *BooleanExpr and
// *LocationExpr.
type TextExpr interface {
	textNode()
	Position() Pos
}

// PairPrefix marks how a pair name was prefixed.
type PairPrefix int

const (
	PrefixNone            PairPrefix = iota
	PrefixStructure                  // $name: a structure span
	PrefixStructAttribute            // _name: attribute of the preceding structure
)

// Pair is one bracketed attribute filter.
type Pair struct {
	Prefix   PairPrefix
	Name     string   // without prefix
	Op       Operator // OpNone for [name]
	Value    string   // decoded value
	HasValue bool
	Pos      Pos // whole pair, brackets included
	ValuePos Pos
}

// DocBinary combines two document set expressions.
type DocBinary struct {
	Op          BoolOp
	Left, Right DocExpr
	Pos         Pos // operator
}

// BooleanExpr combines two text expressions with a set operator.
type BooleanExpr struct {
	Op          BoolOp
	Left, Right TextExpr
	Pos         Pos // operator
}

// LocationArg is one name=value argument of a location operator. Int holds
// numeric values; Text holds the value of the shared-context argument s.
type LocationArg struct {
	Name string
	Int  int
	Text string
	Pos  Pos
}

// LocationExpr relates the spans matched by Left to those matched by Right.
type LocationExpr struct {
	Op          spandist.Operator
	Negated     bool
	Args        []LocationArg
	Left, Right TextExpr
	Pos         Pos // operator keyword
}

func (*Pair) docNode()          {}
func (*DocBinary) docNode()     {}
func (*Pair) textNode()         {}
func (*BooleanExpr) textNode()  {}
func (*LocationExpr) textNode() {}

func (p *Pair) Position() Pos         { return p.Pos }
func (d *DocBinary) Position() Pos    { return d.Pos }
func (b *BooleanExpr) Position() Pos  { return b.Pos }
func (l *LocationExpr) Position() Pos { return l.Pos }

// IsStructure reports whether the pair targets a structure span.
func (p *Pair) IsStructure() bool {
	return p.Prefix == PrefixStructure
}

// String renders the pair in a canonical form, e.g. $l EQ "x".
func (p *Pair) String() string {
	var sb strings.Builder
	switch p.Prefix {
	case PrefixStructure:
		sb.WriteByte('$')
	case PrefixStructAttribute:
		sb.WriteByte('_')
	}
	sb.WriteString(p.Name)
	if p.Op != OpNone {
		sb.WriteByte(' ')
		sb.WriteString(p.Op.String())
		if p.HasValue {
			fmt.Fprintf(&sb, " %q", p.Value)
		}
	}
	return sb.String()
}

// Arg returns the argument named name.
func (l *LocationExpr) Arg(name string) (LocationArg, bool) {
	for _, arg := range l.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return LocationArg{}, false
}

// String renders the operator with its arguments, e.g. NOT NEAR(n=0,m=5).
func (l *LocationExpr) String() string {
	var sb strings.Builder
	if l.Negated {
		sb.WriteString("NOT ")
	}
	sb.WriteString(l.Op.String())
	sb.WriteByte('(')
	for i, arg := range l.Args {
		if i > 0 {
			sb.WriteByte(',')
		}
		if arg.Name == "s" {
			fmt.Fprintf(&sb, "s=%s", arg.Text)
		} else {
			fmt.Fprintf(&sb, "%s=%d", arg.Name, arg.Int)
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// Walk visits every text pair of expr in source order.
func Walk(expr TextExpr, fn func(*Pair)) {
	switch e := expr.(type) {
	case *Pair:
		fn(e)
	case *BooleanExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *LocationExpr:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	}
}

// WalkDoc visits every document pair of expr in source order.
func WalkDoc(expr DocExpr, fn func(*Pair)) {
	switch e := expr.(type) {
	case *Pair:
		fn(e)
	case *DocBinary:
		WalkDoc(e.Left, fn)
		WalkDoc(e.Right, fn)
	}
}
