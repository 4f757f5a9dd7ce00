package querysql

import (
	"fmt"

	"github.com/roach88/pythia/internal/querylang"
)

type fragmentKind int

const (
	fragTable    fragmentKind = iota // name of a pair CTE
	fragSelect                       // a single SELECT statement
	fragCompound                     // two statements joined by a set operator
)

// fragment is a composed piece of the result set.
type fragment struct {
	kind fragmentKind
	sql  string
}

var setOperators = map[querylang.BoolOp]string{
	querylang.BoolAnd:    "INTERSECT",
	querylang.BoolOr:     "UNION",
	querylang.BoolAndNot: "EXCEPT",
}

// composer combines pair CTEs bottom-up using an explicit fragment stack.
type composer struct {
	c     *compilation
	stack []fragment
}

func (p *composer) push(f fragment) {
	p.stack = append(p.stack, f)
}

func (p *composer) pop() fragment {
	f := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return f
}

// compose returns the body of the root CTE for expr.
func (c *compilation) compose(expr querylang.TextExpr) (string, error) {
	p := &composer{c: c}
	if err := p.visit(expr); err != nil {
		return "", err
	}
	if len(p.stack) != 1 {
		return "", fmt.Errorf("composer left %d fragments on the stack", len(p.stack))
	}
	root := p.pop()
	if root.kind == fragCompound {
		return root.sql, nil
	}
	return p.asSelect(root), nil
}

func (p *composer) visit(expr querylang.TextExpr) error {
	switch e := expr.(type) {
	case *querylang.Pair:
		name, ok := p.c.pairNames[e]
		if !ok {
			return fmt.Errorf("pair %s at %s was not compiled", e, e.Pos)
		}
		p.push(fragment{kind: fragTable, sql: name})
		return nil

	case *querylang.BooleanExpr:
		if err := p.visit(e.Left); err != nil {
			return err
		}
		if err := p.visit(e.Right); err != nil {
			return err
		}
		op, ok := setOperators[e.Op]
		if !ok {
			return validationError(e.Pos, querylang.ErrInvalidOperator, "%s is not valid between text expressions", e.Op)
		}
		right, left := p.pop(), p.pop()
		p.push(fragment{
			kind: fragCompound,
			sql:  p.asSelect(left) + "\n" + op + "\n" + p.asSelect(right),
		})
		return nil

	case *querylang.LocationExpr:
		if err := p.visit(e.Left); err != nil {
			return err
		}
		if err := p.visit(e.Right); err != nil {
			return err
		}
		right, left := p.pop(), p.pop()
		f, err := p.location(e, left, right)
		if err != nil {
			return err
		}
		p.push(f)
		return nil

	default:
		return fmt.Errorf("unsupported text expression: %T", expr)
	}
}

func (p *composer) location(loc *querylang.LocationExpr, left, right fragment) (fragment, error) {
	args, err := resolveLocationArgs(loc)
	if err != nil {
		return fragment{}, err
	}

	leftSrc, leftName := p.asSource(left)
	rightSrc, rightName := p.asSource(right)

	pred, err := p.c.predicate(loc, args, leftName, rightName)
	if err != nil {
		return fragment{}, err
	}

	if loc.Negated {
		return fragment{kind: fragSelect, sql: "SELECT * FROM " + leftSrc + "\n" +
			"WHERE NOT EXISTS (SELECT 1 FROM " + rightSrc +
			" WHERE " + rightName + ".document_id=" + leftName + ".document_id" +
			" AND " + pred + ")"}, nil
	}
	return fragment{kind: fragSelect, sql: "SELECT DISTINCT " + leftName + ".* FROM " + leftSrc + "\n" +
		"INNER JOIN " + rightSrc +
		" ON " + leftName + ".document_id=" + rightName + ".document_id" +
		" AND " + pred}, nil
}

// asSelect renders f as a statement usable as a set operator operand.
func (p *composer) asSelect(f fragment) string {
	switch f.kind {
	case fragTable:
		return "SELECT * FROM " + f.sql
	case fragCompound:
		src, _ := p.asSource(f)
		return "SELECT * FROM " + src
	default:
		return f.sql
	}
}

// asSource renders f as a FROM item, returning it with the name that
// qualifies its columns. Anything but a CTE name gets a fresh alias.
func (p *composer) asSource(f fragment) (string, string) {
	if f.kind == fragTable {
		return f.sql, f.sql
	}
	p.c.aliases++
	alias := fmt.Sprintf("q%d", p.c.aliases)
	return "(\n" + f.sql + "\n) AS " + alias, alias
}
