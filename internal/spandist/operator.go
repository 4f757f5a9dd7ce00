package spandist

import "fmt"

// Operator identifies a location operator.
type Operator int

const (
	OpNear Operator = iota + 1
	OpBefore
	OpAfter
	OpOverlaps
	OpInside
	OpLeftAlign
	OpRightAlign
)

var operatorNames = map[Operator]string{
	OpNear:       "NEAR",
	OpBefore:     "BEFORE",
	OpAfter:      "AFTER",
	OpOverlaps:   "OVERLAPS",
	OpInside:     "INSIDE",
	OpLeftAlign:  "LALIGN",
	OpRightAlign: "RALIGN",
}

// Operators lists every operator in declaration order.
func Operators() []Operator {
	return []Operator{OpNear, OpBefore, OpAfter, OpOverlaps, OpInside, OpLeftAlign, OpRightAlign}
}

// ParseOperator maps a query keyword (e.g. "NEAR") to its Operator.
func ParseOperator(keyword string) (Operator, bool) {
	for op, name := range operatorNames {
		if name == keyword {
			return op, true
		}
	}
	return 0, false
}

func (op Operator) String() string {
	if name, ok := operatorNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(op))
}

// Bounds holds the defaulted distance arguments of a location operator.
// N and M apply to every operator except OpInside, which uses the start
// (NS, MS) and end (NE, ME) windows.
type Bounds struct {
	N, M   int
	NS, MS int
	NE, ME int
}

// DefaultBounds returns bounds that accept any distance.
func DefaultBounds() Bounds {
	return Bounds{M: Unbounded, MS: Unbounded, ME: Unbounded}
}

// Eval evaluates op between a and b.
func Eval(op Operator, a, b Range, bounds Bounds) (bool, error) {
	switch op {
	case OpNear:
		return NearWithin(a.P1, a.P2, b.P1, b.P2, bounds.N, bounds.M), nil
	case OpBefore:
		return BeforeWithin(a.P1, a.P2, b.P1, b.P2, bounds.N, bounds.M), nil
	case OpAfter:
		return AfterWithin(a.P1, a.P2, b.P1, b.P2, bounds.N, bounds.M), nil
	case OpOverlaps:
		return OverlapsWithin(a.P1, a.P2, b.P1, b.P2, bounds.N, bounds.M), nil
	case OpInside:
		return InsideWithin(a.P1, a.P2, b.P1, b.P2, bounds.NS, bounds.MS, bounds.NE, bounds.ME), nil
	case OpLeftAlign:
		return LeftAligned(a.P1, b.P1, bounds.N, bounds.M), nil
	case OpRightAlign:
		return RightAligned(a.P2, b.P2, bounds.N, bounds.M), nil
	default:
		return false, fmt.Errorf("unknown location operator: %v", op)
	}
}
