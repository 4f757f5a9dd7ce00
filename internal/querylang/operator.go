package querylang

// Operator is a pair comparison operator. OpNone marks a pair that only
// tests for the presence of an attribute.
type Operator int

const (
	OpNone       Operator = iota
	OpEq                  // =
	OpNeq                 // <>
	OpContains            // *=
	OpStartsWith          // ^=
	OpEndsWith            // $=
	OpWildcards           // ?=
	OpRegexp              // ~=
	OpSimilar             // %=
	OpNumEq               // ==
	OpNumNeq              // !=
	OpLt                  // <
	OpLte                 // <=
	OpGt                  // >
	OpGte                 // >=
)

var operatorInfo = map[Operator]struct {
	symbol string
	name   string
}{
	OpEq:         {"=", "EQ"},
	OpNeq:        {"<>", "NEQ"},
	OpContains:   {"*=", "CONTAINS"},
	OpStartsWith: {"^=", "STARTSWITH"},
	OpEndsWith:   {"$=", "ENDSWITH"},
	OpWildcards:  {"?=", "WILDCARDS"},
	OpRegexp:     {"~=", "REGEXP"},
	OpSimilar:    {"%=", "SIMILAR"},
	OpNumEq:      {"==", "EQN"},
	OpNumNeq:     {"!=", "NEQN"},
	OpLt:         {"<", "LT"},
	OpLte:        {"<=", "LTEQ"},
	OpGt:         {">", "GT"},
	OpGte:        {">=", "GTEQ"},
}

// Symbol returns the operator as written in a query.
func (op Operator) Symbol() string {
	return operatorInfo[op].symbol
}

func (op Operator) String() string {
	if info, ok := operatorInfo[op]; ok {
		return info.name
	}
	return "NONE"
}

// IsNumeric reports whether op always compares numbers.
func (op Operator) IsNumeric() bool {
	return op >= OpNumEq && op <= OpGte
}

// SQL returns the SQL comparison for a numeric operator.
func (op Operator) SQL() string {
	switch op {
	case OpNumEq:
		return "="
	case OpNumNeq:
		return "<>"
	default:
		return op.Symbol()
	}
}

// BoolOp is a set operator between two query expressions.
type BoolOp int

const (
	BoolAnd BoolOp = iota + 1
	BoolOr
	BoolAndNot
	BoolOrNot // document sets only
)

func (op BoolOp) String() string {
	switch op {
	case BoolAnd:
		return "AND"
	case BoolOr:
		return "OR"
	case BoolAndNot:
		return "AND NOT"
	case BoolOrNot:
		return "OR NOT"
	default:
		return "UNKNOWN"
	}
}
