package querylang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pythia/internal/spandist"
)

func TestParse_SinglePair(t *testing.T) {
	q, err := Parse(`[value="sic"]`)
	require.NoError(t, err)
	assert.Nil(t, q.Corpora)
	assert.Nil(t, q.Documents)

	pair, ok := q.Text.(*Pair)
	require.True(t, ok)
	assert.Equal(t, "value", pair.Name)
	assert.Equal(t, OpEq, pair.Op)
	assert.Equal(t, "sic", pair.Value)
	assert.True(t, pair.HasValue)
	assert.Equal(t, Pos{Line: 1, Column: 1, Offset: 0, Length: 13}, pair.Pos)
	assert.Equal(t, Pos{Line: 1, Column: 8, Offset: 7, Length: 5}, pair.ValuePos)
}

func TestParse_PairForms(t *testing.T) {
	testCases := []struct {
		query    string
		prefix   PairPrefix
		name     string
		op       Operator
		value    string
		hasValue bool
	}{
		{`[$lg]`, PrefixStructure, "lg", OpNone, "", false},
		{`[$name="lg"]`, PrefixStructure, "name", OpEq, "lg", true},
		{`[_value="x"]`, PrefixStructAttribute, "value", OpEq, "x", true},
		{`[gn]`, PrefixNone, "gn", OpNone, "", false},
		{`[len>"9"]`, PrefixNone, "len", OpGt, "9", true},
		{`[len>=9]`, PrefixNone, "len", OpGte, "9", true},
		{`[value%="chommoda:0.5"]`, PrefixNone, "value", OpSimilar, "chommoda:0.5", true},
		{`[value?="ch*da"]`, PrefixNone, "value", OpWildcards, "ch*da", true},
		{`[value$="ter"]`, PrefixNone, "value", OpEndsWith, "ter", true},
		{`[value=]`, PrefixNone, "value", OpEq, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			q, err := Parse(tc.query)
			require.NoError(t, err)
			pair, ok := q.Text.(*Pair)
			require.True(t, ok)
			assert.Equal(t, tc.prefix, pair.Prefix)
			assert.Equal(t, tc.name, pair.Name)
			assert.Equal(t, tc.op, pair.Op)
			assert.Equal(t, tc.value, pair.Value)
			assert.Equal(t, tc.hasValue, pair.HasValue)
		})
	}
}

func TestParse_Sections(t *testing.T) {
	q, err := Parse(`@@Alpha, beta gamma;@[author="Catullus"] AND NOT [title*="carm"];[value="chommoda"]`)
	require.NoError(t, err)

	require.NotNil(t, q.Corpora)
	assert.Equal(t, []string{"Alpha", "beta", "gamma"}, q.Corpora.IDs)

	require.NotNil(t, q.Documents)
	bin, ok := q.Documents.Expr.(*DocBinary)
	require.True(t, ok)
	assert.Equal(t, BoolAndNot, bin.Op)
	assert.Equal(t, "author", bin.Left.(*Pair).Name)
	assert.Equal(t, "title", bin.Right.(*Pair).Name)

	_, ok = q.Text.(*Pair)
	assert.True(t, ok)
}

func TestParse_EmptyDocumentSet(t *testing.T) {
	q, err := Parse(`@;[value="a"]`)
	require.NoError(t, err)
	require.NotNil(t, q.Documents)
	assert.Nil(t, q.Documents.Expr)
}

func TestParse_DocumentPrecedence(t *testing.T) {
	q, err := Parse(`@[a="1"] OR [b="2"] AND [c="3"] ORNOT ([d="4"] OR [e="5"]);[x]`)
	require.NoError(t, err)

	root := q.Documents.Expr.(*DocBinary)
	assert.Equal(t, BoolOrNot, root.Op)

	left := root.Left.(*DocBinary)
	assert.Equal(t, BoolOr, left.Op)
	assert.Equal(t, "a", left.Left.(*Pair).Name)
	and := left.Right.(*DocBinary)
	assert.Equal(t, BoolAnd, and.Op)

	group := root.Right.(*DocBinary)
	assert.Equal(t, BoolOr, group.Op)
	assert.Equal(t, "d", group.Left.(*Pair).Name)
}

func TestParse_TextPrecedence(t *testing.T) {
	q, err := Parse(`[a] OR [b] AND [c] NEAR(n=0,m=5) [d]`)
	require.NoError(t, err)

	or := q.Text.(*BooleanExpr)
	assert.Equal(t, BoolOr, or.Op)
	and := or.Right.(*BooleanExpr)
	assert.Equal(t, BoolAnd, and.Op)
	loc := and.Right.(*LocationExpr)
	assert.Equal(t, spandist.OpNear, loc.Op)
	assert.Equal(t, "c", loc.Left.(*Pair).Name)
	assert.Equal(t, "d", loc.Right.(*Pair).Name)
}

func TestParse_BooleanOperators(t *testing.T) {
	testCases := []struct {
		query string
		want  BoolOp
	}{
		{`[a] AND [b]`, BoolAnd},
		{`[a] OR [b]`, BoolOr},
		{`[a] AND NOT [b]`, BoolAndNot},
		{`[a] ANDNOT [b]`, BoolAndNot},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			q, err := Parse(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, q.Text.(*BooleanExpr).Op)
		})
	}
}

func TestParse_LocationOperators(t *testing.T) {
	testCases := []struct {
		query   string
		op      spandist.Operator
		negated bool
		args    string
	}{
		{`[value="sic"] NEAR(m=0,s=l) [value="mater"]`, spandist.OpNear, false, "NEAR(m=0,s=l)"},
		{`[value$="ter"] INSIDE(me=0) [$l]`, spandist.OpInside, false, "INSIDE(me=0)"},
		{`[len="2"] NOT INSIDE() [$lg]`, spandist.OpInside, true, "NOT INSIDE()"},
		{`[a] NOTBEFORE(n=0,m=0) [b]`, spandist.OpBefore, true, "NOT BEFORE(n=0,m=0)"},
		{`[a] LALIGN(n=1) [b]`, spandist.OpLeftAlign, false, "LALIGN(n=1)"},
		{`[a] RALIGN() [b]`, spandist.OpRightAlign, false, "RALIGN()"},
		{`[a] OVERLAPS(n=2,m=3) [b]`, spandist.OpOverlaps, false, "OVERLAPS(n=2,m=3)"},
		{`[a] AFTER(m=9) [b]`, spandist.OpAfter, false, "AFTER(m=9)"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			q, err := Parse(tc.query)
			require.NoError(t, err)
			loc, ok := q.Text.(*LocationExpr)
			require.True(t, ok)
			assert.Equal(t, tc.op, loc.Op)
			assert.Equal(t, tc.negated, loc.Negated)
			assert.Equal(t, tc.args, loc.String())
		})
	}
}

func TestParse_NestedLocations(t *testing.T) {
	q, err := Parse(`([a] OR [b]) BEFORE(m=2) [c] AFTER() [d]`)
	require.NoError(t, err)

	outer := q.Text.(*LocationExpr)
	assert.Equal(t, spandist.OpAfter, outer.Op)
	inner := outer.Left.(*LocationExpr)
	assert.Equal(t, spandist.OpBefore, inner.Op)
	_, ok := inner.Left.(*BooleanExpr)
	assert.True(t, ok)

	var names []string
	Walk(q.Text, func(p *Pair) { names = append(names, p.Name) })
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name       string
		query      string
		want       error
		validation bool
		column     int
	}{
		{"empty", "   ", ErrEmptyQuery, false, 4},
		{"missing bracket", `[value="a"`, ErrUnexpectedToken, false, 11},
		{"trailing token", `[a] [b]`, ErrUnexpectedToken, false, 5},
		{"dangling operator", `[a] AND`, ErrUnexpectedToken, false, 8},
		{"missing semicolon", `@@alpha [a]`, ErrUnexpectedToken, false, 9},
		{"or not in text", `[a] ORNOT [b]`, ErrUnexpectedToken, false, 5},
		{"unknown argument", `[a] NEAR(x=1) [b]`, ErrUnexpectedToken, false, 10},
		{"inside argument on near", `[a] NEAR(ns=1) [b]`, ErrInvalidArgument, true, 10},
		{"near argument on inside", `[a] INSIDE(n=1) [b]`, ErrInvalidArgument, true, 12},
		{"negative argument", `[a] NEAR(n=-1) [b]`, ErrInvalidArgument, true, 12},
		{"duplicate argument", `[a] NEAR(n=1,n=2) [b]`, ErrInvalidArgument, true, 14},
		{"double negation", `[a] NOT NOTNEAR() [b]`, ErrUnexpectedToken, false, 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.validation, IsValidationError(err))

			var qe *Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, 1, qe.Pos.Line)
			assert.Equal(t, tc.column, qe.Pos.Column)
		})
	}
}
