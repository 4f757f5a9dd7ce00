package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/querylang"
)

func TestCompose_SetOperators(t *testing.T) {
	testCases := []struct {
		query string
		want  string
	}{
		{`[value="a"] AND [value="b"]`, "SELECT * FROM s1\nINTERSECT\nSELECT * FROM s2"},
		{`[value="a"] OR [value="b"]`, "SELECT * FROM s1\nUNION\nSELECT * FROM s2"},
		{`[value="a"] AND NOT [value="b"]`, "SELECT * FROM s1\nEXCEPT\nSELECT * FROM s2"},
		{`[value="ionios"] ANDNOT [gn]`, "SELECT * FROM s1\nEXCEPT\nSELECT * FROM s2"},
		{
			`([a] AND [b]) OR [c]`,
			"SELECT * FROM (\nSELECT * FROM s1\nINTERSECT\nSELECT * FROM s2\n) AS q1\nUNION\nSELECT * FROM s3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			plan := compileQuery(t, tc.query)
			assert.Equal(t, tc.want, plan.Root)
		})
	}
}

func TestCompose_LocationJoin(t *testing.T) {
	plan := compileQuery(t, `[value="a"] NEAR(n=0,m=5) [value="b"]`)
	assert.Equal(t,
		"SELECT DISTINCT s1.* FROM s1\n"+
			"INNER JOIN s2 ON s1.document_id=s2.document_id AND pyt_is_near_within(s1.p1, s1.p2, s2.p1, s2.p2, 0, 5)",
		plan.Root)
}

func TestCompose_NegatedLocationIsAntiJoin(t *testing.T) {
	plan := compileQuery(t, `[value="a"] NOTBEFORE(n=0,m=0) [value="b"]`)
	assert.Equal(t,
		"SELECT * FROM s1\n"+
			"WHERE NOT EXISTS (SELECT 1 FROM s2 WHERE s2.document_id=s1.document_id"+
			" AND pyt_is_before_within(s1.p1, s1.p2, s2.p1, s2.p2, 0, 0))",
		plan.Root)
	assert.NotContains(t, plan.Root, "NOT pyt_")
	assert.NotContains(t, plan.Root, "INNER JOIN")
}

func TestCompose_LocationPredicates(t *testing.T) {
	testCases := []struct {
		query string
		want  string
	}{
		{`[a] BEFORE() [b]`, "pyt_is_before_within(s1.p1, s1.p2, s2.p1, s2.p2, 0, 2147483647)"},
		{`[a] AFTER(n=2) [b]`, "pyt_is_after_within(s1.p1, s1.p2, s2.p1, s2.p2, 2, 2147483647)"},
		{`[a] OVERLAPS(n=1,m=3) [b]`, "pyt_is_overlap_within(s1.p1, s1.p2, s2.p1, s2.p2, 1, 3)"},
		{`[value$="ter"] INSIDE(me=0) [$l]`, "pyt_is_inside_within(s1.p1, s1.p2, s2.p1, s2.p2, 0, 2147483647, 0, 0)"},
		{`[a] INSIDE(ns=1,ms=2,ne=3,me=4) [b]`, "pyt_is_inside_within(s1.p1, s1.p2, s2.p1, s2.p2, 1, 2, 3, 4)"},
		{`[a] LALIGN(n=1) [b]`, "pyt_is_left_aligned(s1.p1, s2.p1, 1, 2147483647)"},
		{`[a] RALIGN() [b]`, "pyt_is_right_aligned(s1.p2, s2.p2, 0, 2147483647)"},
	}

	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			plan := compileQuery(t, tc.query)
			assert.Contains(t, plan.Root, tc.want)
		})
	}
}

func TestCompose_SharedContext(t *testing.T) {
	plan := compileQuery(t, `[value="sic"] NEAR(m=0,s=l) [value="mater"]`)
	assert.Contains(t, plan.Root,
		"pyt_is_near_within(s1.p1, s1.p2, s2.p1, s2.p2, 0, 0) AND "+
			"EXISTS (SELECT 1 FROM span ctx WHERE ctx.document_id=s1.document_id AND ctx.type='l'"+
			" AND ctx.p1<=s1.p1 AND ctx.p2>=s1.p2 AND ctx.p1<=s2.p1 AND ctx.p2>=s2.p2)")
}

func TestCompose_NestedOperandsAreAliased(t *testing.T) {
	plan := compileQuery(t, `([a] OR [b]) NEAR() [c] NOT AFTER(m=1) ([d] AND [e])`)

	assert.Equal(t,
		"SELECT * FROM (\n"+
			"SELECT DISTINCT q1.* FROM (\nSELECT * FROM s1\nUNION\nSELECT * FROM s2\n) AS q1\n"+
			"INNER JOIN s3 ON q1.document_id=s3.document_id AND pyt_is_near_within(q1.p1, q1.p2, s3.p1, s3.p2, 0, 2147483647)\n"+
			") AS q2\n"+
			"WHERE NOT EXISTS (SELECT 1 FROM (\nSELECT * FROM s4\nINTERSECT\nSELECT * FROM s5\n) AS q3"+
			" WHERE q3.document_id=q2.document_id AND pyt_is_after_within(q2.p1, q2.p2, q3.p1, q3.p2, 0, 1))",
		plan.Root)
}

func TestCompose_LocationInsideBoolean(t *testing.T) {
	plan := compileQuery(t, `[a] AND [b] NEAR() [c]`)
	assert.Equal(t,
		"SELECT * FROM s1\nINTERSECT\n"+
			"SELECT DISTINCT s2.* FROM s2\n"+
			"INNER JOIN s3 ON s2.document_id=s3.document_id AND pyt_is_near_within(s2.p1, s2.p2, s3.p1, s3.p2, 0, 2147483647)",
		plan.Root)
}

func TestCompose_ArgumentErrors(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		want   error
		column int
	}{
		{"n greater than m", `[a] NEAR(n=5,m=2) [b]`, querylang.ErrArgumentRange, 14},
		{"n greater than m on lalign", `[a] LALIGN(m=1,n=2) [b]`, querylang.ErrArgumentRange, 12},
		{"ns greater than ms", `[a] INSIDE(ns=3,ms=1) [b]`, querylang.ErrArgumentRange, 17},
		{"ne greater than me", `[a] INSIDE(me=0,ne=1) [b]`, querylang.ErrArgumentRange, 12},
		{"s with not", `[$sent] NOTINSIDE(ns=0,ms=0,ne=0,me=0,s=x) [a]`, querylang.ErrSharedContextNegated, 39},
		{"s with split not", `[a] NOT NEAR(s=x) [b]`, querylang.ErrSharedContextNegated, 14},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			qe := compileError(t, tc.query)
			assert.ErrorIs(t, qe, tc.want)
			assert.True(t, querylang.IsValidationError(qe))
			assert.Equal(t, tc.column, qe.Pos.Column)
		})
	}
}

func TestCompose_ArgumentOutOfRange(t *testing.T) {
	testCases := []struct {
		name   string
		query  string
		column int
	}{
		{"m above int range", `[a] NEAR(m=9999999999) [b]`, 12},
		{"n above int range", `[a] NEAR(n=3000000000) [b]`, 12},
		{"me above int range", `[a] INSIDE(me=2147483648) [b]`, 15},
	}

	b := NewBuilder(dialect.NewPostgres())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, _, err := b.Build(tc.query, 1, 20, nil)
			require.Error(t, err)
			assert.Empty(t, data)
			assert.ErrorIs(t, err, querylang.ErrInvalidArgument)
			assert.True(t, querylang.IsValidationError(err))

			var qe *querylang.Error
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tc.column, qe.Pos.Column)
			assert.NotContains(t, qe.Message, "MAX")
		})
	}

	_, _, err := b.Build(`[a] NEAR(m=2147483647) [b]`, 1, 20, nil)
	assert.NoError(t, err)
}

func TestResolveLocationArgs_Defaults(t *testing.T) {
	q, err := querylang.Parse(`[a] INSIDE() [b]`)
	require.NoError(t, err)

	args, err := resolveLocationArgs(q.Text.(*querylang.LocationExpr))
	require.NoError(t, err)
	assert.Equal(t, 0, args.bounds.NS)
	assert.Equal(t, 2147483647, args.bounds.MS)
	assert.Equal(t, 0, args.bounds.NE)
	assert.Equal(t, 2147483647, args.bounds.ME)
	assert.Empty(t, args.shared)
}
