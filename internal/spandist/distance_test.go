package spandist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ranges enumerates every valid range with bounds in [1,limit].
func ranges(limit int) []Range {
	var out []Range
	for p1 := 1; p1 <= limit; p1++ {
		for p2 := p1; p2 <= limit; p2++ {
			out = append(out, Range{P1: p1, P2: p2})
		}
	}
	return out
}

func bruteOverlap(a, b Range) int {
	count := 0
	for p := a.P1; p <= a.P2; p++ {
		if p >= b.P1 && p <= b.P2 {
			count++
		}
	}
	return count
}

func TestOverlapCount_MatchesEnumeration(t *testing.T) {
	for _, a := range ranges(7) {
		for _, b := range ranges(7) {
			want := bruteOverlap(a, b)
			got := OverlapCount(a.P1, a.P2, b.P1, b.P2)
			require.Equal(t, want, got, "a=%v b=%v", a, b)
			assert.Equal(t, got > 0, Overlaps(a.P1, a.P2, b.P1, b.P2))
		}
	}
}

func TestBeforeAfter_Symmetric(t *testing.T) {
	windows := [][2]int{{0, 0}, {0, 2}, {1, 3}, {0, Unbounded}}
	for _, a := range ranges(6) {
		for _, b := range ranges(6) {
			for _, w := range windows {
				assert.Equal(t,
					BeforeWithin(a.P1, a.P2, b.P1, b.P2, w[0], w[1]),
					AfterWithin(b.P1, b.P2, a.P1, a.P2, w[0], w[1]),
					"a=%v b=%v window=%v", a, b, w)
			}
		}
	}
}

func TestInsideWithin_UnboundedIsContainment(t *testing.T) {
	for _, a := range ranges(6) {
		for _, b := range ranges(6) {
			want := a.P1 >= b.P1 && a.P2 <= b.P2
			got := InsideWithin(a.P1, a.P2, b.P1, b.P2, 0, Unbounded, 0, Unbounded)
			assert.Equal(t, want, got, "a=%v b=%v", a, b)
		}
	}
}

func TestDistancePredicates(t *testing.T) {
	testCases := []struct {
		name string
		got  bool
		want bool
	}{
		{"adjacent before", BeforeWithin(1, 1, 2, 2, 0, 0), true},
		{"one gap before outside window", BeforeWithin(1, 1, 3, 3, 0, 0), false},
		{"one gap before inside window", BeforeWithin(1, 1, 3, 3, 1, 1), true},
		{"overlap is not before", BeforeWithin(1, 3, 3, 5, 0, Unbounded), false},
		{"after with gap", AfterWithin(10, 12, 1, 5, 4, 4), true},
		{"near either side", NearWithin(10, 10, 4, 4, 0, 5), true},
		{"near too far", NearWithin(20, 20, 4, 4, 0, 5), false},
		{"near never overlapping", NearWithin(4, 4, 4, 4, 0, 5), false},
		{"overlaps within", OverlapsWithin(1, 5, 3, 9, 3, 3), true},
		{"overlaps too little", OverlapsWithin(1, 5, 5, 9, 2, 5), false},
		{"disjoint never overlaps even with zero minimum", OverlapsWithin(1, 2, 4, 5, 0, 5), false},
		{"inside at start", InsideWithin(3, 3, 3, 10, 0, 0, 0, Unbounded), true},
		{"inside not at start", InsideWithin(4, 4, 3, 10, 0, 0, 0, Unbounded), false},
		{"inside at end", InsideWithin(10, 10, 3, 10, 0, Unbounded, 0, 0), true},
		{"outside", InsideWithin(2, 4, 3, 10, 0, Unbounded, 0, Unbounded), false},
		{"left aligned", LeftAligned(5, 5, 0, 0), true},
		{"left aligned offset", LeftAligned(7, 5, 1, 2), true},
		{"left aligned negative offset", LeftAligned(4, 5, 0, 3), false},
		{"right aligned", RightAligned(8, 8, 0, 0), true},
		{"right aligned offset", RightAligned(6, 8, 2, 2), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestEval(t *testing.T) {
	a := Range{P1: 3, P2: 3}
	b := Range{P1: 1, P2: 5}

	bounds := DefaultBounds()
	for _, op := range Operators() {
		got, err := Eval(op, a, b, bounds)
		require.NoError(t, err, op.String())
		switch op {
		case OpInside, OpOverlaps, OpLeftAlign, OpRightAlign:
			assert.True(t, got, op.String())
		default:
			assert.False(t, got, op.String())
		}
	}

	_, err := Eval(Operator(99), a, b, bounds)
	require.Error(t, err)
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators() {
		parsed, ok := ParseOperator(op.String())
		require.True(t, ok)
		assert.Equal(t, op, parsed)
	}

	_, ok := ParseOperator("BESIDE")
	assert.False(t, ok)
	assert.Equal(t, "Operator(42)", Operator(42).String())
}
