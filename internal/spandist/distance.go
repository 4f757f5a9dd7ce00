package spandist

import "math"

// Unbounded is the maximum bound used when a distance argument is omitted.
// It fits both a 32-bit SQL integer and a Go int on every platform.
const Unbounded = math.MaxInt32

// Range is an inclusive ordinal position range.
type Range struct {
	P1 int
	P2 int
}

// Valid reports whether P1 <= P2.
func (r Range) Valid() bool {
	return r.P1 <= r.P2
}

func within(d, n, m int) bool {
	return d >= n && d <= m
}

// OverlapCount returns the number of positions shared by a and b.
func OverlapCount(a1, a2, b1, b2 int) int {
	lo := max(a1, b1)
	hi := min(a2, b2)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// Overlaps reports whether a and b share at least one position.
func Overlaps(a1, a2, b1, b2 int) bool {
	return OverlapCount(a1, a2, b1, b2) > 0
}

// OverlapsWithin reports whether a and b overlap by at least n and at most m
// positions. Disjoint ranges never match, even when n is 0.
func OverlapsWithin(a1, a2, b1, b2, n, m int) bool {
	count := OverlapCount(a1, a2, b1, b2)
	if count == 0 {
		return false
	}
	return within(count, n, m)
}

// BeforeWithin reports whether a ends before b starts, with n to m positions
// in between.
func BeforeWithin(a1, a2, b1, b2, n, m int) bool {
	if a2 >= b1 {
		return false
	}
	return within(b1-a2-1, n, m)
}

// AfterWithin reports whether a starts after b ends, with n to m positions
// in between.
func AfterWithin(a1, a2, b1, b2, n, m int) bool {
	if a1 <= b2 {
		return false
	}
	return within(a1-b2-1, n, m)
}

// NearWithin reports whether a is before or after b within n to m positions.
func NearWithin(a1, a2, b1, b2, n, m int) bool {
	return BeforeWithin(a1, a2, b1, b2, n, m) || AfterWithin(a1, a2, b1, b2, n, m)
}

// InsideWithin reports whether a is contained in b, with the distance from
// b's start in [ns,ms] and the distance to b's end in [ne,me].
func InsideWithin(a1, a2, b1, b2, ns, ms, ne, me int) bool {
	if a1 < b1 || a2 > b2 {
		return false
	}
	return within(a1-b1, ns, ms) && within(b2-a2, ne, me)
}

// LeftAligned reports whether a starts n to m positions after b starts.
func LeftAligned(a1, b1, n, m int) bool {
	return within(a1-b1, n, m)
}

// RightAligned reports whether a ends n to m positions before b ends.
func RightAligned(a2, b2, n, m int) bool {
	return within(b2-a2, n, m)
}
