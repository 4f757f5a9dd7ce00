// Package spandist implements the positional algebra used by location
// operators.
//
// Spans are addressed by 1-based inclusive ordinal ranges [p1,p2]. A token
// span has p1 == p2; a structure span covers every token position between its
// bounds. All functions are pure and allocation free so they can be bound
// directly as SQL functions (see internal/store) as well as used in tests to
// cross-check the SQL a query compiles to.
package spandist
