package querysql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pythia/internal/querylang"
	"github.com/roach88/pythia/internal/spandist"
)

// locationArgs holds the validated arguments of a location operator.
type locationArgs struct {
	bounds spandist.Bounds
	shared string // structure type both spans must share, if any
}

// resolveLocationArgs applies defaults to the operator's arguments and
// checks that every window is well formed.
func resolveLocationArgs(loc *querylang.LocationExpr) (locationArgs, error) {
	args := locationArgs{bounds: spandist.DefaultBounds()}

	targets := map[string]*int{
		"n":  &args.bounds.N,
		"m":  &args.bounds.M,
		"ns": &args.bounds.NS,
		"ms": &args.bounds.MS,
		"ne": &args.bounds.NE,
		"me": &args.bounds.ME,
	}
	for _, arg := range loc.Args {
		if arg.Name == "s" {
			if loc.Negated {
				return locationArgs{}, validationError(arg.Pos, querylang.ErrSharedContextNegated,
					"argument s cannot be used with NOT %s", loc.Op)
			}
			args.shared = arg.Text
			continue
		}
		target, ok := targets[arg.Name]
		if !ok {
			return locationArgs{}, validationError(arg.Pos, querylang.ErrInvalidArgument, "unknown argument %q", arg.Name)
		}
		*target = arg.Int
	}

	check := func(minName, maxName string, lo, hi int) error {
		if lo <= hi {
			return nil
		}
		pos := loc.Pos
		if arg, ok := loc.Arg(maxName); ok {
			pos = arg.Pos
		} else if arg, ok := loc.Arg(minName); ok {
			pos = arg.Pos
		}
		return validationError(pos, querylang.ErrArgumentRange, "%s (%d) is greater than %s (%s)", minName, lo, maxName, bound(hi))
	}

	b := args.bounds
	if loc.Op == spandist.OpInside {
		if err := check("ns", "ms", b.NS, b.MS); err != nil {
			return locationArgs{}, err
		}
		if err := check("ne", "me", b.NE, b.ME); err != nil {
			return locationArgs{}, err
		}
		return args, nil
	}
	if err := check("n", "m", b.N, b.M); err != nil {
		return locationArgs{}, err
	}
	return args, nil
}

func bound(n int) string {
	if n == spandist.Unbounded {
		return "MAX"
	}
	return strconv.Itoa(n)
}

// predicate renders the call to the distance function relating left to right.
func (c *compilation) predicate(loc *querylang.LocationExpr, args locationArgs, left, right string) (string, error) {
	fn, err := c.dialect.FunctionName(loc.Op)
	if err != nil {
		return "", &querylang.Error{
			Code:    querylang.CodeDialect,
			Message: err.Error(),
			Pos:     loc.Pos,
			Err:     err,
		}
	}

	b := args.bounds
	var params []string
	switch loc.Op {
	case spandist.OpLeftAlign:
		params = []string{left + ".p1", right + ".p1", strconv.Itoa(b.N), strconv.Itoa(b.M)}
	case spandist.OpRightAlign:
		params = []string{left + ".p2", right + ".p2", strconv.Itoa(b.N), strconv.Itoa(b.M)}
	case spandist.OpInside:
		params = []string{left + ".p1", left + ".p2", right + ".p1", right + ".p2",
			strconv.Itoa(b.NS), strconv.Itoa(b.MS), strconv.Itoa(b.NE), strconv.Itoa(b.ME)}
	case spandist.OpNear, spandist.OpBefore, spandist.OpAfter, spandist.OpOverlaps:
		params = []string{left + ".p1", left + ".p2", right + ".p1", right + ".p2", strconv.Itoa(b.N), strconv.Itoa(b.M)}
	default:
		return "", fmt.Errorf("unsupported location operator: %v", loc.Op)
	}

	sql := fn + "(" + strings.Join(params, ", ") + ")"
	if args.shared != "" {
		sql += " AND " + c.sharedContext(args.shared, left, right)
	}
	return sql, nil
}

// sharedContext requires both spans to lie inside the same structure span.
func (c *compilation) sharedContext(structure, left, right string) string {
	return "EXISTS (SELECT 1 FROM span ctx WHERE ctx.document_id=" + left + ".document_id" +
		" AND ctx.type=" + c.encode(structure, false) +
		" AND ctx.p1<=" + left + ".p1 AND ctx.p2>=" + left + ".p2" +
		" AND ctx.p1<=" + right + ".p1 AND ctx.p2>=" + right + ".p2)"
}
