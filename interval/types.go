// Package interval implements the IntervalStore abstraction shared by
// BlockNodes and BlockEdges (spec.md §3/§4.4): a sorted sequence of unsafe
// reservations that merges into pairwise-disjoint intervals, then inverts
// into the safe intervals a downstream SIPP search plans over.
//
// The package follows the teacher's (core) convention of plain sentinel
// errors wrapped with railerr.Wrap at the point of use, and of a single
// store value held by composition rather than an inheritance hierarchy —
// BlockNode and BlockEdge each hold a *Store field (spec.md §9, "prefer
// composition").
package interval

import "errors"

// NoAgent is the sentinel "no agent" value for agent_before/agent_after
// fields, per spec.md §3 ("agent = 0 is the sentinel 'no agent'").
const NoAgent = 0

// Sentinel errors for interval-store operations.
var (
	// ErrBadBounds indicates an interval with start > end was supplied.
	ErrBadBounds = errors.New("interval: start must be <= end")

	// ErrAlreadyMerged indicates Add was called on a store past Merge(),
	// violating the invariant in spec.md §4.4 ("adding further unsafe
	// intervals invalidates the store").
	ErrAlreadyMerged = errors.New("interval: store already merged")

	// ErrNotMerged indicates Invert was called before Merge(), violating
	// spec.md §3's "safe-interval inversion is only valid after merging."
	ErrNotMerged = errors.New("interval: store not yet merged")

	// ErrNoOverlap indicates two intervals passed to Union do not overlap
	// and cannot be merged into a single interval by that operation.
	ErrNoOverlap = errors.New("interval: intervals do not overlap")
)

// UnsafeInterval is a single reservation: `(start, end, duration, by_agent,
// local_recovery_time)` with start <= end (spec.md §3).
type UnsafeInterval struct {
	Start             float64
	End               float64
	Duration          float64
	ByAgent           int
	LocalRecoveryTime float64
}

// Overlaps reports whether u and o share any point, counting a shared
// boundary as overlap (the non-strict test spec.md §4.4 uses for merging:
// "max(starts) <= min(ends)").
func (u UnsafeInterval) Overlaps(o UnsafeInterval) bool {
	lo := u.Start
	if o.Start > lo {
		lo = o.Start
	}
	hi := u.End
	if o.End < hi {
		hi = o.End
	}
	return lo <= hi
}

// SafeInterval is `(start, end, agent_before, crt_before, agent_after,
// buffer_after, crt_after)` plus a monotonically-assigned Index (spec.md §3).
type SafeInterval struct {
	Start       float64
	End         float64
	AgentBefore int
	CrtBefore   float64
	AgentAfter  int
	BufferAfter float64
	CrtAfter    float64
	Index       int
}

// Intersect computes a & b under non-strict overlap semantics (touching
// endpoints still overlap; a gap does not). It returns ok=false without
// error when the two do not overlap (spec.md is explicit that
// Invalid/empty intersections are a normal,
// expected outcome of the ATF triple-overlap walk in §4.6, so this reports
// absence rather than erroring).
func Intersect(a, b SafeInterval) (lo, hi float64, ok bool) {
	lo = a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi = a.End
	if b.End < hi {
		hi = b.End
	}
	return lo, hi, lo <= hi
}

// Union computes a merged span covering both a and b. Unlike Merge (used
// internally by Store, which always succeeds regardless of overlap), Union
// enforces that the two intervals actually overlap, returning ErrNoOverlap
// otherwise — the stricter semantics confirmed by the reference test suite's
// `Interval(1,2) | Interval(5,10)` case.
func Union(a, b SafeInterval) (SafeInterval, error) {
	_, _, ok := Intersect(a, b)
	if !ok {
		return SafeInterval{}, ErrNoOverlap
	}
	lo := a.Start
	if b.Start < lo {
		lo = b.Start
	}
	hi := a.End
	if b.End > hi {
		hi = b.End
	}
	out := a
	out.Start, out.End = lo, hi
	return out, nil
}
