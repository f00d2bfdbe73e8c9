// Package block derives the BlockGraph — the signal-to-signal route graph
// that is the unit of reservation under the blocking-time model — from a
// track.Graph (spec.md §3/§4.2).
//
// Like track, nodes and edges live in two arenas addressed by stable
// integer IDs. Node and Edge each hold an *interval.Store in the sense
// spec.md §9 recommends ("composition... exposed by index rather than
// inheritance"): both carry the IntervalStore trait through a named
// Store pointer field, not a shared base type.
package block

import "errors"

// NodeID addresses a Node (one per Signal) in a Graph's node arena.
type NodeID int

// EdgeID addresses an Edge (a signal-to-signal route) in a Graph's edge arena.
type EdgeID int

// Direction is the set union of the two bounding signals' side labels,
// canonicalized so "BA" becomes "AB" (spec.md §4.2).
type Direction string

const (
	DirA  Direction = "A"
	DirB  Direction = "B"
	DirAB Direction = "AB"
)

// Sentinel errors for block-graph derivation and lookup.
var (
	ErrNodeNotFound    = errors.New("block: node not found")
	ErrEdgeNotFound    = errors.New("block: edge not found")
	ErrEmptyTrackRoute = errors.New("block: block edge has an empty track route")
)
