// Package track builds and exposes the fine-grained TrackGraph: physical
// track geometry, switches, platforms, and signals (spec.md §3/§4.1). A
// TrackGraph is built once from a topology document and is read-only
// thereafter (spec.md §5, "Lifecycle").
//
// Nodes and edges live in two arenas addressed by stable integer IDs
// (NodeID, EdgeID), per spec.md §9 ("Graph ownership": prefer arenas and
// stable indices over the original's cyclic object references) — the same
// arena-plus-ID idiom the teacher's core package uses for Vertex/Edge,
// generalized here from string IDs to integer IDs because TrackNodes carry
// several bidirectional relation sets (opposites, associated) that are
// cheaper to store as []NodeID than as pointer slices.
package track

import "errors"

// NodeID addresses a Node in a Graph's node arena.
type NodeID int

// EdgeID addresses an Edge in a Graph's edge arena.
type EdgeID int

// Side is one geometric end of a physical track part.
type Side byte

const (
	SideA Side = 'A'
	SideB Side = 'B'
)

// Type classifies a physical track part (spec.md §3).
type Type int

const (
	RailRoad Type = iota
	Bumper
	Switch
	SideSwitch
	EnglishSwitch
)

// typeNames maps the JSON "type" string to Type.
var typeNames = map[string]Type{
	"RailRoad":      RailRoad,
	"Bumper":        Bumper,
	"Switch":        Switch,
	"SideSwitch":    SideSwitch,
	"EnglishSwitch": EnglishSwitch,
}

// Sentinel errors for track-graph construction and lookup.
var (
	ErrUnknownTrackType  = errors.New("track: unknown track part type")
	ErrDuplicateNodeName = errors.New("track: duplicate node name")
	ErrNodeNotFound      = errors.New("track: node not found")
	ErrEdgeNotFound      = errors.New("track: edge not found")
	ErrUnresolvedMirror  = errors.New("track: SideSwitch mirror node not found")
	ErrSignalTrackAbsent = errors.New("track: signal references an absent track part")
	ErrStationAmbiguous  = errors.New("track: station side resolves to more than one node")
)

// Node is a directed half-track endpoint tagged with a Side (spec.md §3).
type Node struct {
	ID                NodeID
	Name              string // e.g. "X1-A", or "X1-BL" for a switch fan sibling
	Side              Side
	Type              Type
	CanReverse        bool
	IsStationPlatform bool

	// Opposites are TrackNodes at the other side of the same physical
	// track part (or, for switches, across the fan).
	Opposites []NodeID
	// Associated are TrackNodes sharing identical reservation semantics.
	Associated []NodeID
}

// Edge is a directed connection between two TrackNodes (spec.md §3).
type Edge struct {
	ID       EdgeID
	From, To NodeID
	Length   float64 // meters
	MaxSpeed float64 // m/s; a large sentinel for straight track

	// Opposites are edges in the reverse direction over the same physical
	// rail (computed as the outgoing edges of To's opposite nodes).
	Opposites []EdgeID
	// Associated are edges fanning from the same switch side.
	Associated []EdgeID

	// StopsAtStation records, per agent id, a scheduled departure time for
	// agents that dwell while traversing this edge.
	StopsAtStation map[int]float64
}

// Signal is (id, TrackNode); signals partition the track graph into blocks.
type Signal struct {
	Name string
	Node NodeID
}

// Station maps a platform key ("NAME|PLATFORM") to the pair of TrackNodes
// bounding it on each side.
type Station struct {
	SideA NodeID
	SideB NodeID
}
