package block

import (
	"github.com/rs/zerolog"

	"github.com/railsignal/flexsipp/interval"
	"github.com/railsignal/flexsipp/track"
)

// Node is one BlockNode, identified by its underlying Signal's track node
// (spec.md §3: "BlockNode: one per signal. Identifier = signal id.").
type Node struct {
	ID        NodeID
	Name      string // the signal's name
	TrackNode track.NodeID
	Store     *interval.Store
}

// Edge is one BlockEdge: a signal-to-signal route (spec.md §3).
type Edge struct {
	ID          EdgeID
	From, To    NodeID
	Length      float64 // meters, until CloneForReplan rewrites it to seconds
	MaxVelocity float64 // m/s; min across the traversed TrackEdges
	Direction   Direction

	TrackRoute        []track.EdgeID
	TrackNodesOnRoute []track.NodeID

	Store *interval.Store
}

// Graph is the block graph, built once from a track.Graph and read-only
// thereafter except for the dedicated CloneForReplan working copy
// (spec.md §5, §9).
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	byName map[string]NodeID

	outgoing map[NodeID][]EdgeID

	// trackToBlocks / trackNodeToBlocks are the "affected blocks" cross
	// index of spec.md §4.2/§9: every BlockEdge whose route touches a given
	// TrackEdge or TrackNode.
	trackToBlocks     map[track.EdgeID][]EdgeID
	trackNodeToBlocks map[track.NodeID][]EdgeID

	stations map[string][2]NodeID

	log zerolog.Logger
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithLogger attaches a structured logger for topology-consistency
// diagnostics raised during derivation.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

func newGraph(opts ...Option) *Graph {
	g := &Graph{
		byName:            make(map[string]NodeID),
		outgoing:          make(map[NodeID][]EdgeID),
		trackToBlocks:     make(map[track.EdgeID][]EdgeID),
		trackNodeToBlocks: make(map[track.NodeID][]EdgeID),
		stations:          make(map[string][2]NodeID),
		log:               zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Node returns the node at id.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		return nil, ErrNodeNotFound
	}
	return g.nodes[id], nil
}

// Edge returns the edge at id.
func (g *Graph) Edge(id EdgeID) (*Edge, error) {
	if int(id) < 0 || int(id) >= len(g.edges) {
		return nil, ErrEdgeNotFound
	}
	return g.edges[id], nil
}

// NodeByName resolves a block node by its signal name.
func (g *Graph) NodeByName(name string) (*Node, error) {
	id, ok := g.byName[name]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return g.nodes[id], nil
}

// Nodes returns every node in arena order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns every edge in arena order.
func (g *Graph) Edges() []*Edge { return g.edges }

// OutgoingEdges returns the edges leaving nodeID, in derivation order.
func (g *Graph) OutgoingEdges(nodeID NodeID) []*Edge {
	ids := g.outgoing[nodeID]
	out := make([]*Edge, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.edges[id])
	}
	return out
}

// IncomingEdges returns every edge whose To is nodeID.
func (g *Graph) IncomingEdges(nodeID NodeID) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.To == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Station resolves a station key to its bounding block-node pair.
func (g *Graph) Station(key string) ([2]NodeID, bool) {
	s, ok := g.stations[key]
	return s, ok
}

// AffectedBlocks returns the set of BlockEdges that a reservation on
// trackEdgeID must propagate to: every block whose route contains the edge
// itself, plus every block whose route contains either endpoint TrackNode
// or any of that endpoint's associated/opposite TrackNodes (spec.md §4.2's
// "affected-blocks" index, consumed by the kinematics package's sweep
// step 3).
func (g *Graph) AffectedBlocks(tg *track.Graph, trackEdgeID track.EdgeID) []EdgeID {
	seen := make(map[EdgeID]struct{})
	var out []EdgeID
	add := func(ids []EdgeID) {
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	add(g.trackToBlocks[trackEdgeID])

	e, err := tg.Edge(trackEdgeID)
	if err != nil {
		return out
	}
	for _, nodeID := range []track.NodeID{e.From, e.To} {
		add(g.trackNodeToBlocks[nodeID])
		n, err := tg.Node(nodeID)
		if err != nil {
			continue
		}
		for _, r := range n.Associated {
			add(g.trackNodeToBlocks[r])
		}
		for _, r := range n.Opposites {
			add(g.trackNodeToBlocks[r])
		}
	}
	return out
}

// Clone returns a deep copy of the Graph with the same topology, used as
// the basis for CloneForReplan (the teacher's core.Graph.Clone idiom,
// generalized to this arena shape). Every Node and Edge gets its own
// interval.Store.Clone() — the clone must never share a Store with g, since
// both FilterOutAgent (spec.md §4.4, "Filtering") and the re-Merge/re-Invert
// pass sipp.GenerateATFs runs against a replan copy (spec.md §4.6) mutate
// the store in place.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		byName:            make(map[string]NodeID, len(g.byName)),
		outgoing:          make(map[NodeID][]EdgeID, len(g.outgoing)),
		trackToBlocks:     g.trackToBlocks,
		trackNodeToBlocks: g.trackNodeToBlocks,
		stations:          g.stations,
		log:               g.log,
	}
	c.nodes = make([]*Node, len(g.nodes))
	for i, n := range g.nodes {
		cp := *n
		cp.Store = n.Store.Clone()
		c.nodes[i] = &cp
	}
	for k, v := range g.byName {
		c.byName[k] = v
	}
	for k, v := range g.outgoing {
		cp := make([]EdgeID, len(v))
		copy(cp, v)
		c.outgoing[k] = cp
	}
	c.edges = make([]*Edge, len(g.edges))
	for i, e := range g.edges {
		cp := *e
		cp.Store = e.Store.Clone()
		c.edges[i] = &cp
	}
	return c
}

// CopyFlexibilityFrom transplants every node's and edge's flexibility data
// (buffer/compound-recovery-time maps) from other onto g, by matching arena
// index. other must have been derived from the same topology as g (e.g. via
// Clone), so node/edge IDs line up.
func (g *Graph) CopyFlexibilityFrom(other *Graph) {
	for i, n := range g.nodes {
		if i < len(other.nodes) {
			n.Store.CopyFlexibilityFrom(other.nodes[i].Store)
		}
	}
	for i, e := range g.edges {
		if i < len(other.edges) {
			e.Store.CopyFlexibilityFrom(other.edges[i].Store)
		}
	}
}

// CloneForReplan returns a dedicated working copy with every edge Length
// rescaled from meters to seconds by dividing by trainSpeed (spec.md §4.6,
// "Edge length reinterpretation"). The shared Graph is never mutated; this
// is the destructive rewrite spec.md §9 requires happen only on a clone.
func (g *Graph) CloneForReplan(trainSpeed float64) *Graph {
	c := g.Clone()
	for _, e := range c.edges {
		e.Length = e.Length / trainSpeed
	}
	return c
}

func (g *Graph) addNode(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n.ID
	return n.ID
}

func (g *Graph) addEdge(e *Edge) EdgeID {
	e.ID = EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.ID)
	for _, t := range e.TrackRoute {
		g.trackToBlocks[t] = append(g.trackToBlocks[t], e.ID)
	}
	for _, n := range e.TrackNodesOnRoute {
		g.trackNodeToBlocks[n] = append(g.trackNodeToBlocks[n], e.ID)
	}
	return e.ID
}
