package track

import "github.com/rs/zerolog"

// Graph is the track graph: two arenas (nodes, edges) addressed by stable
// integer IDs, built once from a Topology and read-only thereafter
// (spec.md §5).
type Graph struct {
	nodes  []*Node
	edges  []*Edge
	byName map[string]NodeID

	signals      []Signal
	signalByName map[string]Signal

	stations map[string]Station

	distanceMarkers map[string]float64

	log zerolog.Logger
}

// Option configures a Graph at construction time, following the teacher's
// functional-options convention (core.GraphOption).
type Option func(*Graph)

// WithLogger attaches a structured logger for topology-consistency
// diagnostics (spec.md §7); the zero value (zerolog.Nop()) is used by
// default.
func WithLogger(l zerolog.Logger) Option {
	return func(g *Graph) { g.log = l }
}

func newGraph(opts ...Option) *Graph {
	g := &Graph{
		byName:          make(map[string]NodeID),
		signalByName:    make(map[string]Signal),
		stations:        make(map[string]Station),
		distanceMarkers: make(map[string]float64),
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Node returns the node at id, or ErrNodeNotFound if id is out of range.
func (g *Graph) Node(id NodeID) (*Node, error) {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		return nil, ErrNodeNotFound
	}
	return g.nodes[id], nil
}

// Edge returns the edge at id, or ErrEdgeNotFound if id is out of range.
func (g *Graph) Edge(id EdgeID) (*Edge, error) {
	if int(id) < 0 || int(id) >= len(g.edges) {
		return nil, ErrEdgeNotFound
	}
	return g.edges[id], nil
}

// NodeByName resolves a node by its constructed name (e.g. "12A-A",
// "12A-BL"), returning ErrNodeNotFound if absent.
func (g *Graph) NodeByName(name string) (*Node, error) {
	id, ok := g.byName[name]
	if !ok {
		return nil, ErrNodeNotFound
	}
	return g.nodes[id], nil
}

// Nodes returns every node in arena (ID) order.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Edges returns every edge in arena (ID) order.
func (g *Graph) Edges() []*Edge { return g.edges }

// OutgoingEdges returns every edge whose From is nodeID, in arena order.
func (g *Graph) OutgoingEdges(nodeID NodeID) []*Edge {
	var out []*Edge
	for _, e := range g.edges {
		if e.From == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Signals returns every signal in input order.
func (g *Graph) Signals() []Signal { return g.signals }

// SignalByName resolves a signal by name.
func (g *Graph) SignalByName(name string) (Signal, bool) {
	s, ok := g.signalByName[name]
	return s, ok
}

// Station resolves a "{NAME}|{PLATFORM}" key to its bounding node pair.
func (g *Graph) Station(key string) (Station, bool) {
	s, ok := g.stations[key]
	return s, ok
}

// Stations returns every station key mapped to its bounding node pair. The
// returned map must not be mutated by the caller.
func (g *Graph) Stations() map[string]Station { return g.stations }

// DistanceMarkers returns the rezeroed distance-marker map (spec.md §6.1).
// Retained as read-only diagnostic data even though plotting (its original
// consumer) is out of scope; no other package in this module reads it.
func (g *Graph) DistanceMarkers() map[string]float64 { return g.distanceMarkers }

func (g *Graph) addNode(n *Node) NodeID {
	n.ID = NodeID(len(g.nodes))
	g.nodes = append(g.nodes, n)
	g.byName[n.Name] = n.ID
	return n.ID
}

func (g *Graph) addEdge(e *Edge) EdgeID {
	e.ID = EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	return e.ID
}
