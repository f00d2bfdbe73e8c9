package block

import (
	"fmt"

	"github.com/railsignal/flexsipp/track"
)

// routeItem is one in-flight BFS path: the current TrackNode, the ordered
// TrackEdges and TrackNodes traversed so far, the visited set (to avoid
// cycles within a single block), and the running length/max-velocity.
// This mirrors the teacher's bfs.queueItem pattern (id/depth/parent),
// generalized here to carry a full path rather than a single parent link,
// because block derivation must enumerate every distinct terminating path
// from one signal rather than a single shortest path (spec.md §4.2,
// "BFS over queue tuples (route, edge_route, visited, length, max_vel)").
type routeItem struct {
	current     track.NodeID
	edgeRoute   []track.EdgeID
	nodeRoute   []track.NodeID
	visited     map[track.NodeID]bool
	length      float64
	maxVelocity float64
}

// FromTrackGraph derives a BlockGraph from tg (spec.md §4.2). One BlockNode
// is created per Signal, in tg.Signals() input order. Each signal's forward
// neighborhood is explored via a BFS that tracks a per-path visited set so
// switch fans produce one BlockEdge per distinct terminating route; a path
// that dead-ends with no outgoing edges is dropped silently (diagnostic
// only), and one that reaches another signal's track terminates, emitting a
// BlockEdge.
func FromTrackGraph(tg *track.Graph, opts ...Option) (*Graph, error) {
	g := newGraph(opts...)

	signalAtNode := make(map[track.NodeID]int, len(tg.Signals()))
	for i, s := range tg.Signals() {
		signalAtNode[s.Node] = i
	}

	for _, s := range tg.Signals() {
		g.addNode(&Node{Name: s.Name, TrackNode: s.Node, Store: nil})
	}
	// Store is attached after all nodes exist so it can be labelled by name.
	for _, n := range g.nodes {
		n.Store = newLabeledStore(n.Name)
	}

	for signalIdx, s := range tg.Signals() {
		fromBlockID := NodeID(signalIdx)
		routes := enumerateRoutes(tg, s.Node, signalAtNode, signalIdx)
		for _, r := range routes {
			toIdx, ok := signalAtNode[r.current]
			if !ok {
				continue // dropped: dead end with no outgoing edges
			}
			toBlockID := NodeID(toIdx)
			dir := canonicalDirection(tg, s.Node, r.current)
			edge := &Edge{
				From:              fromBlockID,
				To:                toBlockID,
				Length:            r.length,
				MaxVelocity:       r.maxVelocity,
				Direction:         dir,
				TrackRoute:        r.edgeRoute,
				TrackNodesOnRoute: r.nodeRoute,
				Store:             newLabeledStore(fmt.Sprintf("%s->%s", s.Name, tg.Signals()[toIdx].Name)),
			}
			if len(edge.TrackRoute) == 0 {
				continue
			}
			g.addEdge(edge)
		}
	}

	return g, nil
}

// enumerateRoutes explores forward from startNode, returning one routeItem
// per terminating path (a signal's track reached, or a dead end — callers
// filter dead ends via signalAtNode).
func enumerateRoutes(tg *track.Graph, startNode track.NodeID, signalAtNode map[track.NodeID]int, ownSignalIdx int) []routeItem {
	var terminal []routeItem
	queue := []routeItem{{
		current: startNode,
		visited: map[track.NodeID]bool{startNode: true},
		maxVelocity: -1, // sentinel: "no edges yet", replaced on first edge
	}}
	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if idx, ok := signalAtNode[item.current]; ok && len(item.edgeRoute) > 0 && idx != ownSignalIdx {
			terminal = append(terminal, item)
			continue
		}

		edges := tg.OutgoingEdges(item.current)
		if len(edges) == 0 {
			if len(item.edgeRoute) > 0 {
				terminal = append(terminal, item) // dropped later: no signal at this dead end
			}
			continue
		}
		for _, e := range edges {
			if item.visited[e.To] {
				continue
			}
			visited := make(map[track.NodeID]bool, len(item.visited)+1)
			for k := range item.visited {
				visited[k] = true
			}
			visited[e.To] = true

			edgeRoute := append(append([]track.EdgeID{}, item.edgeRoute...), e.ID)
			nodeRoute := append(append([]track.NodeID{}, item.nodeRoute...), e.To)

			mv := e.MaxSpeed
			if item.maxVelocity >= 0 && item.maxVelocity < mv {
				mv = item.maxVelocity
			}
			queue = append(queue, routeItem{
				current:     e.To,
				edgeRoute:   edgeRoute,
				nodeRoute:   nodeRoute,
				visited:     visited,
				length:      item.length + e.Length,
				maxVelocity: mv,
			})
		}
	}
	return terminal
}

// canonicalDirection derives the block edge's Direction from the two
// bounding signals' TrackNode Side labels, canonicalizing "BA" to "AB"
// (spec.md §4.2).
func canonicalDirection(tg *track.Graph, from, to track.NodeID) Direction {
	fn, errF := tg.Node(from)
	tn, errT := tg.Node(to)
	if errF != nil || errT != nil {
		return DirAB
	}
	a, b := byte(fn.Side), byte(tn.Side)
	if a == b {
		return Direction(string(a))
	}
	if a == 'B' && b == 'A' {
		return DirAB
	}
	return Direction(string(a) + string(b))
}

// AddStation records a station's bounding block nodes, resolved by the
// caller (scenario construction) from the track graph's station map via
// the two TrackNode IDs it returns.
func (g *Graph) AddStation(key string, sideA, sideB track.NodeID, tg *track.Graph) bool {
	aIdx, aOK := nodeSignalBlock(tg, sideA)
	bIdx, bOK := nodeSignalBlock(tg, sideB)
	if !aOK || !bOK {
		return false
	}
	g.stations[key] = [2]NodeID{aIdx, bIdx}
	return true
}

func nodeSignalBlock(tg *track.Graph, trackNode track.NodeID) (NodeID, bool) {
	for i, s := range tg.Signals() {
		if s.Node == trackNode {
			return NodeID(i), true
		}
	}
	return 0, false
}
