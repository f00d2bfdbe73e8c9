package block

import (
	"container/heap"
	"math"
)

// ShortestPath runs a forward Dijkstra from source over the block arena,
// weighted by Edge.Length, returning the per-node best-known distance and
// the edge each node was last reached through. Unreachable nodes carry
// math.Inf(1), the same fully-populated-map convention sipp.Heuristic uses
// for its backward search. Grounded on the teacher's dijkstra.go
// lazy-decrease-key container/heap pattern (and sipp.Heuristic's
// block-arena adaptation of it), operating directly on NodeID/EdgeID
// instead of mirroring the graph into a generic, string-keyed substrate —
// scenario.CalculateRoute (spec.md §4.5's route construction) is the sole
// caller.
func (g *Graph) ShortestPath(source NodeID) (dist map[NodeID]float64, via map[NodeID]EdgeID) {
	dist = make(map[NodeID]float64, len(g.nodes))
	via = make(map[NodeID]EdgeID, len(g.nodes))
	for _, n := range g.nodes {
		dist[n.ID] = math.Inf(1)
	}
	dist[source] = 0

	pq := make(spPQ, 0, len(g.nodes))
	heap.Init(&pq)
	heap.Push(&pq, &spItem{id: source, dist: 0})

	visited := make(map[NodeID]bool, len(g.nodes))
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*spItem)
		u := item.id
		if visited[u] {
			continue
		}
		visited[u] = true

		for _, e := range g.OutgoingEdges(u) {
			candidate := dist[u] + e.Length
			if candidate < dist[e.To] {
				dist[e.To] = candidate
				via[e.To] = e.ID
				heap.Push(&pq, &spItem{id: e.To, dist: candidate})
			}
		}
	}
	return dist, via
}

// PathTo reconstructs the ordered edges from source to target out of the
// via map a prior ShortestPath(source) call returned, walking the
// predecessor chain backward from target. ok is false if target was never
// reached.
func (g *Graph) PathTo(via map[NodeID]EdgeID, source, target NodeID) (path []EdgeID, ok bool) {
	if source == target {
		return nil, true
	}
	cur := target
	for cur != source {
		eid, seen := via[cur]
		if !seen {
			return nil, false
		}
		path = append([]EdgeID{eid}, path...)
		e, err := g.Edge(eid)
		if err != nil {
			return nil, false
		}
		cur = e.From
	}
	return path, true
}

// Reachable returns every NodeID reachable from start, treating every edge
// as undirected — used by Validate, which only asks whether a signal is
// stranded from the rest of the topology, not which way traffic can flow
// between them. Grounded on the teacher's bfs.go queue-and-visited-set
// shape, adapted to walk the block arena's own edge slice directly instead
// of a generic core.Graph/Neighbors indirection.
func (g *Graph) Reachable(start NodeID) []NodeID {
	visited := map[NodeID]bool{start: true}
	order := []NodeID{start}
	queue := []NodeID{start}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range g.edges {
			var v NodeID
			switch u {
			case e.From:
				v = e.To
			case e.To:
				v = e.From
			default:
				continue
			}
			if !visited[v] {
				visited[v] = true
				order = append(order, v)
				queue = append(queue, v)
			}
		}
	}
	return order
}

type spItem struct {
	id   NodeID
	dist float64
}

type spPQ []*spItem

func (pq spPQ) Len() int            { return len(pq) }
func (pq spPQ) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq spPQ) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *spPQ) Push(x interface{}) { *pq = append(*pq, x.(*spItem)) }
func (pq *spPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
