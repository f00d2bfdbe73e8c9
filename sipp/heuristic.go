// Package sipp generates the flexible arrival-time-function instance a
// downstream SIPP-style search consumes, and invokes that search (spec.md
// §3 "search-executable boundary", §4.6, §6.3).
package sipp

import (
	"container/heap"
	"math"

	"github.com/railsignal/flexsipp/block"
)

// Heuristic returns, for every BlockNode, a lower-bound time-to-goal
// estimate: a backward Dijkstra from goal over incoming edges, weighted by
// edge.Length / min(edge.MaxVelocity, agentVelocity) (spec.md §4.6,
// "Heuristic"). Nodes unreachable from goal (walking backward) are given
// math.Inf(1), mirroring the teacher's dijkstra.go convention of a fully
// populated distance map rather than a sparse one.
func Heuristic(bg *block.Graph, goal block.NodeID, agentVelocity float64) map[block.NodeID]float64 {
	dist := make(map[block.NodeID]float64, len(bg.Nodes()))
	for _, n := range bg.Nodes() {
		dist[n.ID] = math.Inf(1)
	}
	dist[goal] = 0

	pq := make(nodePQ, 0, len(bg.Nodes()))
	heap.Init(&pq)
	heap.Push(&pq, &nodeItem{id: goal, dist: 0})

	visited := make(map[block.NodeID]bool, len(bg.Nodes()))
	for pq.Len() > 0 {
		item := heap.Pop(&pq).(*nodeItem)
		v := item.id
		if visited[v] {
			continue
		}
		visited[v] = true

		for _, e := range bg.IncomingEdges(v) {
			velocity := e.MaxVelocity
			if agentVelocity < velocity {
				velocity = agentVelocity
			}
			if velocity <= 0 {
				continue
			}
			candidate := dist[v] + e.Length/velocity
			if candidate < dist[e.From] {
				dist[e.From] = candidate
				heap.Push(&pq, &nodeItem{id: e.From, dist: candidate})
			}
		}
	}
	return dist
}

// nodeItem is a BlockNode and its current best-known distance to goal,
// following the teacher's dijkstra.go lazy-decrease-key pattern: a node can
// be pushed onto the heap more than once, and stale entries are discarded
// via visited on pop rather than removed up front.
type nodeItem struct {
	id   block.NodeID
	dist float64
}

type nodePQ []*nodeItem

func (pq nodePQ) Len() int            { return len(pq) }
func (pq nodePQ) Less(i, j int) bool   { return pq[i].dist < pq[j].dist }
func (pq nodePQ) Swap(i, j int)        { pq[i], pq[j] = pq[j], pq[i] }
func (pq *nodePQ) Push(x interface{})  { *pq = append(*pq, x.(*nodeItem)) }
func (pq *nodePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
