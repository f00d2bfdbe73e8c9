package sipp

import (
	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/interval"
)

// FlexibleATF is one flexible arrival-time function between a safe interval
// on a BlockNode and a safe interval on a neighboring BlockNode across one
// BlockEdge safe interval (spec.md §3 "ArrivalTimeFunction (ATF)", §4.6).
type FlexibleATF struct {
	FromNode block.NodeID
	ToNode   block.NodeID

	FromID int // from_interval.Index
	ToID   int // to_interval.Index

	Zeta  float64
	Alpha float64
	Beta  float64
	Delta float64 // edge traversal time, post CloneForReplan rescale

	TrainBefore int
	CrtBefore   float64
	TrainAfter  int
	BufferAfter float64
	CrtAfter    float64

	Heuristic float64
}

// valid reports spec.md §4.6's validity filter: zeta <= alpha < beta.
func (a FlexibleATF) valid() bool {
	return a.Zeta <= a.Alpha && a.Alpha < a.Beta
}

// GenerateATFs inverts every node and edge store in bg (spec.md §4.4) and
// then walks the (from-node, edge, to-node) triple of spec.md §4.6: for
// each from-node safe interval, each outgoing edge safe interval
// intersecting it, and each to-node safe interval intersecting that edge
// interval, it emits one FlexibleATF. heuristic supplies the per-node
// lower-bound time-to-goal annotation (from Heuristic, keyed by the
// from-node). bg must be a working copy already rescaled by
// block.Graph.CloneForReplan — Delta is read directly off each edge's
// (already-seconds) Length.
func GenerateATFs(bg *block.Graph, globalEndTime float64, heuristic map[block.NodeID]float64) ([]FlexibleATF, error) {
	idx := interval.NewIndexAllocator()

	for _, n := range bg.Nodes() {
		if !n.Store.Merged() {
			if err := n.Store.Merge(); err != nil {
				return nil, err
			}
		}
		if err := n.Store.Invert(globalEndTime, idx); err != nil {
			return nil, err
		}
	}
	for _, e := range bg.Edges() {
		if !e.Store.Merged() {
			if err := e.Store.Merge(); err != nil {
				return nil, err
			}
		}
		if err := e.Store.Invert(globalEndTime, idx); err != nil {
			return nil, err
		}
	}

	var atfs []FlexibleATF
	for _, fromNode := range bg.Nodes() {
		h := heuristic[fromNode.ID]
		for _, fromInterval := range fromNode.Store.SafeIntervals() {
			for _, e := range bg.OutgoingEdges(fromNode.ID) {
				toNode, err := bg.Node(e.To)
				if err != nil {
					continue
				}
				for _, edgeInterval := range e.Store.SafeIntervals() {
					if _, _, ok := interval.Intersect(fromInterval, edgeInterval); !ok {
						continue
					}
					for _, toInterval := range toNode.Store.SafeIntervals() {
						if _, _, ok := interval.Intersect(edgeInterval, toInterval); !ok {
							continue
						}

						delta := e.Length
						atf := FlexibleATF{
							FromNode: fromNode.ID,
							ToNode:   toNode.ID,
							FromID:   fromInterval.Index,
							ToID:     toInterval.Index,
							Zeta:     fromInterval.Start,
							Alpha:    maxF(fromInterval.Start, edgeInterval.Start, toInterval.Start-delta),
							Beta:     minF(fromInterval.End, edgeInterval.End, toInterval.End-delta),
							Delta:    delta,

							TrainBefore: edgeInterval.AgentBefore,
							CrtBefore:   edgeInterval.CrtBefore,
							TrainAfter:  edgeInterval.AgentAfter,
							BufferAfter: edgeInterval.BufferAfter,
							CrtAfter:    edgeInterval.CrtAfter,

							Heuristic: h,
						}
						if atf.valid() {
							atfs = append(atfs, atf)
						}
					}
				}
			}
		}
	}
	return atfs, nil
}

func maxF(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minF(vs ...float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
