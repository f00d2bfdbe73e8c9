package sipp

import (
	"bufio"
	"fmt"
	"io"

	"github.com/railsignal/flexsipp/block"
)

// Write serializes bg's node safe intervals and atfs in the instance-file
// grammar the downstream search executable expects (spec.md §6.4), after
// remapping every SafeInterval.Index to a dense range starting at 0 in
// node-arena, interval-order (spec.md §4.6, "Create an index map").
//
// bg must be the same working copy GenerateATFs ran against: the safe
// intervals it emits must still be attached to the node Stores.
func Write(w io.Writer, bg *block.Graph, atfs []FlexibleATF) error {
	bw := bufio.NewWriter(w)

	remap := make(map[int]int)
	vertexCount := 0
	for _, n := range bg.Nodes() {
		for _, si := range n.Store.SafeIntervals() {
			remap[si.Index] = vertexCount
			vertexCount++
		}
	}

	if _, err := fmt.Fprintf(bw, "vertex count: %d\n", vertexCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "edge count: %d\n", len(atfs)); err != nil {
		return err
	}

	for _, n := range bg.Nodes() {
		for _, si := range n.Store.SafeIntervals() {
			if _, err := fmt.Fprintf(bw, "%s %g %g %d %g %d %g %g\n",
				n.Name, si.Start, si.End, si.AgentBefore, si.CrtBefore, si.AgentAfter, si.BufferAfter, si.CrtAfter); err != nil {
				return err
			}
		}
	}

	maxAgent := 0
	for _, a := range atfs {
		fromID := remap[a.FromID]
		toID := remap[a.ToID]
		if _, err := fmt.Fprintf(bw, "%d %d %g %g %g %g %d %g %d %g %g %g\n",
			fromID, toID, a.Zeta, a.Alpha, a.Beta, a.Delta,
			a.TrainBefore, a.CrtBefore, a.TrainAfter, a.BufferAfter, a.CrtAfter, a.Heuristic); err != nil {
			return err
		}
		if a.TrainBefore > maxAgent {
			maxAgent = a.TrainBefore
		}
		if a.TrainAfter > maxAgent {
			maxAgent = a.TrainAfter
		}
	}

	if _, err := fmt.Fprintf(bw, "num_trains %d\n", maxAgent); err != nil {
		return err
	}

	return bw.Flush()
}
