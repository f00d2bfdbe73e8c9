package scenario

import (
	"math"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/interval"
)

// PropagateFlexibility performs one agent's backward flexibility walk
// (spec.md §4.5), grounded on the original source's
// Agent.calculate_flexibility: walking route in reverse, it accumulates a
// monotonically non-increasing buffer time and a monotonically growing
// (capped) compound recovery time, recording both on every traversed
// BlockEdge's store via Store.AddFlexibility. Must run after every agent
// sharing these edges has already merged and inverted its unsafe intervals.
func PropagateFlexibility(bg *block.Graph, route []block.EdgeID, agentID int, maxBuffer, maxCompoundRecovery float64) error {
	lastBuffer := maxBuffer
	compoundRecovery := 0.0
	for i := len(route) - 1; i >= 0; i-- {
		e, err := bg.Edge(route[i])
		if err != nil {
			return err
		}

		localBuffer, localRecovery := localFlexibility(e.Store, agentID)
		if localBuffer < lastBuffer {
			lastBuffer = localBuffer
		}
		if lastBuffer > maxBuffer {
			lastBuffer = maxBuffer
		}

		compoundRecovery += localRecovery
		if compoundRecovery > maxCompoundRecovery {
			compoundRecovery = maxCompoundRecovery
		}

		e.Store.AddFlexibility(agentID, lastBuffer, compoundRecovery)
	}
	return nil
}

// localFlexibility locates agentID's own unsafe interval on the store and
// returns the gap to the safe interval that follows it plus that unsafe
// interval's local recovery time, grounded on
// Agent._get_local_flexibility's zip-then-fallback pattern: zip the merged
// unsafe intervals against the safe intervals offset by one, and if the
// agent's interval is not found among those pairs, fall back to the last
// unsafe interval (an unbounded buffer, since nothing follows it but the
// global end time).
func localFlexibility(s *interval.Store, agentID int) (buffer, recovery float64) {
	unsafe := s.UnsafeIntervals()
	safe := s.SafeIntervals()

	n := len(safe) - 1
	if n > len(unsafe) {
		n = len(unsafe)
	}
	for i := 0; i < n; i++ {
		if unsafe[i].ByAgent == agentID {
			return safe[i+1].Start - unsafe[i].End, unsafe[i].LocalRecoveryTime
		}
	}
	if len(unsafe) > 0 && unsafe[len(unsafe)-1].ByAgent == agentID {
		return math.Inf(1), unsafe[len(unsafe)-1].LocalRecoveryTime
	}
	return math.Inf(1), 0
}
