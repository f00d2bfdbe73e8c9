package kinematics

import (
	"fmt"
	"math"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/interval"
	"github.com/railsignal/flexsipp/track"
)

// Run walks agent's route through bg (backed by tg for per-TrackEdge
// detail), seeding every traversed BlockEdge's IntervalStore with an
// occupation UnsafeInterval and propagating an approach UnsafeInterval to
// the next ApproachBlocks edges in the route (spec.md §4.3). State across
// the sweep is (cur_time, velocity), initialized from
// (agent.Measures.StartTime, 0).
func (s *Sweep) Run(bg *block.Graph, tg *track.Graph, agent Agent) error {
	if len(agent.Route) == 0 {
		return ErrEmptyRoute
	}

	curTime := agent.Measures.StartTime
	velocity := 0.0

	for i, blockEdgeID := range agent.Route {
		be, err := bg.Edge(blockEdgeID)
		if err != nil {
			return fmt.Errorf("%w: %d", ErrBlockEdgeGone, blockEdgeID)
		}

		for _, trackEdgeID := range be.TrackRoute {
			te, err := tg.Edge(trackEdgeID)
			if err != nil {
				continue
			}

			stationTime := 0.0
			if departure, ok := te.StopsAtStation[agent.ID]; ok {
				stationTime = departure - curTime
				velocity = 0
			}

			v := math.Min(te.MaxSpeed, agent.Measures.Speed)

			var vAvg, endV float64
			switch s.Mode {
			case Acceleration:
				vAvg, endV = s.accelerate(v, velocity, te.Length, agent.Measures)
			default:
				vAvg, endV = v, v
			}

			clearing := agent.Measures.Length / endV
			end := curTime + te.Length/vAvg + clearing + stationTime

			_, dwelled := te.StopsAtStation[agent.ID]
			recovery := localRecoveryTime(dwelled, stationTime, te.Length, vAvg, agent.Measures.MinimumStopTime)

			occupation := interval.UnsafeInterval{
				Start:             curTime,
				End:               end + agent.Measures.ReleaseTime,
				Duration:          te.Length/vAvg + stationTime,
				ByAgent:           agent.ID,
				LocalRecoveryTime: recovery,
			}
			for _, affectedID := range bg.AffectedBlocks(tg, trackEdgeID) {
				affected, err := bg.Edge(affectedID)
				if err != nil {
					continue
				}
				if err := affected.Store.Add(occupation); err != nil {
					s.log.Error().Err(err).Str("block_edge", fmt.Sprint(affectedID)).
						Msg("kinematics: failed to add occupation interval")
				}
			}

			approachStart := curTime + stationTime - agent.Measures.SetupTime - agent.Measures.SightReactionTime
			approachEnd := curTime + stationTime + te.Length/vAvg
			approach := interval.UnsafeInterval{
				Start:   approachStart,
				End:     approachEnd,
				ByAgent: agent.ID,
			}
			for k := 1; k <= s.ApproachBlocks; k++ {
				j := i + k
				if j >= len(agent.Route) {
					break
				}
				nb, err := bg.Edge(agent.Route[j])
				if err != nil {
					continue
				}
				if err := nb.Store.Add(approach); err != nil {
					s.log.Error().Err(err).Str("block_edge", fmt.Sprint(agent.Route[j])).
						Msg("kinematics: failed to add approach interval")
				}
			}

			s.timelines[agent.ID] = append(s.timelines[agent.ID], EdgeTiming{
				BlockEdge: blockEdgeID,
				TrackEdge: trackEdgeID,
				Start:     curTime,
				End:       end,
			})

			curTime = approachEnd
			velocity = endV
		}
	}
	return nil
}

// accelerate implements spec.md §4.3's acceleration-mode refinement:
// a = +acceleration if the edge's target speed exceeds the carried-over
// velocity, else -deceleration; v_avg/end_v follow the two-branch formula
// depending on whether the edge is long enough to reach v before its end.
func (s *Sweep) accelerate(v, velocity, length float64, m TrainItem) (vAvg, endV float64) {
	a := m.Acceleration
	if v <= velocity {
		a = -m.Deceleration
	}
	if a == 0 {
		return v, v
	}
	lMin := (v*v - velocity*velocity) / (2 * a)
	if lMin >= length {
		vAvg = (velocity + math.Sqrt(velocity*velocity+2*a*length)) / 2
		if vAvg == 0 {
			return v, v
		}
		endV = velocity + (length/vAvg)*a
		return vAvg, endV
	}
	denom := (v-velocity)/a + (length-lMin)/v
	if denom == 0 {
		return v, v
	}
	vAvg = length / denom
	return vAvg, v
}

// localRecoveryTime implements spec.md §4.3's three-way recovery rule.
func localRecoveryTime(scheduledStop bool, stationTime, length, vAvg, minimumStopTime float64) float64 {
	switch {
	case scheduledStop:
		return math.Max(0, stationTime-minimumStopTime)
	case length == 0:
		return 0
	default:
		return (length / vAvg) - length/(vAvg*1.08)
	}
}
