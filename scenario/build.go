package scenario

import (
	"fmt"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/kinematics"
	"github.com/railsignal/flexsipp/track"
)

// Plan is one constructed agent: its kinematic profile and the BlockEdge
// route the sweep should run it over.
type Plan struct {
	TrainNumber string
	Agent       kinematics.Agent
}

// Build constructs one Plan per train in in, resolving each itinerary to a
// BlockEdge route via CalculateRoute, and returns the global end time
// spec.md §4.3's sweep and §4.4's inversion both need: twice the latest
// scheduled arrival across every train (spec.md §6.2, grounded on the
// original source's Scenario.__init__ setting
// g_block.global_end_time = max(2 * movements.endTime)).
func Build(in Input, bg *block.Graph, tg *track.Graph) ([]Plan, float64, error) {
	types := make(map[string]TrainType, len(in.Types))
	for _, t := range in.Types {
		types[t.Name] = t
	}

	globalEndTime := 0.0
	plans := make([]Plan, 0, len(in.Trains))

	for agentIdx, train := range in.Trains {
		if len(train.TrainUnitTypes) == 0 {
			return nil, 0, fmt.Errorf("%w: train %s has no unit types", ErrUnknownTrainType, train.TrainNumber)
		}

		lead, ok := types[train.TrainUnitTypes[0]]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrUnknownTrainType, train.TrainUnitTypes[0])
		}

		var totalLength float64
		for _, name := range train.TrainUnitTypes {
			ut, ok := types[name]
			if !ok {
				return nil, 0, fmt.Errorf("%w: %s", ErrUnknownTrainType, name)
			}
			totalLength += ut.Length
		}

		measures := kinematics.TrainItem{
			Length:            totalLength,
			Speed:             lead.SpeedKmh / 3.6,
			Acceleration:      lead.Acceleration,
			Deceleration:      lead.Deceleration,
			WalkingSpeed:      in.WalkingSpeed,
			MinimumStopTime:   lead.MinimumStationTime,
			SightReactionTime: in.SightReactionTime,
			SetupTime:         in.SetupTime,
			ReleaseTime:       in.ReleaseTime,
			StartTime:         train.Movements.StartTime,
		}

		locations := make([]string, 0, len(train.Movements.Stops)+2)
		locations = append(locations, train.Movements.StartLocation)
		for _, stop := range train.Movements.Stops {
			locations = append(locations, stop.Location)
		}
		locations = append(locations, train.Movements.EndLocation)

		route, err := CalculateRoute(bg, locations)
		if err != nil {
			return nil, 0, fmt.Errorf("train %s: %w", train.TrainNumber, err)
		}

		// Agent identity starts at 1 (spec.md §3: agent 0 is the "no agent"
		// sentinel), unlike the original source's zero-based Agent.id counter.
		agentID := agentIdx + 1

		for _, stop := range train.Movements.Stops {
			if err := applyScheduledStop(tg, stop.Location, agentID, stop.Time); err != nil {
				return nil, 0, fmt.Errorf("train %s: %w", train.TrainNumber, err)
			}
		}

		plans = append(plans, Plan{
			TrainNumber: train.TrainNumber,
			Agent:       kinematics.Agent{ID: agentID, Route: route, Measures: measures},
		})

		if end := 2 * train.Movements.EndTime; end > globalEndTime {
			globalEndTime = end
		}
	}

	return plans, globalEndTime, nil
}
