package engine_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/engine"
	"github.com/railsignal/flexsipp/scenario"
	"github.com/railsignal/flexsipp/track"
)

func twoStationTopology() track.Topology {
	return track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "PU", Length: 10, Type: "RailRoad", BSide: []int{2}},
			{ID: 2, Name: "R", Length: 100, Type: "RailRoad", ASide: []int{1}, BSide: []int{3}},
			{ID: 3, Name: "PV", Length: 10, Type: "RailRoad", ASide: []int{2}},
		},
		Signals: []track.SignalInput{
			{Name: "S1", Track: 1, Side: "A"},
			{Name: "S2", Track: 1, Side: "B"},
			{Name: "S3", Track: 3, Side: "A"},
			{Name: "S4", Track: 3, Side: "B"},
		},
		Stations: []track.StationInput{
			{StationName: "u", RawPlatform: []byte(`"1"`), TrackID: 1},
			{StationName: "v", RawPlatform: []byte(`"1"`), TrackID: 3},
		},
	}
}

func oneTrainInput() scenario.Input {
	return scenario.Input{
		WalkingSpeed:      1.4,
		SightReactionTime: 5,
		SetupTime:         3,
		ReleaseTime:       2,
		Types: []scenario.TrainType{
			{Name: "SLT", Length: 65, SpeedKmh: 140, Acceleration: 1.0, Deceleration: 1.2, MinimumStationTime: 20},
		},
		Trains: []scenario.Train{
			{
				TrainNumber:    "500",
				TrainUnitTypes: []string{"SLT"},
				Movements: scenario.Movements{
					StartLocation: "U|1",
					EndLocation:   "V|1",
					StartTime:     0,
					EndTime:       60,
				},
			},
		},
	}
}

func TestEngine_PlanProducesOnePlanPerTrainAndSeedsStores(t *testing.T) {
	e := engine.New()
	res, err := e.Plan(twoStationTopology(), oneTrainInput())
	require.NoError(t, err)

	require.Len(t, res.Plans, 1)
	assert.Equal(t, "500", res.Plans[0].TrainNumber)
	assert.Equal(t, 120.0, res.GlobalEndTime)
	assert.NotEqual(t, res.RunID.String(), "00000000-0000-0000-0000-000000000000")

	for _, n := range res.BlockGraph.Nodes() {
		assert.True(t, n.Store.Merged())
	}
	for _, edge := range res.BlockGraph.Edges() {
		assert.True(t, edge.Store.Merged())
	}
}

func TestEngine_WriteInstanceProducesParsableGrammar(t *testing.T) {
	e := engine.New()
	res, err := e.Plan(twoStationTopology(), oneTrainInput())
	require.NoError(t, err)

	goal, err := res.BlockGraph.NodeByName("S3")
	require.NoError(t, err)

	var buf strings.Builder
	err = e.WriteInstance(&buf, res, res.Plans[0].Agent.ID, 140.0/3.6, goal.ID, 140.0/3.6)
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "vertex count: "))
	assert.Contains(t, out, "edge count: ")
	assert.Contains(t, out, "num_trains")
}
