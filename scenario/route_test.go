package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/scenario"
	"github.com/railsignal/flexsipp/track"
)

func straightLineTopology() track.Topology {
	return track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "R1", Length: 100, Type: "RailRoad", BSide: []int{2}},
			{ID: 2, Name: "R2", Length: 50, Type: "RailRoad", ASide: []int{1}},
		},
		Signals: []track.SignalInput{
			{Name: "S1", Track: 1, Side: "A"},
			{Name: "S2", Track: 2, Side: "B"},
		},
	}
}

func switchFanTopology() track.Topology {
	return track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "R1", Length: 100, Type: "RailRoad", BSide: []int{2}},
			{ID: 2, Name: "SW1", Length: 10, Type: "Switch", ASide: []int{1}, BSide: []int{3, 4}},
			{ID: 3, Name: "R2", Length: 50, Type: "RailRoad", ASide: []int{2}},
			{ID: 4, Name: "R3", Length: 60, Type: "RailRoad", ASide: []int{2}},
		},
		Signals: []track.SignalInput{
			{Name: "S1", Track: 1, Side: "A"},
			{Name: "S2", Track: 3, Side: "B"},
			{Name: "S3", Track: 4, Side: "B"},
		},
	}
}

func addDegenerateStation(t *testing.T, bg *block.Graph, tg *track.Graph, key, signal string) {
	t.Helper()
	sig, ok := tg.SignalByName(signal)
	require.True(t, ok)
	require.True(t, bg.AddStation(key, sig.Node, sig.Node, tg))
}

func TestCalculateRoute_StraightLineReturnsSingleEdge(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	addDegenerateStation(t, bg, tg, "U|1", "S1")
	addDegenerateStation(t, bg, tg, "V|1", "S2")

	route, err := scenario.CalculateRoute(bg, []string{"U|1", "V|1"})
	require.NoError(t, err)
	require.Len(t, route, 1)

	e, err := bg.Edge(route[0])
	require.NoError(t, err)
	assert.Equal(t, 150.0, e.Length)
}

func TestCalculateRoute_PicksCheaperSwitchBranch(t *testing.T) {
	tg, err := track.Build(switchFanTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	addDegenerateStation(t, bg, tg, "ORIGIN|1", "S1")
	addDegenerateStation(t, bg, tg, "NEAR|1", "S2")
	addDegenerateStation(t, bg, tg, "FAR|1", "S3")

	nearRoute, err := scenario.CalculateRoute(bg, []string{"ORIGIN|1", "NEAR|1"})
	require.NoError(t, err)
	require.Len(t, nearRoute, 1)
	nearEdge, err := bg.Edge(nearRoute[0])
	require.NoError(t, err)
	assert.Equal(t, 160.0, nearEdge.Length)

	farRoute, err := scenario.CalculateRoute(bg, []string{"ORIGIN|1", "FAR|1"})
	require.NoError(t, err)
	require.Len(t, farRoute, 1)
	farEdge, err := bg.Edge(farRoute[0])
	require.NoError(t, err)
	assert.Equal(t, 170.0, farEdge.Length)
}

func TestCalculateRoute_UnknownStationErrors(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	_, err = scenario.CalculateRoute(bg, []string{"GHOST|1", "ALSO-GHOST|1"})
	assert.ErrorIs(t, err, scenario.ErrStationNotFound)
}

func TestCalculateRoute_TooShortLocationsErrors(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	_, err = scenario.CalculateRoute(bg, []string{"ONLY|1"})
	assert.ErrorIs(t, err, scenario.ErrRouteTooShort)
}

func TestResolveStations_RegistersTrackStations(t *testing.T) {
	topo := track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "PLAT", Length: 30, Type: "RailRoad"},
		},
		Signals: []track.SignalInput{
			{Name: "P1", Track: 1, Side: "A"},
			{Name: "P2", Track: 1, Side: "B"},
		},
		Stations: []track.StationInput{
			{StationName: "u", RawPlatform: []byte(`"1"`), TrackID: 1},
		},
	}
	tg, err := track.Build(topo)
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	scenario.ResolveStations(bg, tg)

	_, ok := bg.Station("U|1")
	assert.True(t, ok)
}
