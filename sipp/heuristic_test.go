package sipp_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/sipp"
	"github.com/railsignal/flexsipp/track"
)

func threeSignalTopology() track.Topology {
	return track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "R1", Length: 100, Type: "RailRoad", BSide: []int{2}},
			{ID: 2, Name: "R2", Length: 100, Type: "RailRoad", ASide: []int{1}, BSide: []int{3}},
			{ID: 3, Name: "R3", Length: 100, Type: "RailRoad", ASide: []int{2}},
		},
		Signals: []track.SignalInput{
			{Name: "S1", Track: 1, Side: "A"},
			{Name: "S2", Track: 2, Side: "A"},
			{Name: "S3", Track: 3, Side: "B"},
		},
	}
}

func buildThreeSignalBlockGraph(t *testing.T) *block.Graph {
	t.Helper()
	tg, err := track.Build(threeSignalTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)
	return bg
}

func TestHeuristic_ZeroAtGoalAndIncreasesWithDistance(t *testing.T) {
	bg := buildThreeSignalBlockGraph(t)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	s2, err := bg.NodeByName("S2")
	require.NoError(t, err)
	s3, err := bg.NodeByName("S3")
	require.NoError(t, err)

	h := sipp.Heuristic(bg, s3.ID, 10)

	assert.Equal(t, 0.0, h[s3.ID])
	assert.Greater(t, h[s2.ID], 0.0)
	assert.Greater(t, h[s1.ID], h[s2.ID])
}

func TestHeuristic_UnreachableNodeIsInfinite(t *testing.T) {
	// Two entirely disjoint straight lines: no block edge connects T1/T2 to
	// S1/S2/S3, so a heuristic rooted at S3 must leave T1/T2 at +inf.
	topo := track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "R1", Length: 100, Type: "RailRoad", BSide: []int{2}},
			{ID: 2, Name: "R2", Length: 100, Type: "RailRoad", ASide: []int{1}, BSide: []int{3}},
			{ID: 3, Name: "R3", Length: 100, Type: "RailRoad", ASide: []int{2}},
			{ID: 4, Name: "Q1", Length: 100, Type: "RailRoad"},
		},
		Signals: []track.SignalInput{
			{Name: "S1", Track: 1, Side: "A"},
			{Name: "S2", Track: 2, Side: "A"},
			{Name: "S3", Track: 3, Side: "B"},
			{Name: "T1", Track: 4, Side: "A"},
			{Name: "T2", Track: 4, Side: "B"},
		},
	}
	tg, err := track.Build(topo)
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	s3, err := bg.NodeByName("S3")
	require.NoError(t, err)
	t1, err := bg.NodeByName("T1")
	require.NoError(t, err)

	h := sipp.Heuristic(bg, s3.ID, 10)
	assert.Equal(t, 0.0, h[s3.ID])
	assert.True(t, math.IsInf(h[t1.ID], 1))
}
