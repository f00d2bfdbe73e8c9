package block_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/track"
)

// straightLineTopology builds two RailRoad parts joined end to end, each
// carrying a bounding signal, with no switch in between.
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

// switchFanTopology builds a signal S1, a Switch fanning into two branch
// tracks R2/R3, each terminating at its own signal (S2/S3), so a single
// signal has two distinct terminating routes.
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

// deadEndTopology builds a single RailRoad part with one bounding signal
// and no neighbor on its far side, so the derived route dead-ends without
// ever reaching another signal.
func deadEndTopology() track.Topology {
	return track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "D1", Length: 20, Type: "RailRoad"},
		},
		Signals: []track.SignalInput{
			{Name: "D-start", Track: 1, Side: "A"},
		},
	}
}

func TestFromTrackGraph_StraightLineProducesOneBlockEdgePerDirection(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)

	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	require.Len(t, bg.Nodes(), 2)
	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	s2, err := bg.NodeByName("S2")
	require.NoError(t, err)

	out := bg.OutgoingEdges(s1.ID)
	require.Len(t, out, 1)
	edge := out[0]
	assert.Equal(t, s2.ID, edge.To)
	// R1 internal (100) + junction (0) + R2 internal (50).
	assert.Equal(t, 150.0, edge.Length)
	assert.NotEmpty(t, edge.TrackRoute)
}

func TestFromTrackGraph_SwitchFanYieldsOneEdgePerBranch(t *testing.T) {
	tg, err := track.Build(switchFanTopology())
	require.NoError(t, err)

	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	s2, err := bg.NodeByName("S2")
	require.NoError(t, err)
	s3, err := bg.NodeByName("S3")
	require.NoError(t, err)

	out := bg.OutgoingEdges(s1.ID)
	require.Len(t, out, 2)

	var toS2, toS3 *block.Edge
	for _, e := range out {
		switch e.To {
		case s2.ID:
			toS2 = e
		case s3.ID:
			toS3 = e
		}
	}
	require.NotNil(t, toS2)
	require.NotNil(t, toS3)
	// R1 (100) + junction (0) + SW1 internal (10) + junction (0) + R2 (50).
	assert.Equal(t, 160.0, toS2.Length)
	// R1 (100) + junction (0) + SW1 internal (10) + junction (0) + R3 (60).
	assert.Equal(t, 170.0, toS3.Length)
}

func TestFromTrackGraph_DeadEndRouteIsDropped(t *testing.T) {
	tg, err := track.Build(deadEndTopology())
	require.NoError(t, err)

	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	require.Len(t, bg.Nodes(), 1)
	assert.Empty(t, bg.Edges())
}

func TestGraph_AffectedBlocksIncludesRouteContainingTrackEdge(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	r1A, err := tg.NodeByName("R1-A")
	require.NoError(t, err)
	edges := tg.OutgoingEdges(r1A.ID)
	require.NotEmpty(t, edges)
	trackEdgeID := edges[0].ID

	// The edge's own route (S1->S2) comes first; the reverse route (S2->S1)
	// is affected too, since it passes through both of the edge's endpoints.
	affected := bg.AffectedBlocks(tg, trackEdgeID)
	require.Len(t, affected, 2)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	out := bg.OutgoingEdges(s1.ID)
	require.Len(t, out, 1)
	assert.Equal(t, out[0].ID, affected[0])
}

func TestGraph_CloneForReplanRescalesLengthBySpeed(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	replan := bg.CloneForReplan(10)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	orig := bg.OutgoingEdges(s1.ID)[0]
	scaled := replan.OutgoingEdges(s1.ID)[0]

	assert.Equal(t, 150.0, orig.Length, "original graph must not be mutated")
	assert.Equal(t, 15.0, scaled.Length)
}

func TestGraph_ValidateReportsUnreachableSignal(t *testing.T) {
	topo := track.Topology{
		TrackParts: []track.TrackPartInput{
			{ID: 1, Name: "R1", Length: 100, Type: "RailRoad"},
			{ID: 2, Name: "R2", Length: 100, Type: "RailRoad"},
		},
		Signals: []track.SignalInput{
			{Name: "Lonely1", Track: 1, Side: "A"},
			{Name: "Lonely2", Track: 2, Side: "A"},
		},
	}
	tg, err := track.Build(topo)
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	unreachable := bg.Validate()
	assert.ElementsMatch(t, []string{"Lonely1", "Lonely2"}, unreachable)
}

func TestGraph_CanonicalDirectionIsABWhenCrossingSides(t *testing.T) {
	tg, err := track.Build(straightLineTopology())
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	out := bg.OutgoingEdges(s1.ID)
	require.Len(t, out, 1)
	assert.Equal(t, block.DirAB, out[0].Direction)
}
