package scenario_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/interval"
	"github.com/railsignal/flexsipp/scenario"
	"github.com/railsignal/flexsipp/track"
)

// buildTwoEdgeRoute returns a block graph shaped S1 -> S2 -> S3, each hop a
// single BlockEdge, for flexibility-propagation tests that need to control
// each edge's Store directly.
func buildTwoEdgeRoute(t *testing.T) (*block.Graph, []block.EdgeID) {
	t.Helper()
	topo := track.Topology{
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
	tg, err := track.Build(topo)
	require.NoError(t, err)
	bg, err := block.FromTrackGraph(tg)
	require.NoError(t, err)

	s1, err := bg.NodeByName("S1")
	require.NoError(t, err)
	s2, err := bg.NodeByName("S2")
	require.NoError(t, err)
	s3, err := bg.NodeByName("S3")
	require.NoError(t, err)

	first := bg.OutgoingEdges(s1.ID)
	require.Len(t, first, 1) // S1 is a dead end, only one direction to explore

	// S2 sits mid-line, so it has both a backward (toward S1) and a forward
	// (toward S3) outgoing edge; select the forward one explicitly.
	var second *block.Edge
	for _, e := range bg.OutgoingEdges(s2.ID) {
		if e.To == s3.ID {
			second = e
		}
	}
	require.NotNil(t, second)

	return bg, []block.EdgeID{first[0].ID, second.ID}
}

func TestPropagateFlexibility_WalksRouteBackwardAndCapsValues(t *testing.T) {
	bg, route := buildTwoEdgeRoute(t)

	first, err := bg.Edge(route[0])
	require.NoError(t, err)
	second, err := bg.Edge(route[1])
	require.NoError(t, err)

	require.NoError(t, first.Store.Add(interval.UnsafeInterval{Start: 0, End: 10, Duration: 10, ByAgent: 1, LocalRecoveryTime: 2}))
	require.NoError(t, second.Store.Add(interval.UnsafeInterval{Start: 20, End: 30, Duration: 10, ByAgent: 1, LocalRecoveryTime: 3}))

	require.NoError(t, first.Store.Merge())
	require.NoError(t, second.Store.Merge())

	idx := interval.NewIndexAllocator()
	require.NoError(t, first.Store.Invert(100, idx))
	require.NoError(t, second.Store.Invert(100, idx))

	err = scenario.PropagateFlexibility(bg, route, 1, math.Inf(1), math.Inf(1))
	require.NoError(t, err)

	// second edge: agent 1's own unsafe interval (20..30) is immediately
	// followed by the trailing safe interval starting at 30 (no other agent
	// occupies this store), so the local gap is 0; recovery is its own 3.
	buf2, crt2 := second.Store.Flexibility(1)
	assert.Equal(t, 0.0, buf2)
	assert.Equal(t, 3.0, crt2)

	// first edge: the agent's own unsafe interval (0..10) here ends exactly
	// where the trailing safe interval begins too (no zip partner left, so
	// this falls back to +inf), but lastBuffer was already pinned to 0 by
	// the second edge in the reverse walk and the fallback's +inf cannot
	// raise it back up; recovery accumulates 2 (this edge) + 3 (carried
	// from the edge behind it in the reverse walk) = 5.
	buf1, crt1 := first.Store.Flexibility(1)
	assert.Equal(t, 0.0, buf1)
	assert.Equal(t, 5.0, crt1)
}

func TestPropagateFlexibility_CapsAtMaxBufferAndMaxCompoundRecovery(t *testing.T) {
	bg, route := buildTwoEdgeRoute(t)

	first, err := bg.Edge(route[0])
	require.NoError(t, err)
	second, err := bg.Edge(route[1])
	require.NoError(t, err)

	require.NoError(t, first.Store.Add(interval.UnsafeInterval{Start: 0, End: 10, Duration: 10, ByAgent: 1, LocalRecoveryTime: 50}))
	require.NoError(t, second.Store.Add(interval.UnsafeInterval{Start: 20, End: 30, Duration: 10, ByAgent: 1, LocalRecoveryTime: 50}))
	require.NoError(t, first.Store.Merge())
	require.NoError(t, second.Store.Merge())

	idx := interval.NewIndexAllocator()
	require.NoError(t, first.Store.Invert(100, idx))
	require.NoError(t, second.Store.Invert(100, idx))

	err = scenario.PropagateFlexibility(bg, route, 1, 5, 60)
	require.NoError(t, err)

	_, crt2 := second.Store.Flexibility(1)
	assert.Equal(t, 50.0, crt2)

	buf1, crt1 := first.Store.Flexibility(1)
	assert.Equal(t, 0.0, buf1)  // pinned by the second edge's 0 gap; the +inf fallback here cannot raise it
	assert.Equal(t, 60.0, crt1) // 50+50=100 capped at maxCompoundRecovery=60
}
