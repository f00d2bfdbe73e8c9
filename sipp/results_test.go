package sipp_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railsignal/flexsipp/sipp"
)

// repeatSearchStdout mirrors the original source's test fixture for
// Results.parse_list_of_outputs, adapted to this package's ParseResults.
const repeatSearchStdout = `Arrival time: 130.667
Nodes generated: 10 Nodes decreased: 0 Nodes expanded: 8
<-inf,20,130.667,130.667>, <20,50,130.667,160.667>, <50,inf,inf,inf>,
t-EHB <0,50> ns:1
s-123BL <0,150> ns:2
s-125BR <93,160> ns:2
s-131B <88,170> ns:2
t-401B <115,2000> ns:1
t-401A <115,2000> ns:2
<0,20,50,30,[(1: 12.5); (2: 7.5)]>
t-EHB <0,50> ns:1
s-123BL <0,150> ns:2
s-125BR <93,160> ns:2
s-131B <88,170> ns:2
t-401B <115,2000> ns:1
t-401A <115,2000> ns:2
<0,20,50,30,[(1: 12.5); (2: 7.5)]>
Search time: 1141791 nanoseconds
Total (n=100) Lookup time: 10917 nanoseconds`

func TestParseResults_ParsesStatsCompoundATFAndPaths(t *testing.T) {
	r, err := sipp.ParseResults(repeatSearchStdout)
	require.NoError(t, err)

	assert.Equal(t, 10, r.Stats.NodesGenerated)
	assert.Equal(t, 0, r.Stats.NodesDecreased)
	assert.Equal(t, 8, r.Stats.NodesExpanded)

	require.Len(t, r.CompoundATF, 3)
	assert.Equal(t, math.Inf(-1), r.CompoundATF[0].X0)
	assert.Equal(t, 20.0, r.CompoundATF[0].X1)
	assert.True(t, math.IsInf(r.CompoundATF[2].X1, 1))

	require.Len(t, r.Paths, 2)
	p := r.Paths[0]
	require.Len(t, p.Steps, 6)
	assert.Equal(t, "t-EHB", p.Steps[0].Node)
	assert.Equal(t, 0.0, p.Steps[0].IntervalStart)
	assert.Equal(t, 50.0, p.Steps[0].IntervalEnd)
	assert.Equal(t, 1, p.Steps[0].SafeIntervalIdx)

	assert.Equal(t, 0.0, p.ATF.Zeta)
	assert.Equal(t, 20.0, p.ATF.Alpha)
	assert.Equal(t, 50.0, p.ATF.Beta)
	assert.Equal(t, 30.0, p.ATF.Delta)
	require.Len(t, p.ATF.Flexibility, 2)
	assert.Equal(t, 1, p.ATF.Flexibility[0].Agent)
	assert.Equal(t, 12.5, p.ATF.Flexibility[0].Value)
	assert.Equal(t, 2, p.ATF.Flexibility[1].Agent)
	assert.Equal(t, 7.5, p.ATF.Flexibility[1].Value)

	assert.Equal(t, int64(1141791), r.SearchTimeNanos)

	key := strings.Join([]string{"t-EHB", "s-123BL", "s-125BR", "s-131B", "t-401B", "t-401A"}, ";")
	assert.Equal(t, 2, r.UniquePaths[key])
}

func TestParseResults_MissingNodesGeneratedLineErrors(t *testing.T) {
	_, err := sipp.ParseResults("nothing useful here\n")
	assert.Error(t, err)
}
