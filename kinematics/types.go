// Package kinematics walks one agent's route through the BlockGraph,
// computing the blocking-time occupation and approach intervals that seed
// every traversed BlockEdge's IntervalStore (spec.md §3/§4.3).
package kinematics

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/track"
)

// Mode selects which kinematic refinement the sweep applies per TrackEdge
// (spec.md §4.3, "make this a named parameter" rather than a subclass —
// spec.md §9, "Agent parametricity").
type Mode int

const (
	// ConstantVelocity assumes the agent instantly reaches
	// min(edge.MaxSpeed, train.Speed) and holds it for the whole edge.
	ConstantVelocity Mode = iota
	// Acceleration models a bounded acceleration/deceleration ramp between
	// the carried-over velocity and the edge's target speed.
	Acceleration
)

// Sentinel errors for sweep construction and execution.
var (
	ErrEmptyRoute    = errors.New("kinematics: agent route is empty")
	ErrBlockEdgeGone = errors.New("kinematics: agent route references an unknown block edge")
)

// TrainItem is the agent's kinematic and timing profile (spec.md §4.3,
// "measures (TrainItem)").
type TrainItem struct {
	Length            float64 // meters
	Speed             float64 // m/s, the train's own maximum
	Acceleration      float64 // m/s^2
	Deceleration      float64 // m/s^2
	WalkingSpeed      float64 // m/s
	MinimumStopTime   float64 // seconds
	SightReactionTime float64 // seconds
	SetupTime         float64 // seconds
	ReleaseTime       float64 // seconds
	StartTime         float64 // seconds
}

// Agent is one train's planned route through the block graph, in the order
// the sweep must traverse it (spec.md §4.3).
type Agent struct {
	ID       int
	Route    []block.EdgeID
	Measures TrainItem
}

// EdgeTiming is one traversed TrackEdge's occupation window, recorded for
// diagnostics (spec.md §6.3 supplement: a non-plotting consumer of the
// per-edge timing data the original source's set_plotting_info/plot_route
// fed into matplotlib).
type EdgeTiming struct {
	BlockEdge  block.EdgeID
	TrackEdge  track.EdgeID
	Start, End float64
}

// Sweep configures and runs the per-agent kinematic blocking-time
// computation of spec.md §4.3.
type Sweep struct {
	Mode Mode

	// ApproachBlocks is the configurable N of spec.md §4.3 step 4 / §9's
	// open question: how many next blocks in the agent's route receive the
	// approach interval. Defaults to 1 ("reflect signal-sight-distance
	// reservations").
	ApproachBlocks int

	log zerolog.Logger

	timelines map[int][]EdgeTiming
}

// Option configures a Sweep at construction.
type Option func(*Sweep)

// WithMode selects the kinematic refinement (default ConstantVelocity).
func WithMode(m Mode) Option { return func(s *Sweep) { s.Mode = m } }

// WithApproachBlocks overrides the default approach-block count (1).
func WithApproachBlocks(n int) Option { return func(s *Sweep) { s.ApproachBlocks = n } }

// WithLogger attaches a structured logger for interval-anomaly diagnostics
// raised indirectly through interval.Store.Add (spec.md §7).
func WithLogger(l zerolog.Logger) Option { return func(s *Sweep) { s.log = l } }

// NewSweep returns a Sweep configured with spec.md §9's defaults
// (ConstantVelocity, ApproachBlocks=1), overridden by opts.
func NewSweep(opts ...Option) *Sweep {
	s := &Sweep{
		Mode:           ConstantVelocity,
		ApproachBlocks: 1,
		log:            zerolog.Nop(),
		timelines:      make(map[int][]EdgeTiming),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Timeline returns the recorded per-TrackEdge occupation windows for
// agentID, in traversal order, for test assertions and blocking-time
// diagnostics without a plotting library (SPEC_FULL.md §6.3).
func (s *Sweep) Timeline(agentID int) []EdgeTiming {
	return s.timelines[agentID]
}
