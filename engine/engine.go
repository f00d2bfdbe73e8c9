// Package engine orchestrates one planning cycle end to end: track
// topology and scenario documents in, a flexible-ATF instance (and
// optionally a downstream search result) out (spec.md §3 "Pipeline",
// §4, §5).
package engine

import (
	"context"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/interval"
	"github.com/railsignal/flexsipp/kinematics"
	"github.com/railsignal/flexsipp/scenario"
	"github.com/railsignal/flexsipp/sipp"
	"github.com/railsignal/flexsipp/track"
)

// Engine runs one planning cycle. Every Plan call creates its own
// interval.IndexAllocator (and sipp.GenerateATFs creates another for the
// replan copy), so no index counter is shared between Engine values and
// concurrent replanning is simply running independent Engine values
// (spec.md §5, "concurrent replanning = independent engine instances").
type Engine struct {
	Sweep *kinematics.Sweep

	// MaxBuffer and MaxCompoundRecovery are the per-experiment flexibility
	// caps of spec.md §4.5, both defaulting to +Inf.
	MaxBuffer           float64
	MaxCompoundRecovery float64

	log zerolog.Logger
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithLogger attaches a structured logger, passed to track and block
// construction and, when no sweep is supplied via WithSweep, to the default
// kinematics sweep. The block graph's interval stores do not receive it.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithSweep overrides the default kinematics.Sweep (constant-velocity
// mode, one approach block).
func WithSweep(s *kinematics.Sweep) Option {
	return func(e *Engine) { e.Sweep = s }
}

// WithFlexibilityBudget overrides the default +Inf buffer/compound-recovery
// caps (spec.md §4.5).
func WithFlexibilityBudget(maxBuffer, maxCompoundRecovery float64) Option {
	return func(e *Engine) {
		e.MaxBuffer = maxBuffer
		e.MaxCompoundRecovery = maxCompoundRecovery
	}
}

// New returns an Engine configured with spec.md §9's defaults.
func New(opts ...Option) *Engine {
	e := &Engine{
		MaxBuffer:           math.Inf(1),
		MaxCompoundRecovery: math.Inf(1),
		log:                 zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Sweep == nil {
		e.Sweep = kinematics.NewSweep(kinematics.WithLogger(e.log))
	}
	return e
}

// RunID is the uuid identifying one Plan() invocation's Result
// (SPEC_FULL.md §3). It is not written to log lines or to the instance file.
type RunID = uuid.UUID

// Result is the output of one planning cycle: the block graph (with every
// agent's reservations already swept in, merged, and inverted), a pristine
// pre-merge snapshot of the same graph carrying the same flexibility data
// (the source WriteInstance clones from so it can still filter a replanned
// agent's own unsafe intervals before re-merging — spec.md §4.4,
// "Filtering"), the per-train plans resolved from the scenario document,
// and the global end time the sweep/inversion used.
type Result struct {
	RunID         RunID
	BlockGraph    *block.Graph
	RawBlockGraph *block.Graph
	Plans         []scenario.Plan
	GlobalEndTime float64
}

// Plan runs track derivation, station resolution, the per-agent kinematic
// sweep, the first merge/invert pass (so safe intervals exist for flexibility
// propagation's zip lookup), and flexibility propagation itself (spec.md
// §4.1-§4.5). Before merging, it snapshots the swept-but-unmerged graph
// (RawBlockGraph) and afterward transplants the computed flexibility data
// onto it, so WriteInstance has a still-unmerged, per-agent-filterable
// source to replan from instead of the already-merged BlockGraph (spec.md
// §4.4, "Filtering... is done on a working copy, before merging and
// inversion"). It does not generate ATFs — callers needing a frozen
// instance should call WriteInstance afterward, since ATF generation is
// destructive (spec.md §4.6 "Edge length reinterpretation") and must run on
// a CloneForReplan working copy scoped to one train.
func (e *Engine) Plan(topology track.Topology, input scenario.Input) (*Result, error) {
	tg, err := track.Build(topology, track.WithLogger(e.log))
	if err != nil {
		return nil, fmt.Errorf("engine: building track graph: %w", err)
	}

	bg, err := block.FromTrackGraph(tg, block.WithLogger(e.log))
	if err != nil {
		return nil, fmt.Errorf("engine: deriving block graph: %w", err)
	}

	scenario.ResolveStations(bg, tg)

	plans, globalEndTime, err := scenario.Build(input, bg, tg)
	if err != nil {
		return nil, fmt.Errorf("engine: building scenario: %w", err)
	}

	for _, p := range plans {
		if err := e.Sweep.Run(bg, tg, p.Agent); err != nil {
			return nil, fmt.Errorf("engine: sweeping agent %s: %w", p.TrainNumber, err)
		}
	}

	raw := bg.Clone()

	idx := interval.NewIndexAllocator()
	for _, n := range bg.Nodes() {
		if err := n.Store.Merge(); err != nil {
			return nil, fmt.Errorf("engine: merging block node %s: %w", n.Name, err)
		}
		if err := n.Store.Invert(globalEndTime, idx); err != nil {
			return nil, fmt.Errorf("engine: inverting block node %s: %w", n.Name, err)
		}
	}
	for _, edge := range bg.Edges() {
		if err := edge.Store.Merge(); err != nil {
			return nil, fmt.Errorf("engine: merging block edge %d: %w", edge.ID, err)
		}
		if err := edge.Store.Invert(globalEndTime, idx); err != nil {
			return nil, fmt.Errorf("engine: inverting block edge %d: %w", edge.ID, err)
		}
	}

	for _, p := range plans {
		if err := scenario.PropagateFlexibility(bg, p.Agent.Route, p.Agent.ID, e.MaxBuffer, e.MaxCompoundRecovery); err != nil {
			return nil, fmt.Errorf("engine: propagating flexibility for agent %s: %w", p.TrainNumber, err)
		}
	}

	raw.CopyFlexibilityFrom(bg)

	return &Result{
		RunID:         uuid.New(),
		BlockGraph:    bg,
		RawBlockGraph: raw,
		Plans:         plans,
		GlobalEndTime: globalEndTime,
	}, nil
}

// WriteInstance builds the replanning working copy for the given train's
// speed (spec.md §4.6's meters-to-seconds rescale) and agentID (spec.md
// §4.4's "Filtering" step: agentID's own unsafe intervals are removed from
// every store before merging, so the replanned train never reserves against
// itself), generates its flexible ATFs against a backward heuristic rooted
// at goal, and serializes the result to w in the instance-file grammar
// spec.md §6.4 defines.
func (e *Engine) WriteInstance(w io.Writer, res *Result, agentID int, trainSpeed float64, goal block.NodeID, agentVelocity float64) error {
	replan := res.RawBlockGraph.CloneForReplan(trainSpeed)

	for _, n := range replan.Nodes() {
		n.Store.FilterOutAgent(agentID)
	}
	for _, edge := range replan.Edges() {
		edge.Store.FilterOutAgent(agentID)
	}

	heuristic := sipp.Heuristic(replan, goal, agentVelocity)

	atfs, err := sipp.GenerateATFs(replan, res.GlobalEndTime, heuristic)
	if err != nil {
		return fmt.Errorf("engine: generating ATFs: %w", err)
	}

	if err := sipp.Write(w, replan, atfs); err != nil {
		return fmt.Errorf("engine: writing instance: %w", err)
	}
	return nil
}

// RunSearch invokes the downstream search executable against an
// already-written instance file (spec.md §5: "downstream search is a
// separate process invoked with a timeout").
func (e *Engine) RunSearch(ctx context.Context, timeout time.Duration, origin, destination, instancePath string, startTime float64) (*sipp.Results, error) {
	return sipp.RunSearch(ctx, timeout, origin, destination, instancePath, startTime, sipp.WithSearchLogger(e.log))
}
