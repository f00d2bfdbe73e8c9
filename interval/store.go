package interval

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/railsignal/flexsipp/railerr"
)

// IndexAllocator hands out the monotonic SafeInterval.Index values used
// across one engine run. Spec.md §9 requires this counter be scoped to an
// engine instance rather than a package-level global, so independent
// engines can run concurrently without collision — unlike the original
// Python source's class-level `Interval.index` counter.
type IndexAllocator struct {
	next int
}

// NewIndexAllocator returns an allocator starting at zero.
func NewIndexAllocator() *IndexAllocator {
	return &IndexAllocator{}
}

// Next returns the next unused index and advances the counter.
func (a *IndexAllocator) Next() int {
	idx := a.next
	a.next++
	return idx
}

// StoreOption configures a Store at construction, following the teacher's
// functional-options convention (core.GraphOption).
type StoreOption func(*Store)

// WithLogger attaches a structured logger used to report topology/interval
// anomalies (spec.md §7) at error level without aborting the pipeline. The
// zero value (zerolog.Nop()) is used when no logger is supplied.
func WithLogger(l zerolog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

// Store is the IntervalStore trait shared by block.Node and block.Edge
// (spec.md §3), each of which holds its own *Store in a named field rather
// than reaching it via inheritance (spec.md §9, "prefer composition...
// exposed by index rather than by inheritance").
type Store struct {
	label string // owning node/edge name, for diagnostics only

	unsafe []UnsafeInterval // sorted by Start; duplicates across agents allowed until merge
	safe   []SafeInterval   // populated by Invert

	merged bool

	bt  map[int]float64 // agent id -> buffer time
	crt map[int]float64 // agent id -> compound recovery time

	log zerolog.Logger
}

// NewStore returns an empty, unmerged Store labelled for diagnostics.
func NewStore(label string, opts ...StoreOption) *Store {
	s := &Store{
		label: label,
		bt:    make(map[int]float64),
		crt:   make(map[int]float64),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Merged reports whether Merge has already run on this store.
func (s *Store) Merged() bool { return s.merged }

// UnsafeIntervals returns the store's unsafe intervals in their current
// sorted order. The returned slice must not be mutated by the caller.
func (s *Store) UnsafeIntervals() []UnsafeInterval { return s.unsafe }

// SafeIntervals returns the safe intervals produced by Invert (nil before
// inversion has run).
func (s *Store) SafeIntervals() []SafeInterval { return s.safe }

// Add inserts an unsafe interval into the sorted-by-start container
// (spec.md §4.4, "Adding"). Returns railerr(KindInvariant) if the store was
// already merged (spec.md §3, "adding further unsafe intervals invalidates
// the store") and railerr(KindInterval) if start > end.
func (s *Store) Add(u UnsafeInterval) error {
	if s.merged {
		return railerr.Wrap(railerr.KindInvariant, ErrAlreadyMerged)
	}
	if u.Start > u.End {
		return railerr.Wrap(railerr.KindInterval, ErrBadBounds)
	}
	i := sort.Search(len(s.unsafe), func(i int) bool { return s.unsafe[i].Start >= u.Start })
	s.unsafe = append(s.unsafe, UnsafeInterval{})
	copy(s.unsafe[i+1:], s.unsafe[i:])
	s.unsafe[i] = u
	return nil
}

// FilterOutAgent removes every unsafe interval contributed by agentID, used
// to exclude a replanned agent's own reservations from the constraint set
// before merging (spec.md §4.4, "Filtering"). Must be called on a working
// copy, never on the shared store, and only before Merge.
func (s *Store) FilterOutAgent(agentID int) {
	kept := s.unsafe[:0]
	for _, u := range s.unsafe {
		if u.ByAgent != agentID {
			kept = append(kept, u)
		}
	}
	s.unsafe = kept
}

// CopyFlexibilityFrom replaces this store's buffer/compound-recovery-time
// maps with a copy of other's. Used to transplant flexibility data computed
// by PropagateFlexibility (which needs a merged/inverted store) onto a
// pristine, still-unmerged sibling store of the same node/edge, so that
// sibling can later be filtered (FilterOutAgent) and merged/inverted fresh
// for a specific replanned agent without losing the flexibility values
// already computed for every other agent.
func (s *Store) CopyFlexibilityFrom(other *Store) {
	s.bt = make(map[int]float64, len(other.bt))
	for k, v := range other.bt {
		s.bt[k] = v
	}
	s.crt = make(map[int]float64, len(other.crt))
	for k, v := range other.crt {
		s.crt[k] = v
	}
}

// Clone returns a deep copy of the store, suitable as the "working copy"
// spec.md §4.4/§4.6 repeatedly requires before destructive per-replanning
// operations (FilterOutAgent, Merge, Invert), mirroring
// the teacher's core.Graph.Clone pattern.
func (s *Store) Clone() *Store {
	c := &Store{
		label:  s.label,
		merged: s.merged,
		bt:     make(map[int]float64, len(s.bt)),
		crt:    make(map[int]float64, len(s.crt)),
		log:    s.log,
	}
	c.unsafe = append(c.unsafe, s.unsafe...)
	c.safe = append(c.safe, s.safe...)
	for k, v := range s.bt {
		c.bt[k] = v
	}
	for k, v := range s.crt {
		c.crt[k] = v
	}
	return c
}

// Merge performs the single irreversible left-to-right absorption pass of
// spec.md §4.4: starting from the first interval, each subsequent interval
// is absorbed into the current one iff their non-strict intersection is
// non-empty (max(starts) <= min(ends)). Absorption extends End to the max
// of the two, sums Duration and LocalRecoveryTime, and keeps the earlier
// (first-in-sorted-order) interval's ByAgent — the "first-agent-wins"
// policy this module adopts for spec.md §9's open question on merged
// agent identity.
//
// An interval with Start > End that survives to this point (spec.md §7,
// "interval-anomaly") is logged and skipped rather than aborting the pass;
// a zero-length interval (Start == End) is kept.
func (s *Store) Merge() error {
	if s.merged {
		return railerr.Wrap(railerr.KindInvariant, ErrAlreadyMerged)
	}
	merged := make([]UnsafeInterval, 0, len(s.unsafe))
	for _, next := range s.unsafe {
		if next.Start > next.End {
			s.log.Error().Str("store", s.label).Float64("start", next.Start).Float64("end", next.End).
				Msg("interval: skipping anomalous unsafe interval during merge")
			continue
		}
		if len(merged) == 0 {
			merged = append(merged, next)
			continue
		}
		last := &merged[len(merged)-1]
		lo := last.Start
		if next.Start > lo {
			lo = next.Start
		}
		hi := last.End
		if next.End < hi {
			hi = next.End
		}
		if lo <= hi {
			if next.End > last.End {
				last.End = next.End
			}
			last.Duration += next.Duration
			last.LocalRecoveryTime += next.LocalRecoveryTime
			// first-agent-wins: last.ByAgent (the earlier-sorted interval) is kept.
		} else {
			merged = append(merged, next)
		}
	}
	s.unsafe = merged
	s.merged = true
	return nil
}

// AddFlexibility records this store's buffer/compound-recovery-time
// contribution for agentID, min-aggregating against any value already
// present (spec.md §4.5's backward walk visits the same move at most once
// per agent in practice, but min-aggregation matches the canonical
// get_flexibility/add_flexibility behavior in the reference source).
func (s *Store) AddFlexibility(agentID int, buffer, crt float64) {
	if cur, ok := s.bt[agentID]; !ok || buffer < cur {
		s.bt[agentID] = buffer
	}
	if cur, ok := s.crt[agentID]; !ok || crt < cur {
		s.crt[agentID] = crt
	}
}

// Flexibility returns the recorded (buffer, crt) for agentID, defaulting to
// (0, 0) when absent (spec.md §4.4, "defaulting to 0").
func (s *Store) Flexibility(agentID int) (buffer, crt float64) {
	return s.bt[agentID], s.crt[agentID]
}

// Invert walks the merged unsafe intervals in order and emits a SafeInterval
// for each gap, per spec.md §4.4's "Inversion": `[current, start)` before
// each unsafe interval, then `[current, globalEndTime)` after the last,
// unless empty. Must run after Merge (ErrNotMerged otherwise). idx supplies
// the monotonic Index values (spec.md §9: engine-scoped, not global).
func (s *Store) Invert(globalEndTime float64, idx *IndexAllocator) error {
	if !s.merged {
		return railerr.Wrap(railerr.KindInvariant, ErrNotMerged)
	}
	current := 0.0
	s.safe = s.safe[:0]
	var prevAgent int
	for i, u := range s.unsafe {
		if current > u.Start {
			s.log.Error().Str("store", s.label).Float64("current", current).Float64("start", u.Start).
				Msg("interval: inversion anomaly, current exceeds next unsafe start; skipping to preserve monotonicity")
			if u.End > current {
				current = u.End
			}
			prevAgent = u.ByAgent
			continue
		}
		if current < u.Start {
			buffer, crt := s.Flexibility(prevAgent)
			afterBuffer, afterCrt := s.Flexibility(u.ByAgent)
			si := SafeInterval{
				Start:       current,
				End:         u.Start,
				AgentBefore: prevAgent,
				CrtBefore:   crt,
				AgentAfter:  u.ByAgent,
				BufferAfter: afterBuffer,
				CrtAfter:    afterCrt,
				Index:       idx.Next(),
			}
			_ = buffer // buffer time for the preceding agent is carried on that agent's own safe interval, not here
			s.safe = append(s.safe, si)
		}
		current = u.End
		prevAgent = u.ByAgent
		_ = i
	}
	if current < globalEndTime {
		buffer, crt := s.Flexibility(prevAgent)
		_ = buffer
		s.safe = append(s.safe, SafeInterval{
			Start:       current,
			End:         globalEndTime,
			AgentBefore: prevAgent,
			CrtBefore:   crt,
			AgentAfter:  NoAgent,
			Index:       idx.Next(),
		})
	}
	return nil
}
