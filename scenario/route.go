package scenario

import (
	"fmt"
	"math"

	"github.com/railsignal/flexsipp/block"
	"github.com/railsignal/flexsipp/track"
)

// ResolveStations registers every track-level station into bg's
// station-to-block-node index (spec.md §4.2's station resolution), so that
// CalculateRoute can later look up any station key a scenario document
// names. Only the scenario layer holds both graphs at once, which is why
// this lives here rather than in block or track.
func ResolveStations(bg *block.Graph, tg *track.Graph) {
	for key, st := range tg.Stations() {
		bg.AddStation(key, st.SideA, st.SideB, tg)
	}
}

// applyScheduledStop records agentID's scheduled departure time on the
// TrackEdge directly spanning station key's bounding node pair, in both
// directions (the sweep only ever walks one of them, depending on the
// agent's direction of travel, so both must carry the entry). This is
// spec.md §4.3 step 1's "scheduled-dwell" input: kinematics.Sweep reads
// track.Edge.StopsAtStation to compute the time an agent spends standing at
// a platform before it resumes.
func applyScheduledStop(tg *track.Graph, key string, agentID int, departure float64) error {
	st, ok := tg.Stations()[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStationNotFound, key)
	}
	set := func(from, to track.NodeID) {
		for _, e := range tg.OutgoingEdges(from) {
			if e.To == to {
				if e.StopsAtStation == nil {
					e.StopsAtStation = make(map[int]float64)
				}
				e.StopsAtStation[agentID] = departure
			}
		}
	}
	set(st.SideA, st.SideB)
	set(st.SideB, st.SideA)
	return nil
}

// shortestBlockPath returns the ordered BlockEdges and total length of the
// shortest route from "from" to "to", via block.Graph.ShortestPath/PathTo
// (a Dijkstra over the block arena itself, weighted by Edge.Length).
func shortestBlockPath(bg *block.Graph, from, to block.NodeID) ([]block.EdgeID, float64, error) {
	dist, via := bg.ShortestPath(from)
	length, ok := dist[to]
	if !ok || math.IsInf(length, 1) {
		return nil, 0, fmt.Errorf("%w: node %d -> node %d", ErrNoRoute, from, to)
	}
	path, ok := bg.PathTo(via, from, to)
	if !ok {
		return nil, 0, fmt.Errorf("%w: node %d -> node %d", ErrNoRoute, from, to)
	}
	return path, length, nil
}

// CalculateRoute resolves a sequence of station keys into an ordered list of
// BlockEdges spanning them (spec.md §4.5's route construction). Each
// station resolves to two bounding block nodes (its "A side" and "B side");
// for every leg this picks whichever combination of the current and next
// station's sides yields the shorter shortest-path, then fixes the arrival
// side as the departure side for the following leg — a simplification of
// the original source's multi-way get_initial_direction/distance_between_nodes
// comparison, settled on here since it reaches the same route whenever a
// station's two sides are not both reachable from the prior leg at equal
// cost.
func CalculateRoute(bg *block.Graph, locations []string) ([]block.EdgeID, error) {
	if len(locations) < 2 {
		return nil, ErrRouteTooShort
	}

	candidates := make([][2]block.NodeID, len(locations))
	for i, loc := range locations {
		pair, ok := bg.Station(loc)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrStationNotFound, loc)
		}
		candidates[i] = pair
	}

	var route []block.EdgeID
	curOptions := []block.NodeID{candidates[0][0], candidates[0][1]}
	for i := 1; i < len(locations); i++ {
		toOptions := []block.NodeID{candidates[i][0], candidates[i][1]}

		found := false
		bestLen := math.Inf(1)
		var bestPath []block.EdgeID
		var bestTo block.NodeID
		for _, from := range curOptions {
			for _, to := range toOptions {
				path, length, err := shortestBlockPath(bg, from, to)
				if err != nil {
					continue
				}
				if !found || length < bestLen {
					found = true
					bestLen = length
					bestPath = path
					bestTo = to
				}
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s -> %s", ErrNoRoute, locations[i-1], locations[i])
		}

		route = append(route, bestPath...)
		curOptions = []block.NodeID{bestTo}
	}
	return route, nil
}
