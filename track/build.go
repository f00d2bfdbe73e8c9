package track

import "fmt"

// partNodes records, per input trackPart ID, the node(s) materialized on
// each side — one node normally, two for a fan side (spec.md §4.1).
type partNodes struct {
	aSide              []NodeID
	bSide              []NodeID
	typ                Type
	name               string
	length             float64
	wisselhoek         *string
	sawMovementAllowed bool
}

// Build constructs a Graph from a Topology document (spec.md §4.1).
// Topology-consistency problems (station ambiguity, absent signal track,
// unresolved SideSwitch mirror) are logged and the offending record is
// dropped; construction proceeds (spec.md §7).
func Build(t Topology, opts ...Option) (*Graph, error) {
	g := newGraph(opts...)

	byID := make(map[int]*partNodes, len(t.TrackParts))
	byIDInput := make(map[int]TrackPartInput, len(t.TrackParts))
	for _, p := range t.TrackParts {
		byIDInput[p.ID] = p
	}

	for _, p := range t.TrackParts {
		typ, ok := typeNames[p.Type]
		if !ok {
			return nil, fmt.Errorf("%w: %q on track part %d", ErrUnknownTrackType, p.Type, p.ID)
		}
		pn := &partNodes{typ: typ, name: p.Name, length: p.Length, wisselhoek: p.Wisselhoek, sawMovementAllowed: p.SawMovementAllowed}
		pn.aSide = materializeSide(g, p, SideA, len(p.ASide) == 2)
		pn.bSide = materializeSide(g, p, SideB, len(p.BSide) == 2)
		byID[p.ID] = pn
		wireRelations(g, pn)
	}

	for _, p := range t.TrackParts {
		pn := byID[p.ID]
		addInternalEdges(g, pn)
	}

	for _, p := range t.TrackParts {
		pn := byID[p.ID]
		connectSide(g, byID, byIDInput, p.ID, pn, p.ASide, SideA)
		connectSide(g, byID, byIDInput, p.ID, pn, p.BSide, SideB)

		if pn.typ == Bumper && p.SawMovementAllowed && len(pn.aSide) == 1 && len(pn.bSide) == 1 {
			a, b := pn.aSide[0], pn.bSide[0]
			g.addEdge(&Edge{From: a, To: b, Length: 0, MaxSpeed: speedFor(p.Wisselhoek)})
			g.addEdge(&Edge{From: b, To: a, Length: 0, MaxSpeed: speedFor(p.Wisselhoek)})
		}

		if pn.typ == SideSwitch {
			wireSideSwitchMirror(g, p, pn)
		}
	}

	associateSameSideEdges(g)
	computeOppositeEdges(g)

	rezeroDistanceMarkers(g, t.DistanceMarkers)
	buildSignals(g, t.Signals, byID)
	buildStations(g, t.Stations, byID)

	return g, nil
}

// materializeSide creates one node (single neighbor) or two sibling nodes
// suffixed L/R (fan, two neighbors) for the given side of a trackPart
// (spec.md §4.1). EnglishSwitch always fans both sides.
func materializeSide(g *Graph, p TrackPartInput, side Side, fan bool) []NodeID {
	typ := typeNames[p.Type]
	if typ == EnglishSwitch {
		fan = true
	}
	base := fmt.Sprintf("%s-%c", p.Name, side)
	if !fan {
		n := &Node{Name: base, Side: side, Type: typ, IsStationPlatform: p.StationPlatform}
		return []NodeID{g.addNode(n)}
	}
	left := &Node{Name: base + "L", Side: side, Type: typ, IsStationPlatform: p.StationPlatform}
	right := &Node{Name: base + "R", Side: side, Type: typ, IsStationPlatform: p.StationPlatform}
	return []NodeID{g.addNode(left), g.addNode(right)}
}

// wireRelations applies the opposite/associated rules of spec.md §4.1 for
// one freshly-materialized trackPart.
func wireRelations(g *Graph, pn *partNodes) {
	switch pn.typ {
	case RailRoad, Bumper:
		if len(pn.aSide) == 1 && len(pn.bSide) == 1 {
			a, b := pn.aSide[0], pn.bSide[0]
			setOpposite(g, a, b)
			if pn.sawMovementAllowed {
				setAssociated(g, a, b)
			}
		}
	case SideSwitch:
		// track-side (the single-node side) pairs with the fan as a
		// two-ended part on its single side; the fan side follows the
		// Switch-fan rule below.
		if len(pn.aSide) == 1 && len(pn.bSide) > 1 {
			wireFan(g, pn.aSide[0], pn.bSide)
		} else if len(pn.bSide) == 1 && len(pn.aSide) > 1 {
			wireFan(g, pn.bSide[0], pn.aSide)
		} else if len(pn.aSide) == 1 && len(pn.bSide) == 1 {
			setOpposite(g, pn.aSide[0], pn.bSide[0])
			if pn.sawMovementAllowed {
				setAssociated(g, pn.aSide[0], pn.bSide[0])
			}
		}
	case Switch:
		if len(pn.aSide) == 1 && len(pn.bSide) > 1 {
			wireFan(g, pn.aSide[0], pn.bSide)
		} else if len(pn.bSide) == 1 && len(pn.aSide) > 1 {
			wireFan(g, pn.bSide[0], pn.aSide)
		}
	case EnglishSwitch:
		for _, a := range pn.aSide {
			for _, b := range pn.bSide {
				setOpposite(g, a, b)
			}
		}
		associateAll(g, pn.aSide)
		associateAll(g, pn.bSide)
	}
}

func wireFan(g *Graph, single NodeID, fan []NodeID) {
	for _, f := range fan {
		setOpposite(g, single, f)
	}
	associateAll(g, fan)
}

func setOpposite(g *Graph, a, b NodeID) {
	na, nb := g.nodes[a], g.nodes[b]
	na.Opposites = append(na.Opposites, b)
	nb.Opposites = append(nb.Opposites, a)
}

func setAssociated(g *Graph, a, b NodeID) {
	na, nb := g.nodes[a], g.nodes[b]
	na.Associated = append(na.Associated, b)
	nb.Associated = append(nb.Associated, a)
	na.CanReverse = true
	nb.CanReverse = true
}

func associateAll(g *Graph, ids []NodeID) {
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := g.nodes[ids[i]], g.nodes[ids[j]]
			a.Associated = append(a.Associated, ids[j])
			b.Associated = append(b.Associated, ids[i])
		}
	}
}

// addInternalEdges adds the bidirectional edges that model traversing the
// physical length of a trackPart itself, connecting every A-side node to
// every B-side node it shares a physical path with. A non-fan part gets a
// single A<->B pair; a fan part gets one pair per fan branch (so a switch
// with a single A and BL/BR gets A<->BL and A<->BR); an EnglishSwitch gets
// all four AL/AR x BL/BR combinations, matching its full cross-connection
// of opposites. Each edge carries the part's own Length and MaxSpeed.
//
// This is the edge model spec.md §4.1 leaves implicit when it describes
// relational outcomes ("A and B are opposites") without spelling out which
// construction step allocates the traversal cost; attributing it here,
// to the part's own A<->B pair, keeps every physical meter of track
// represented by exactly one edge pair.
func addInternalEdges(g *Graph, pn *partNodes) {
	speed := speedFor(pn.wisselhoek)
	for _, a := range pn.aSide {
		for _, b := range pn.bSide {
			g.addEdge(&Edge{From: a, To: b, Length: pn.length, MaxSpeed: speed})
			g.addEdge(&Edge{From: b, To: a, Length: pn.length, MaxSpeed: speed})
		}
	}
}

// sideNodes returns the node slice for the given side of pn.
func sideNodes(pn *partNodes, side Side) []NodeID {
	if side == SideA {
		return pn.aSide
	}
	return pn.bSide
}

// connectSide materializes the zero-length junction edges declared by one
// trackPart's side list: each neighbor ID in the list is resolved to a
// node on the neighbor part (by finding which of the neighbor's own side
// lists contains this part's ID, with position-matched sibling resolution
// on a fan side), and a directed edge is added from this part's node on
// `side` to that resolved node. These edges model two parts physically
// touching at a point — zero additional distance — with the actual
// traversal cost already attributed to each part's own internal edge
// (addInternalEdges); their MaxSpeed is left unconstrained (the straight
// sentinel) so a junction never artificially caps a route's max_velocity.
func connectSide(g *Graph, byID map[int]*partNodes, byIDInput map[int]TrackPartInput, partID int, pn *partNodes, neighbors []int, side Side) {
	nodes := sideNodes(pn, side)
	for i, neighborID := range neighbors {
		npn, ok := byID[neighborID]
		if !ok {
			continue
		}
		ninput := byIDInput[neighborID]
		target := resolveNeighborNode(npn, ninput, partID)
		if target < 0 {
			continue
		}
		from := nodes[0]
		if len(nodes) > 1 && i < len(nodes) {
			from = nodes[i]
		}
		g.addEdge(&Edge{
			From:     from,
			To:       target,
			Length:   0,
			MaxSpeed: kmhToMs(straightSpeedKmh),
		})
	}
}

// resolveNeighborNode finds the node on npn that faces back toward
// partID, by locating partID in npn's own side-list inputs.
func resolveNeighborNode(npn *partNodes, ninput TrackPartInput, partID int) NodeID {
	for i, id := range ninput.ASide {
		if id == partID {
			if i < len(npn.aSide) {
				return npn.aSide[i]
			}
			return npn.aSide[0]
		}
	}
	for i, id := range ninput.BSide {
		if id == partID {
			if i < len(npn.bSide) {
				return npn.bSide[i]
			}
			return npn.bSide[0]
		}
	}
	return -1
}

// wireSideSwitchMirror connects a SideSwitch's track-side node to the
// mirrored neighbor node identified by the deterministic name-mangling
// rule: name[:-3] + name[-2] + name[-3] + "-B", i.e. the last three
// characters dropped and the second- and third-to-last appended in that
// order (spec.md §4.1/§6.1). If that name does not resolve, the mirror is
// logged and skipped; no other candidate name is tried.
func wireSideSwitchMirror(g *Graph, p TrackPartInput, pn *partNodes) {
	mirror := mirrorSideSwitchName(p.Name)
	target, err := g.NodeByName(mirror)
	if err != nil {
		g.log.Error().Str("part", p.Name).Str("mirror", mirror).
			Msg("track: SideSwitch mirror node not found; skipping virtual edge")
		return
	}
	var trackSide NodeID
	switch {
	case len(pn.aSide) == 1:
		trackSide = pn.aSide[0]
	case len(pn.bSide) == 1:
		trackSide = pn.bSide[0]
	default:
		return
	}
	g.addEdge(&Edge{From: trackSide, To: target.ID, Length: 0, MaxSpeed: speedFor(p.Wisselhoek)})
	g.addEdge(&Edge{From: target.ID, To: trackSide, Length: 0, MaxSpeed: speedFor(p.Wisselhoek)})
}

// mirrorSideSwitchName implements the mangling rule literally.
func mirrorSideSwitchName(name string) string {
	n := len(name)
	if n < 3 {
		return name + "-B"
	}
	base := name[:n-3]
	tail := ""
	if n >= 2 {
		tail += string(name[n-2])
	}
	if n >= 3 {
		tail += string(name[n-3])
	}
	return base + tail + "-B"
}

// associateSameSideEdges marks pairwise-associated every pair of edges
// sharing the same From node (spec.md §4.1, "Same-side outgoing edges from
// a node are pairwise associated").
func associateSameSideEdges(g *Graph) {
	byFrom := make(map[NodeID][]EdgeID)
	for _, e := range g.edges {
		byFrom[e.From] = append(byFrom[e.From], e.ID)
	}
	for _, ids := range byFrom {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := g.edges[ids[i]], g.edges[ids[j]]
				a.Associated = append(a.Associated, ids[j])
				b.Associated = append(b.Associated, ids[i])
			}
		}
	}
}

// computeOppositeEdges sets each edge's Opposites to the outgoing edges of
// its To node's opposite nodes (spec.md §4.1).
func computeOppositeEdges(g *Graph) {
	outgoing := make(map[NodeID][]EdgeID)
	for _, e := range g.edges {
		outgoing[e.From] = append(outgoing[e.From], e.ID)
	}
	for _, e := range g.edges {
		toNode := g.nodes[e.To]
		for _, opp := range toNode.Opposites {
			e.Opposites = append(e.Opposites, outgoing[opp]...)
		}
	}
}

// rezeroDistanceMarkers subtracts the minimum marker value from all
// markers (spec.md §6.1).
func rezeroDistanceMarkers(g *Graph, markers map[string]float64) {
	if len(markers) == 0 {
		return
	}
	min := 0.0
	first := true
	for _, v := range markers {
		if first || v < min {
			min = v
			first = false
		}
	}
	for k, v := range markers {
		g.distanceMarkers[k] = v - min
	}
}

func buildSignals(g *Graph, signals []SignalInput, byID map[int]*partNodes) {
	for _, s := range signals {
		pn, ok := byID[s.Track]
		if !ok {
			g.log.Error().Str("signal", s.Name).Int("track", s.Track).
				Msg("track: signal references an absent track part; dropping signal")
			continue
		}
		var nodes []NodeID
		if s.Side == "A" {
			nodes = pn.aSide
		} else {
			nodes = pn.bSide
		}
		if len(nodes) == 0 {
			continue
		}
		sig := Signal{Name: s.Name, Node: nodes[0]}
		g.signals = append(g.signals, sig)
		g.signalByName[s.Name] = sig
	}
}

func buildStations(g *Graph, stations []StationInput, byID map[int]*partNodes) {
	for _, s := range stations {
		pn, ok := byID[s.TrackID]
		if !ok {
			g.log.Error().Str("station", s.StationName).Msg("track: station references an absent track part; skipping")
			continue
		}
		if len(pn.aSide) != 1 || len(pn.bSide) != 1 {
			g.log.Error().Str("station", s.StationName).
				Msg("track: station side resolves to more than one sub-node; skipping")
			continue
		}
		key := stationKey(s.StationName, s.Platform())
		g.stations[key] = Station{SideA: pn.aSide[0], SideB: pn.bSide[0]}
	}
}
