package block

// Validate checks that every block node is reachable from at least one
// other block node via Reachable, an undirected traversal of the block
// arena (both an edge and its reverse count): the question is whether a
// signal is stranded in the topology at all, not which way traffic can
// flow. Unreachable nodes are topology-consistency diagnostics (spec.md
// §7): logged, non-fatal, returned for the caller to record.
func (g *Graph) Validate() []string {
	if len(g.nodes) == 0 {
		return nil
	}

	visited := make(map[NodeID]bool, len(g.nodes))
	var unreachable []string
	for _, n := range g.nodes {
		if visited[n.ID] {
			continue
		}
		order := g.Reachable(n.ID)
		for _, id := range order {
			visited[id] = true
		}
		if len(order) == 1 {
			g.log.Error().Str("node", n.Name).Msg("block: signal unreachable from every other signal")
			unreachable = append(unreachable, n.Name)
		}
	}
	return unreachable
}
