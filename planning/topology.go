package planning

import (
	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

// Topology is the wiring derived from a shortest path tree and the final
// phase of every light.
type Topology struct {
	Segments  []models.WireSegment
	PhaseInfo map[models.Phase]models.PhaseRoute
}

// ExtractTopology tags every tree edge used by a phased light with the
// phases flowing through it, wires islands internally with their own phase,
// and records the farthest light per phase.
func ExtractTopology(g *routing.Graph, tree *routing.Tree, lights []models.Light, nodes []int, panelID int) Topology {
	topo := Topology{PhaseInfo: make(map[models.Phase]models.PhaseRoute)}
	if tree.Root == routing.NoParent {
		return topo
	}

	type usage struct {
		edge   [2]int
		phases []models.Phase
	}
	var used []*usage
	byEdge := make(map[[2]int]*usage)
	for i, l := range lights {
		if !l.Phase.Valid() {
			continue
		}
		for _, e := range tree.EdgesToRoot(nodes[i]) {
			key := e
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			u, ok := byEdge[key]
			if !ok {
				u = &usage{edge: key}
				byEdge[key] = u
				used = append(used, u)
			}
			if !containsPhase(u.phases, l.Phase) {
				u.phases = append(u.phases, l.Phase)
			}
		}
	}
	for _, u := range used {
		phase := models.SegmentMixed
		if len(u.phases) == 1 {
			phase = models.SegmentPhase(u.phases[0])
		}
		topo.Segments = append(topo.Segments, segment(g, u.edge, phase, panelID))
	}

	// Islands carry the phase of their first light.
	wired := make([]bool, len(lights))
	for start, l := range lights {
		if wired[start] || !l.Phase.Valid() || tree.Reachable(nodes[start]) {
			continue
		}
		component := routing.Component(g, nodes[start])
		members := make(map[int]bool, len(component))
		for _, n := range component {
			members[n] = true
		}
		for i := start; i < len(lights); i++ {
			if lights[i].Phase.Valid() && !tree.Reachable(nodes[i]) && members[nodes[i]] {
				wired[i] = true
			}
		}
		for _, e := range routing.InternalEdges(g, component) {
			topo.Segments = append(topo.Segments, segment(g, e, models.SegmentPhase(l.Phase), panelID))
		}
	}

	for _, p := range models.Phases {
		topo.PhaseInfo[p] = models.PhaseRoute{Path: []models.Coordinate{}}
	}
	for i, l := range lights {
		if !l.Phase.Valid() || !tree.Reachable(nodes[i]) {
			continue
		}
		dist := tree.Dist[nodes[i]]
		if dist > topo.PhaseInfo[l.Phase].Distance {
			topo.PhaseInfo[l.Phase] = models.PhaseRoute{
				Distance: dist,
				Path:     tree.PathFromRoot(g, nodes[i]),
			}
		}
	}
	return topo
}

func segment(g *routing.Graph, e [2]int, phase models.SegmentPhase, panelID int) models.WireSegment {
	return models.WireSegment{
		Path:    []models.Coordinate{g.Position(e[0]), g.Position(e[1])},
		Phase:   phase,
		PanelID: panelID,
	}
}

func containsPhase(phases []models.Phase, p models.Phase) bool {
	for _, q := range phases {
		if q == p {
			return true
		}
	}
	return false
}
