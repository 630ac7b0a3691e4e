package planning

import (
	"sort"

	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

// phaseLoads tracks the running watts per phase, indexed by phase number.
type phaseLoads [4]float64

// lightest returns the phase with the lowest load, preferring the lowest
// phase number on ties.
func (l *phaseLoads) lightest() models.Phase {
	best := models.Phase1
	for _, p := range models.Phases[1:] {
		if l[p] < l[best] {
			best = p
		}
	}
	return best
}

func (l *phaseLoads) add(p models.Phase, watts float64) {
	l[p] += watts
}

type branch struct {
	root   int
	lights []int
	watts  float64
}

// BalancePhases assigns a phase to every light of one panel. nodes[i] is
// the graph node nearest to lights[i]. Lights are handled in three groups:
// whole branches off the root, heaviest first; then disconnected islands as
// units; then any remaining reachable light one by one. Each group goes to
// the currently lightest phase.
func BalancePhases(g *routing.Graph, tree *routing.Tree, lights []models.Light, nodes []int) []models.Phase {
	phases := make([]models.Phase, len(lights))
	if tree.Root == routing.NoParent || len(lights) == 0 {
		return phases
	}

	var loads phaseLoads

	branches := make(map[int]*branch)
	var order []*branch
	for _, nb := range g.Neighbors(tree.Root) {
		if _, ok := branches[nb.Node]; ok {
			continue
		}
		b := &branch{root: nb.Node}
		branches[nb.Node] = b
		order = append(order, b)
	}
	for i, node := range nodes {
		if node == tree.Root || !tree.Reachable(node) {
			continue
		}
		if b, ok := branches[tree.BranchRoot(node)]; ok {
			b.lights = append(b.lights, i)
			b.watts += lights[i].PowerW
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].watts > order[j].watts })
	for _, b := range order {
		if len(b.lights) == 0 {
			continue
		}
		target := loads.lightest()
		for _, i := range b.lights {
			phases[i] = target
		}
		loads.add(target, b.watts)
	}

	// Islands: lights whose node has no path to the root.
	grouped := make([]bool, len(lights))
	for start := range lights {
		if grouped[start] || phases[start] != models.PhaseNone || tree.Reachable(nodes[start]) {
			continue
		}
		members := make(map[int]bool)
		for _, n := range routing.Component(g, nodes[start]) {
			members[n] = true
		}
		var island []int
		var watts float64
		for i := start; i < len(lights); i++ {
			if !grouped[i] && phases[i] == models.PhaseNone && members[nodes[i]] {
				grouped[i] = true
				island = append(island, i)
				watts += lights[i].PowerW
			}
		}
		target := loads.lightest()
		for _, i := range island {
			phases[i] = target
		}
		loads.add(target, watts)
	}

	// Lights at the root, or whose chain walk aborted.
	for i := range lights {
		if phases[i] != models.PhaseNone || !tree.Reachable(nodes[i]) {
			continue
		}
		target := loads.lightest()
		phases[i] = target
		loads.add(target, lights[i].PowerW)
	}
	return phases
}
