package planning

import (
	"context"
	"log"

	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

// PanelResult is the output of one planning pass for one panel.
type PanelResult struct {
	Lights    []models.Light
	Segments  []models.WireSegment
	PhaseInfo map[models.Phase]models.PhaseRoute
}

// PlanPanel runs graph build, routing, optional phase balancing and
// topology extraction for the lights of one panel. It depends only on its
// arguments. When reassign is false each light keeps its current phase.
func PlanPanel(roads []models.Road, panel models.Panel, lights []models.Light, links []models.ManualLink, reassign bool) PanelResult {
	result := PanelResult{
		Lights:    append([]models.Light(nil), lights...),
		PhaseInfo: make(map[models.Phase]models.PhaseRoute),
	}
	if len(lights) == 0 {
		return result
	}

	byID := make(map[string]models.Light, len(lights))
	for _, l := range lights {
		byID[l.ID] = l
	}
	var connections []routing.Connection
	for _, link := range links {
		a, okA := byID[link.StartLightID]
		b, okB := byID[link.EndLightID]
		if okA && okB {
			connections = append(connections, routing.Connection{From: a.Position, To: b.Position})
		}
	}

	g := routing.Build(roads, connections)
	if g.NodeCount() == 0 {
		if reassign {
			for i := range result.Lights {
				result.Lights[i].Phase = models.PhaseNone
			}
		}
		log.Printf("[PLANNER] panel %d: empty graph, %d lights left unrouted", panel.ID, len(lights))
		return result
	}

	root, _ := routing.NearestNode(g, panel.Position)
	tree := routing.Dijkstra(g, root)

	nodes := make([]int, len(lights))
	for i, l := range lights {
		nodes[i], _ = routing.NearestNode(g, l.Position)
	}

	if reassign {
		phases := BalancePhases(g, tree, result.Lights, nodes)
		for i := range result.Lights {
			result.Lights[i].Phase = phases[i]
		}
	}

	topo := ExtractTopology(g, tree, result.Lights, nodes, panel.ID)
	result.Segments = append(topo.Segments, linkSegments(result.Lights, links, panel.ID)...)
	result.PhaseInfo = topo.PhaseInfo

	log.Printf("[PLANNER] panel %d: %d nodes, %d edges, %d lights, %d segments",
		panel.ID, g.NodeCount(), len(g.Edges), len(lights), len(result.Segments))
	return result
}

// recompute reruns the panel pass for the given panels and rebuilds the
// segment list. Segments of panels that no longer exist are dropped.
func recompute(ctx context.Context, p Plan, panelIDs []int, reassign bool) (Plan, error) {
	out := p.Clone()
	lightIndex := make(map[string]int, len(out.Lights))
	for i, l := range out.Lights {
		lightIndex[l.ID] = i
	}

	fresh := make(map[int][]models.WireSegment)
	for _, id := range panelIDs {
		if err := ctx.Err(); err != nil {
			return Plan{}, err
		}
		idx := panelIndex(out.Panels, id)
		if idx < 0 {
			continue
		}
		res := PlanPanel(out.Roads, out.Panels[idx], out.PanelLights(id), out.Links, reassign)
		for _, l := range res.Lights {
			out.Lights[lightIndex[l.ID]] = l
		}
		out.Panels[idx].PhaseInfo = res.PhaseInfo
		fresh[id] = res.Segments
	}

	var segments []models.WireSegment
	for _, panel := range out.Panels {
		if s, ok := fresh[panel.ID]; ok {
			segments = append(segments, s...)
			continue
		}
		for _, s := range out.Segments {
			if s.PanelID == panel.ID {
				segments = append(segments, s)
			}
		}
	}
	out.Segments = segments
	return out, nil
}

// settle finishes an edit: drop invalid links, recompute the affected
// panels, then recompute again any panel whose links became invalid.
func settle(ctx context.Context, p Plan, panelIDs []int, reassign bool) (Plan, error) {
	p.Links = PruneLinks(p.Lights, p.Links)
	out, err := recompute(ctx, p, panelIDs, reassign)
	if err != nil {
		return Plan{}, err
	}

	valid := PruneLinks(out.Lights, out.Links)
	if len(valid) == len(out.Links) {
		return out, nil
	}
	stale := stalePanels(out, valid)
	out.Links = valid
	return recompute(ctx, out, stale, false)
}

func stalePanels(p Plan, valid []models.ManualLink) []int {
	kept := make(map[string]bool, len(valid))
	for _, l := range valid {
		kept[l.ID] = true
	}
	seen := make(map[int]bool)
	var ids []int
	for _, link := range p.Links {
		if kept[link.ID] {
			continue
		}
		for _, lightID := range []string{link.StartLightID, link.EndLightID} {
			l, ok := p.Light(lightID)
			if !ok || l.PanelID == nil || seen[*l.PanelID] {
				continue
			}
			seen[*l.PanelID] = true
			ids = append(ids, *l.PanelID)
		}
	}
	return ids
}

func panelIndex(panels []models.Panel, id int) int {
	for i, p := range panels {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func panelIDs(panels []models.Panel) []int {
	ids := make([]int, len(panels))
	for i, p := range panels {
		ids[i] = p.ID
	}
	return ids
}
