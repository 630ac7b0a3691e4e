package planning

import (
	"context"
	"log"
	"math"
	"time"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

// Limits bound how much a single panel should serve.
type Limits struct {
	MaxLightsPerPanel int
	MaxPowerPerPanelW float64
}

var DefaultLimits = Limits{MaxLightsPerPanel: 100, MaxPowerPerPanelW: 15000}

// RecommendPanelCount returns the smallest panel count that respects both
// the light count and the power limit, and at least one.
func RecommendPanelCount(lights []models.Light, limits Limits) int {
	if limits.MaxLightsPerPanel <= 0 || limits.MaxPowerPerPanelW <= 0 {
		limits = DefaultLimits
	}
	var total float64
	for _, l := range lights {
		total += l.PowerW
	}
	byCount := int(math.Ceil(float64(len(lights)) / float64(limits.MaxLightsPerPanel)))
	byPower := int(math.Ceil(total / limits.MaxPowerPerPanelW))
	return max(1, byCount, byPower)
}

// SetupPlan clusters lights into k panels, anchors each panel at a nearby
// intersection and runs a full planning pass with phase assignment.
func SetupPlan(ctx context.Context, roads []models.Road, lights []models.Light, k int, links []models.ManualLink) (Plan, error) {
	plan := Plan{Roads: roads}
	if len(lights) == 0 {
		return plan, nil
	}
	if k < 1 {
		k = 1
	}
	if k > len(lights) {
		k = len(lights)
	}

	start := time.Now()
	log.Printf("=== Setting up plan: %d lights, %d panels, %d roads ===", len(lights), k, len(roads))

	assignments := make([]int, len(lights))
	if k > 1 {
		positions := make([]models.Coordinate, len(lights))
		for i, l := range lights {
			positions[i] = l.Position
		}
		assignments = KMeans(positions, k)
	}

	degrees := routing.VertexDegrees(roads)
	vertices := routing.RoadVertices(roads)

	plan.Lights = make([]models.Light, len(lights))
	for cluster := 0; cluster < k; cluster++ {
		var members []models.Coordinate
		for i, a := range assignments {
			if a == cluster {
				members = append(members, lights[i].Position)
			}
		}
		if len(members) == 0 {
			continue
		}
		center := geometry.Centroid(members)
		anchor, ok := FindAnchor(vertices, degrees, center)
		if !ok {
			anchor = center
		}
		panelID := cluster + 1
		plan.Panels = append(plan.Panels, models.Panel{ID: panelID, Position: anchor})
		for i, a := range assignments {
			if a == cluster {
				plan.Lights[i] = lights[i].WithPanel(panelID)
			}
		}
	}
	plan.Links = links

	out, err := settle(ctx, plan, panelIDs(plan.Panels), true)
	if err != nil {
		return Plan{}, err
	}
	log.Printf("=== Plan ready: %d panels, %d segments in %v ===", len(out.Panels), len(out.Segments), time.Since(start))
	return out, nil
}

// Replan reassigns every light to its nearest panel and recomputes every
// panel with phase reassignment. Panels keep their positions.
func Replan(ctx context.Context, p Plan) (Plan, error) {
	if len(p.Panels) == 0 {
		return p.Clone(), nil
	}
	out := p.Clone()
	for i, l := range out.Lights {
		nearest := out.Panels[0].ID
		minDistance := math.Inf(1)
		for _, panel := range out.Panels {
			if d := geometry.Distance(l.Position, panel.Position); d < minDistance {
				minDistance = d
				nearest = panel.ID
			}
		}
		out.Lights[i] = l.WithPanel(nearest)
	}
	return settle(ctx, out, panelIDs(out.Panels), true)
}
