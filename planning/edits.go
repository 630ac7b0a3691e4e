package planning

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

// LightPatch lists the light fields to change. Nil fields are left alone.
type LightPatch struct {
	PowerW   *float64
	PoleType *models.PoleType
	Phase    *models.Phase
}

func (lp LightPatch) apply(l models.Light) models.Light {
	if lp.PowerW != nil {
		l.PowerW = *lp.PowerW
	}
	if lp.PoleType != nil {
		l.PoleType = *lp.PoleType
	}
	if lp.Phase != nil {
		l.Phase = *lp.Phase
	}
	return l
}

// MovePanel moves a panel and replans every panel from the new positions.
func MovePanel(ctx context.Context, p Plan, panelID int, pos models.Coordinate) (Plan, error) {
	idx := panelIndex(p.Panels, panelID)
	if idx < 0 {
		return Plan{}, fmt.Errorf("%w: %d", ErrUnknownPanel, panelID)
	}
	out := p.Clone()
	out.Panels[idx].Position = pos
	return Replan(ctx, out)
}

// UpdateLight changes one light and recomputes its panel, keeping phases.
func UpdateLight(ctx context.Context, p Plan, id string, patch LightPatch) (Plan, error) {
	if _, ok := p.Light(id); !ok {
		return Plan{}, fmt.Errorf("%w: %s", ErrUnknownLight, id)
	}
	return BulkUpdate(ctx, p, []string{id}, patch)
}

// BulkUpdate applies patch to every listed light that exists and recomputes
// the panels involved, keeping phases.
func BulkUpdate(ctx context.Context, p Plan, ids []string, patch LightPatch) (Plan, error) {
	selected := make(map[string]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}
	out := p.Clone()
	var affected []int
	seen := make(map[int]bool)
	for i, l := range out.Lights {
		if !selected[l.ID] {
			continue
		}
		out.Lights[i] = patch.apply(l)
		if l.PanelID != nil && !seen[*l.PanelID] {
			seen[*l.PanelID] = true
			affected = append(affected, *l.PanelID)
		}
	}
	return settle(ctx, out, affected, false)
}

// DeleteLights removes lights. A panel left without lights is removed with
// its wiring; the remaining affected panels are recomputed keeping phases.
func DeleteLights(ctx context.Context, p Plan, ids []string) (Plan, error) {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	out := p.Clone()
	out.Lights = out.Lights[:0:0]
	var affected []int
	seen := make(map[int]bool)
	for _, l := range p.Lights {
		if !doomed[l.ID] {
			out.Lights = append(out.Lights, l)
			continue
		}
		if l.PanelID != nil && !seen[*l.PanelID] {
			seen[*l.PanelID] = true
			affected = append(affected, *l.PanelID)
		}
	}

	if len(out.Lights) == 0 {
		return Plan{Roads: p.Roads}, nil
	}

	panels := out.Panels[:0:0]
	var remaining []int
	for _, panel := range out.Panels {
		if seen[panel.ID] && len(out.PanelLights(panel.ID)) == 0 {
			continue
		}
		panels = append(panels, panel)
		if seen[panel.ID] {
			remaining = append(remaining, panel.ID)
		}
	}
	out.Panels = panels

	return settle(ctx, out, remaining, false)
}

// AddLight inserts a light by hand into an existing panel with the given
// phase. Its road is the one owning the nearest road vertex.
func AddLight(ctx context.Context, p Plan, pos models.Coordinate, powerW float64, pole models.PoleType, phase models.Phase, panelID int) (Plan, models.Light, error) {
	if panelIndex(p.Panels, panelID) < 0 {
		return Plan{}, models.Light{}, fmt.Errorf("%w: %d", ErrUnknownPanel, panelID)
	}
	light := models.Light{
		ID:       "manual-" + uuid.NewString(),
		RoadID:   nearestRoadID(p.Roads, pos),
		Position: pos,
		PowerW:   powerW,
		PoleType: pole,
		Phase:    phase,
	}.WithPanel(panelID)

	out := p.Clone()
	out.Lights = append(out.Lights, light)
	out, err := settle(ctx, out, []int{panelID}, false)
	if err != nil {
		return Plan{}, models.Light{}, err
	}
	return out, light, nil
}

func nearestRoadID(roads []models.Road, pos models.Coordinate) string {
	roadID := models.ManualRoadID
	minDistance := math.Inf(1)
	for _, v := range routing.RoadVertices(roads) {
		if d := geometry.Distance(pos, v.Position); d < minDistance {
			minDistance = d
			roadID = v.RoadID
		}
	}
	return roadID
}

// AddLink joins two lights of the same panel and phase with a manual wire
// and recomputes that panel, keeping phases.
func AddLink(ctx context.Context, p Plan, startID, endID string) (Plan, models.ManualLink, error) {
	if err := ValidateLink(p, startID, endID); err != nil {
		return Plan{}, models.ManualLink{}, err
	}
	start, _ := p.Light(startID)
	link := models.ManualLink{
		ID:           LinkID(startID, endID),
		StartLightID: startID,
		EndLightID:   endID,
	}
	out := p.Clone()
	out.Links = append(out.Links, link)
	out, err := settle(ctx, out, []int{*start.PanelID}, false)
	if err != nil {
		return Plan{}, models.ManualLink{}, err
	}
	return out, link, nil
}
