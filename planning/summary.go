package planning

import "lighting-plan-server/models"

// Summarize totals lights and watts per panel and per phase.
func Summarize(p Plan) models.PlanSummary {
	summary := models.PlanSummary{
		LightCount: len(p.Lights),
		PanelCount: len(p.Panels),
		Panels:     make([]models.PanelSummary, 0, len(p.Panels)),
	}

	for _, panel := range p.Panels {
		ps := models.PanelSummary{
			PanelID: panel.ID,
			Phases:  make(map[models.Phase]models.PhaseLoad, len(models.Phases)),
		}
		for _, phase := range models.Phases {
			ps.Phases[phase] = models.PhaseLoad{}
		}
		for _, l := range p.PanelLights(panel.ID) {
			ps.LightCount++
			ps.TotalW += l.PowerW
			if !l.Phase.Valid() {
				ps.Unassigned++
				continue
			}
			load := ps.Phases[l.Phase]
			load.Count++
			load.PowerW += l.PowerW
			ps.Phases[l.Phase] = load
		}
		summary.Panels = append(summary.Panels, ps)
	}

	for _, l := range p.Lights {
		summary.TotalW += l.PowerW
	}
	return summary
}
