package planning

import (
	"errors"

	"lighting-plan-server/models"
)

var (
	ErrSelfLink      = errors.New("a light cannot be linked to itself")
	ErrLinkMismatch  = errors.New("linked lights must share panel and phase")
	ErrDuplicateLink = errors.New("link already exists")
	ErrUnknownLight  = errors.New("unknown light")
	ErrUnknownPanel  = errors.New("unknown panel")
)

// Plan is an immutable snapshot of a lighting plan. Operations in this
// package never modify a Plan in place; they return a new one.
type Plan struct {
	Roads    []models.Road
	Lights   []models.Light
	Panels   []models.Panel
	Links    []models.ManualLink
	Segments []models.WireSegment
}

// Clone copies the slices so that the result can be edited freely.
// Roads are shared; they are never modified after a plan is created.
func (p Plan) Clone() Plan {
	out := Plan{Roads: p.Roads}
	out.Lights = append([]models.Light(nil), p.Lights...)
	out.Panels = make([]models.Panel, len(p.Panels))
	for i, panel := range p.Panels {
		out.Panels[i] = clonePanel(panel)
	}
	out.Links = append([]models.ManualLink(nil), p.Links...)
	out.Segments = append([]models.WireSegment(nil), p.Segments...)
	return out
}

func clonePanel(p models.Panel) models.Panel {
	info := make(map[models.Phase]models.PhaseRoute, len(p.PhaseInfo))
	for phase, route := range p.PhaseInfo {
		info[phase] = route
	}
	p.PhaseInfo = info
	return p
}

func (p Plan) Light(id string) (models.Light, bool) {
	for _, l := range p.Lights {
		if l.ID == id {
			return l, true
		}
	}
	return models.Light{}, false
}

func (p Plan) Panel(id int) (models.Panel, bool) {
	for _, panel := range p.Panels {
		if panel.ID == id {
			return panel, true
		}
	}
	return models.Panel{}, false
}

func (p Plan) PanelLights(panelID int) []models.Light {
	var lights []models.Light
	for _, l := range p.Lights {
		if l.InPanel(panelID) {
			lights = append(lights, l)
		}
	}
	return lights
}

// FromProject rebuilds a plan from a saved document as-is, without replanning.
func FromProject(doc models.Project) Plan {
	return Plan{
		Roads:    doc.Roads,
		Lights:   doc.Lights,
		Panels:   doc.Panels,
		Links:    doc.ManualLinks,
		Segments: doc.WireSegments,
	}
}

// ApplyTo copies the plan into doc, leaving the other document fields alone.
func (p Plan) ApplyTo(doc models.Project) models.Project {
	doc.Roads = p.Roads
	doc.Lights = p.Lights
	doc.Panels = p.Panels
	doc.ManualLinks = p.Links
	doc.WireSegments = p.Segments
	return doc
}
