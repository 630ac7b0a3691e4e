package handlers

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

// WiringLayer renders panels, lights and wire segments as one feature
// collection. Hidden panels and phases are left out; mixed segments are
// only hidden with their panel.
func WiringLayer(doc models.Project) *geojson.FeatureCollection {
	hiddenPanel := make(map[int]bool, len(doc.HiddenPanels))
	for _, id := range doc.HiddenPanels {
		hiddenPanel[id] = true
	}
	hiddenPhase := make(map[models.Phase]bool, len(doc.HiddenPhases))
	for _, p := range doc.HiddenPhases {
		hiddenPhase[p] = true
	}

	fc := geojson.NewFeatureCollection()

	for _, panel := range doc.Panels {
		if hiddenPanel[panel.ID] {
			continue
		}
		f := geojson.NewFeature(geometry.ToPoint(panel.Position))
		f.Properties["kind"] = "panel"
		f.Properties["panelId"] = panel.ID
		fc.Append(f)
	}

	for _, seg := range doc.WireSegments {
		if hiddenPanel[seg.PanelID] || (seg.Phase != models.SegmentMixed && hiddenPhase[models.Phase(seg.Phase)]) {
			continue
		}
		line := make(orb.LineString, len(seg.Path))
		for i, c := range seg.Path {
			line[i] = geometry.ToPoint(c)
		}
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "wire"
		f.Properties["panelId"] = seg.PanelID
		f.Properties["phase"] = seg.Phase
		fc.Append(f)
	}

	for _, l := range doc.Lights {
		if l.PanelID != nil && hiddenPanel[*l.PanelID] {
			continue
		}
		if hiddenPhase[l.Phase] {
			continue
		}
		f := geojson.NewFeature(geometry.ToPoint(l.Position))
		f.Properties["kind"] = "light"
		f.Properties["id"] = l.ID
		f.Properties["powerW"] = l.PowerW
		f.Properties["poleType"] = string(l.PoleType)
		if l.Phase.Valid() {
			f.Properties["phase"] = int(l.Phase)
		}
		if l.PanelID != nil {
			f.Properties["panelId"] = *l.PanelID
		}
		fc.Append(f)
	}
	return fc
}
