package planning

import (
	"fmt"

	"lighting-plan-server/models"
)

// LinkID is the identifier given to a manual link between two lights.
func LinkID(startID, endID string) string {
	return fmt.Sprintf("manual-%s-%s", startID, endID)
}

func compatible(a, b models.Light) bool {
	return a.PanelID != nil && b.PanelID != nil && *a.PanelID == *b.PanelID && a.Phase == b.Phase
}

// ValidateLink checks that a new link between startID and endID may be added.
func ValidateLink(p Plan, startID, endID string) error {
	if startID == endID {
		return ErrSelfLink
	}
	a, ok := p.Light(startID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, startID)
	}
	b, ok := p.Light(endID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLight, endID)
	}
	if !compatible(a, b) {
		return ErrLinkMismatch
	}
	for _, link := range p.Links {
		if (link.StartLightID == startID && link.EndLightID == endID) ||
			(link.StartLightID == endID && link.EndLightID == startID) {
			return ErrDuplicateLink
		}
	}
	return nil
}

// PruneLinks keeps the links whose lights both exist and share panel and phase.
func PruneLinks(lights []models.Light, links []models.ManualLink) []models.ManualLink {
	byID := make(map[string]models.Light, len(lights))
	for _, l := range lights {
		byID[l.ID] = l
	}
	valid := make([]models.ManualLink, 0, len(links))
	for _, link := range links {
		a, okA := byID[link.StartLightID]
		b, okB := byID[link.EndLightID]
		if okA && okB && compatible(a, b) {
			valid = append(valid, link)
		}
	}
	return valid
}

// linkSegments draws each valid link of the panel as a straight wire tagged
// with the shared phase.
func linkSegments(lights []models.Light, links []models.ManualLink, panelID int) []models.WireSegment {
	byID := make(map[string]models.Light, len(lights))
	for _, l := range lights {
		byID[l.ID] = l
	}
	var segments []models.WireSegment
	for _, link := range links {
		a, okA := byID[link.StartLightID]
		b, okB := byID[link.EndLightID]
		if !okA || !okB || !compatible(a, b) || !a.Phase.Valid() {
			continue
		}
		segments = append(segments, models.WireSegment{
			Path:    []models.Coordinate{a.Position, b.Position},
			Phase:   models.SegmentPhase(a.Phase),
			PanelID: panelID,
		})
	}
	return segments
}
