package models

import (
	"encoding/json"
	"fmt"
)

// PhaseRoute is the worst-case electrical run of one phase: the farthest
// light reached from the panel and the path to it, panel first.
type PhaseRoute struct {
	Distance float64      `json:"distance"`
	Path     []Coordinate `json:"path"`
}

type Panel struct {
	ID        int                  `json:"id"`
	Position  Coordinate           `json:"position"`
	PhaseInfo map[Phase]PhaseRoute `json:"phaseInfo"`
}

type ManualLink struct {
	ID           string `json:"id"`
	StartLightID string `json:"startLightId"`
	EndLightID   string `json:"endLightId"`
}

// SegmentPhase tags a wire segment with the phase it carries.
// SegmentMixed marks a segment shared by several phases.
type SegmentPhase int

const SegmentMixed SegmentPhase = -1

func (s SegmentPhase) MarshalJSON() ([]byte, error) {
	if s == SegmentMixed {
		return []byte(`"mixed"`), nil
	}
	return json.Marshal(int(s))
}

func (s *SegmentPhase) UnmarshalJSON(data []byte) error {
	if string(data) == `"mixed"` {
		*s = SegmentMixed
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("segment phase: %w", err)
	}
	*s = SegmentPhase(n)
	return nil
}

func (s SegmentPhase) String() string {
	if s == SegmentMixed {
		return "mixed"
	}
	return fmt.Sprintf("%d", int(s))
}

type WireSegment struct {
	Path    []Coordinate `json:"path"`
	Phase   SegmentPhase `json:"phase"`
	PanelID int          `json:"panelId"`
}
