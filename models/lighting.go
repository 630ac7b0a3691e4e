package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type PoleType string

const (
	PoleConcrete7m           PoleType = "concrete_7m"
	PoleConcrete7mReinforced PoleType = "concrete_7m_reinforced"
	PoleConcrete9m           PoleType = "concrete_9m"
	PoleConcrete12m          PoleType = "concrete_12m"
	PoleMetal4m              PoleType = "metal_4_2m"
	PoleMetal6m              PoleType = "metal_6m"
	PoleMetal9m              PoleType = "metal_9m"
)

var PoleTypes = []PoleType{
	PoleConcrete7m,
	PoleConcrete7mReinforced,
	PoleConcrete9m,
	PoleConcrete12m,
	PoleMetal4m,
	PoleMetal6m,
	PoleMetal9m,
}

func (p PoleType) Label() string {
	switch p {
	case PoleConcrete7m:
		return "Concrete 7m standard (90 kg)"
	case PoleConcrete7mReinforced:
		return "Concrete 7m reinforced (300 kg)"
	case PoleConcrete9m:
		return "Concrete 9m"
	case PoleConcrete12m:
		return "Concrete 12m"
	case PoleMetal4m:
		return "Metal 4.2m"
	case PoleMetal6m:
		return "Metal 6m"
	case PoleMetal9m:
		return "Metal 9m"
	default:
		return string(p)
	}
}

// Phase is one of the three supply conductors. PhaseNone means unassigned
// and is encoded as JSON null.
type Phase int

const (
	PhaseNone Phase = 0
	Phase1    Phase = 1
	Phase2    Phase = 2
	Phase3    Phase = 3
)

var Phases = []Phase{Phase1, Phase2, Phase3}

func (p Phase) Valid() bool {
	return p >= Phase1 && p <= Phase3
}

func (p Phase) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%d", int(p))), nil
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = PhaseNone
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("phase: %w", err)
	}
	if n < 0 || n > 3 {
		return fmt.Errorf("phase: %d out of range", n)
	}
	*p = Phase(n)
	return nil
}

type Light struct {
	ID       string     `json:"id"`
	RoadID   string     `json:"roadId"`
	Position Coordinate `json:"position"`
	PowerW   float64    `json:"powerW"`
	PoleType PoleType   `json:"poleType"`
	Phase    Phase      `json:"phase"`
	PanelID  *int       `json:"panelId,omitempty"`
}

// InPanel reports whether the light is owned by the given panel.
func (l Light) InPanel(panelID int) bool {
	return l.PanelID != nil && *l.PanelID == panelID
}

func (l Light) WithPanel(panelID int) Light {
	id := panelID
	l.PanelID = &id
	return l
}
