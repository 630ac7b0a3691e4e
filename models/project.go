package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

const ProjectVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported project version")

type CalculationParams struct {
	CableType   string  `json:"cableType" yaml:"cable_type"`
	Voltage     float64 `json:"voltage" yaml:"voltage"`
	PowerFactor float64 `json:"powerFactor" yaml:"power_factor"`
}

// Project is the saved form of a lighting plan. It holds everything needed
// to rebuild the planning graph without any other state.
type Project struct {
	Version           int               `json:"version"`
	Boundary          []Coordinate      `json:"boundary"`
	Roads             []Road            `json:"roads"`
	Lights            []Light           `json:"lights"`
	Panels            []Panel           `json:"panels"`
	SpacingM          float64           `json:"spacingM"`
	LightPowerW       float64           `json:"lightPowerW"`
	ManualLinks       []ManualLink      `json:"manualLinks"`
	WireSegments      []WireSegment     `json:"wireSegments"`
	CalculationParams CalculationParams `json:"calculationParams"`
	HiddenPanels      []int             `json:"hiddenPanels"`
	HiddenPhases      []Phase           `json:"hiddenPhases"`
}

func EncodeProject(p Project) ([]byte, error) {
	p.Version = ProjectVersion
	return json.MarshalIndent(p, "", "  ")
}

func DecodeProject(data []byte) (Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, fmt.Errorf("decode project: %w", err)
	}
	if p.Version != ProjectVersion {
		return Project{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}
	return p, nil
}
