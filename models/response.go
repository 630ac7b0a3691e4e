package models

import "time"

type ProjectInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	LightCount int       `json:"lightCount"`
	PanelCount int       `json:"panelCount"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ProjectResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Generation        uint64  `json:"generation"`
	RecommendedPanels int     `json:"recommendedPanels"`
	Project           Project `json:"project"`
}

type PhaseLoad struct {
	Count  int     `json:"count"`
	PowerW float64 `json:"powerW"`
}

type PanelSummary struct {
	PanelID    int                 `json:"panelId"`
	LightCount int                 `json:"lightCount"`
	TotalW     float64             `json:"totalW"`
	Phases     map[Phase]PhaseLoad `json:"phases"`
	Unassigned int                 `json:"unassigned"`
}

type PlanSummary struct {
	LightCount int            `json:"lightCount"`
	PanelCount int            `json:"panelCount"`
	TotalW     float64        `json:"totalW"`
	Panels     []PanelSummary `json:"panels"`
}

type VoltageDropResponse struct {
	CalculationParams CalculationParams         `json:"calculationParams"`
	Panels            map[int]map[Phase]float64 `json:"panels"`
}
