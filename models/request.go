package models

// CreateProjectRequest takes either roads or a boundary to fetch them for.
type CreateProjectRequest struct {
	Name        string       `json:"name"`
	Boundary    []Coordinate `json:"boundary"`
	Roads       []Road       `json:"roads"`
	SpacingM    float64      `json:"spacingM,omitempty"`
	LightPowerW float64      `json:"lightPowerW,omitempty"`
}

type SetupRequest struct {
	// Panels is the number of panels to place. Zero uses the recommendation.
	Panels int `json:"panels"`
}

type MovePanelRequest struct {
	Position Coordinate `json:"position" binding:"required"`
}

type AddLightRequest struct {
	Position Coordinate `json:"position" binding:"required"`
	PowerW   float64    `json:"powerW" binding:"required,gt=0"`
	PoleType string     `json:"poleType"`
	Phase    Phase      `json:"phase"`
	PanelID  int        `json:"panelId" binding:"required"`
}

type UpdateLightRequest struct {
	PowerW   float64 `json:"powerW" binding:"required,gt=0"`
	PoleType string  `json:"poleType"`
	Phase    Phase   `json:"phase"`
}

type DeleteLightsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// BulkUpdateRequest changes only the fields that are set.
type BulkUpdateRequest struct {
	IDs      []string `json:"ids" binding:"required"`
	PowerW   *float64 `json:"powerW,omitempty"`
	PoleType *string  `json:"poleType,omitempty"`
	Phase    *Phase   `json:"phase,omitempty"`
}

type AddLinkRequest struct {
	StartLightID string `json:"startLightId" binding:"required"`
	EndLightID   string `json:"endLightId" binding:"required"`
}

// VisibilityRequest replaces the hidden panel and phase filters.
type VisibilityRequest struct {
	HiddenPanels []int   `json:"hiddenPanels"`
	HiddenPhases []Phase `json:"hiddenPhases"`
}
