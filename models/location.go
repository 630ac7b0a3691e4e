package models

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Road is a street centerline fetched for the planning area.
type Road struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	Path []Coordinate `json:"path"`
}

// ManualRoadID marks lights that were placed by hand away from any road.
const ManualRoadID = "manual"
