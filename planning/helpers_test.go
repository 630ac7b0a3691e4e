package planning

import (
	"math"

	"lighting-plan-server/models"
)

// Meters per degree along the equator for a 6378137 m sphere.
var metersPerDegree = 6378137 * math.Pi / 180

func coord(lat, lng float64) models.Coordinate {
	return models.Coordinate{Lat: lat, Lng: lng}
}

// east returns the equator point m meters east of the origin.
func east(m float64) models.Coordinate {
	return coord(0, m/metersPerDegree)
}

func road(id string, points ...models.Coordinate) models.Road {
	return models.Road{ID: id, Name: id, Path: points}
}

func light(id string, pos models.Coordinate, watts float64) models.Light {
	return models.Light{ID: id, RoadID: "r", Position: pos, PowerW: watts, PoleType: models.PoleConcrete7m}
}

func phaseOf(p Plan, id string) models.Phase {
	l, _ := p.Light(id)
	return l.Phase
}
