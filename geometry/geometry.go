package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"

	"lighting-plan-server/models"
)

const (
	// EdgeToleranceDeg is how far outside a boundary ring a point may sit
	// and still count as inside, in degrees.
	EdgeToleranceDeg = 0.0002
	keyPrecision     = 6
)

func ToPoint(c models.Coordinate) orb.Point {
	return orb.Point{c.Lng, c.Lat}
}

func FromPoint(p orb.Point) models.Coordinate {
	return models.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
}

// Distance is the great-circle distance in meters.
func Distance(a, b models.Coordinate) float64 {
	return geo.DistanceHaversine(ToPoint(a), ToPoint(b))
}

func PathLength(path []models.Coordinate) float64 {
	if len(path) < 2 {
		return 0
	}
	ls := make(orb.LineString, len(path))
	for i, c := range path {
		ls[i] = ToPoint(c)
	}
	return geo.LengthHaversine(ls)
}

// Interpolate returns the point at fraction f along the great circle from a to b.
func Interpolate(a, b models.Coordinate, f float64) models.Coordinate {
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Lat, a.Lng))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Lat, b.Lng))
	ll := s2.LatLngFromPoint(s2.Interpolate(f, pa, pb))
	return models.Coordinate{Lat: ll.Lat.Degrees(), Lng: ll.Lng.Degrees()}
}

// Key quantizes a coordinate to 6 decimals (about 11 cm). Two coordinates
// with the same key are the same graph node.
func Key(c models.Coordinate) string {
	return fmt.Sprintf("%.*f,%.*f", keyPrecision, c.Lat, keyPrecision, c.Lng)
}

func Round(c models.Coordinate) models.Coordinate {
	scale := math.Pow(10, keyPrecision)
	return models.Coordinate{
		Lat: math.Round(c.Lat*scale) / scale,
		Lng: math.Round(c.Lng*scale) / scale,
	}
}

func toPolygon(boundary []models.Coordinate) orb.Polygon {
	ring := make(orb.Ring, 0, len(boundary)+1)
	for _, c := range boundary {
		ring = append(ring, ToPoint(c))
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return orb.Polygon{ring}
}

func Contains(boundary []models.Coordinate, c models.Coordinate) bool {
	if len(boundary) < 3 {
		return false
	}
	return planar.PolygonContains(toPolygon(boundary), ToPoint(c))
}

// OnEdge reports whether c lies within tolDeg degrees of the boundary ring.
func OnEdge(boundary []models.Coordinate, c models.Coordinate, tolDeg float64) bool {
	if len(boundary) < 2 {
		return false
	}
	ring := toPolygon(boundary)[0]
	p := ToPoint(c)
	for i := 0; i+1 < len(ring); i++ {
		if planar.DistanceFromSegment(ring[i], ring[i+1], p) <= tolDeg {
			return true
		}
	}
	return false
}

// InArea is the road-clipping predicate: inside the boundary or within the
// edge tolerance of it.
func InArea(boundary []models.Coordinate, c models.Coordinate) bool {
	return Contains(boundary, c) || OnEdge(boundary, c, EdgeToleranceDeg)
}

// Centroid is the arithmetic mean of the coordinates.
func Centroid(points []models.Coordinate) models.Coordinate {
	if len(points) == 0 {
		return models.Coordinate{}
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return models.Coordinate{Lat: lat / n, Lng: lng / n}
}
