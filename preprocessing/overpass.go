package preprocessing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

const defaultRoadName = "Unnamed street"

// HighwayClasses are the OSM highway values that can carry street lighting.
var HighwayClasses = []string{
	"primary", "secondary", "tertiary", "residential", "unclassified",
	"living_street", "service", "pedestrian", "track", "road", "path",
}

type overpassResponse struct {
	Elements []overpassElement `json:"elements"`
}

type overpassElement struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Tags     map[string]string `json:"tags"`
	Geometry []overpassPoint   `json:"geometry"`
}

type overpassPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// OverpassQuery builds an `out geom` query for lightable ways inside boundary.
func OverpassQuery(boundary []models.Coordinate) string {
	points := make([]string, len(boundary))
	for i, c := range boundary {
		points[i] = fmt.Sprintf("%f %f", c.Lat, c.Lng)
	}
	return fmt.Sprintf(`[out:json][timeout:25];
( way["highway"~"%s"](poly:"%s"); );
out geom;`, strings.Join(HighwayClasses, "|"), strings.Join(points, " "))
}

// ParseOverpass turns an Overpass JSON document into roads clipped to the
// boundary. A way that leaves the area is split into one road per run of at
// least two points inside it.
func ParseOverpass(r io.Reader, boundary []models.Coordinate) ([]models.Road, error) {
	var resp overpassResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	var roads []models.Road
	counter := 0
	flush := func(way overpassElement, path []models.Coordinate) {
		if len(path) < 2 {
			return
		}
		name := way.Tags["name"]
		if name == "" {
			name = defaultRoadName
		}
		roads = append(roads, models.Road{
			ID:   fmt.Sprintf("street-%d-%d", way.ID, counter),
			Name: name,
			Path: path,
		})
		counter++
	}

	for _, el := range resp.Elements {
		if el.Type != "way" || len(el.Geometry) < 2 {
			continue
		}
		var current []models.Coordinate
		for _, p := range el.Geometry {
			c := models.Coordinate{Lat: p.Lat, Lng: p.Lon}
			if geometry.InArea(boundary, c) {
				current = append(current, c)
				continue
			}
			flush(el, current)
			current = nil
		}
		flush(el, current)
	}
	return roads, nil
}
