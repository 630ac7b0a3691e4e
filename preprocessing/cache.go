package preprocessing

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

// SaveRoadsCache writes roads as gob so later runs skip the Overpass parse.
func SaveRoadsCache(path string, roads []models.Road) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to ensure cache dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(roads); err != nil {
		return fmt.Errorf("failed to encode roads: %w", err)
	}
	return nil
}

func LoadRoadsCache(path string) ([]models.Road, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var roads []models.Road
	if err := gob.NewDecoder(f).Decode(&roads); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return roads, nil
}

// LoadRoads reads a gob cache or a JSON array of roads, chosen by extension.
func LoadRoads(path string) ([]models.Road, error) {
	if strings.EqualFold(filepath.Ext(path), ".gob") {
		return LoadRoadsCache(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var roads []models.Road
	if err := json.Unmarshal(data, &roads); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return roads, nil
}

// LoadBoundary reads the planning area from a JSON array of coordinates or
// from GeoJSON (a Polygon geometry, a Feature or the first Feature of a
// FeatureCollection).
func LoadBoundary(path string) ([]models.Coordinate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBoundary(data)
}

func ParseBoundary(data []byte) ([]models.Coordinate, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var coords []models.Coordinate
		if err := json.Unmarshal(data, &coords); err != nil {
			return nil, fmt.Errorf("failed to parse boundary: %w", err)
		}
		return coords, nil
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse boundary: %w", err)
	}

	var g orb.Geometry
	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, err
		}
		if len(fc.Features) == 0 {
			return nil, fmt.Errorf("boundary feature collection is empty")
		}
		g = fc.Features[0].Geometry
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, err
		}
		g = f.Geometry
	default:
		geom, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, err
		}
		g = geom.Geometry()
	}

	poly, ok := g.(orb.Polygon)
	if !ok || len(poly) == 0 {
		return nil, fmt.Errorf("boundary must be a polygon, got %T", g)
	}
	ring := poly[0]
	if len(ring) > 1 && ring.Closed() {
		ring = ring[:len(ring)-1]
	}
	coords := make([]models.Coordinate, len(ring))
	for i, p := range ring {
		coords[i] = geometry.FromPoint(p)
	}
	return coords, nil
}
