package routing

import (
	"math"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

// NearestNode scans all nodes for the one closest to c. Ties go to the
// lowest index. Returns -1 on an empty graph.
func NearestNode(g *Graph, c models.Coordinate) (int, float64) {
	nearest := -1
	minDistance := math.Inf(1)
	for _, node := range g.Nodes {
		dist := geometry.Distance(c, node.Position)
		if dist < minDistance {
			minDistance = dist
			nearest = node.Index
		}
	}
	return nearest, minDistance
}

// VertexDegrees counts how many polyline segments end at each road vertex,
// keyed by quantized coordinate. A vertex shared by two segments of the same
// road counts twice, so this is a multigraph degree rather than a true one.
func VertexDegrees(roads []models.Road) map[string]int {
	degrees := make(map[string]int)
	for _, road := range roads {
		for i := 0; i+1 < len(road.Path); i++ {
			degrees[geometry.Key(road.Path[i])]++
			degrees[geometry.Key(road.Path[i+1])]++
		}
	}
	return degrees
}

// RoadVertex is a distinct road vertex together with its owning road.
type RoadVertex struct {
	Position models.Coordinate
	RoadID   string
}

// RoadVertices lists distinct road vertices in road order. A vertex shared
// by several roads is attributed to the first one.
func RoadVertices(roads []models.Road) []RoadVertex {
	seen := make(map[string]bool)
	var vertices []RoadVertex
	for _, road := range roads {
		for _, p := range road.Path {
			key := geometry.Key(p)
			if seen[key] {
				continue
			}
			seen[key] = true
			vertices = append(vertices, RoadVertex{Position: p, RoadID: road.ID})
		}
	}
	return vertices
}
