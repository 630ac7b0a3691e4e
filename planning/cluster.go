package planning

import (
	"math"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
	"lighting-plan-server/routing"
)

const maxKMeansIterations = 50

// KMeans groups points into k clusters and returns the cluster index of
// each point. Centroids start at the first k points, so the result depends
// only on input order.
func KMeans(points []models.Coordinate, k int) []int {
	if len(points) == 0 || k <= 0 {
		return nil
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := append([]models.Coordinate(nil), points[:k]...)
	assignments := make([]int, len(points))

	changed := true
	for iter := 0; changed && iter < maxKMeansIterations; iter++ {
		changed = false
		for i, p := range points {
			closest := 0
			minDistance := math.Inf(1)
			for j, c := range centroids {
				if d := geometry.Distance(p, c); d < minDistance {
					minDistance = d
					closest = j
				}
			}
			if assignments[i] != closest {
				assignments[i] = closest
				changed = true
			}
		}

		members := make([][]models.Coordinate, k)
		for i, p := range points {
			members[assignments[i]] = append(members[assignments[i]], p)
		}
		for j := range centroids {
			if len(members[j]) > 0 {
				centroids[j] = geometry.Centroid(members[j])
			}
		}
	}
	return assignments
}

// FindAnchor picks where to mount a panel serving lights around center:
// the nearest T-junction (degree 3), else the nearest other intersection
// (degree above 1), else the nearest road vertex. It reports false when
// there are no road vertices.
func FindAnchor(vertices []routing.RoadVertex, degrees map[string]int, center models.Coordinate) (models.Coordinate, bool) {
	tiers := []func(int) bool{
		func(d int) bool { return d == 3 },
		func(d int) bool { return d > 1 },
		func(int) bool { return true },
	}
	for _, accept := range tiers {
		best, found := models.Coordinate{}, false
		minDistance := math.Inf(1)
		for _, v := range vertices {
			if !accept(degrees[geometry.Key(v.Position)]) {
				continue
			}
			if d := geometry.Distance(center, v.Position); d < minDistance {
				minDistance = d
				best, found = v.Position, true
			}
		}
		if found {
			return best, true
		}
	}
	return models.Coordinate{}, false
}
