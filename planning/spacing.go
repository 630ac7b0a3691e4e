package planning

import (
	"fmt"

	"lighting-plan-server/geometry"
	"lighting-plan-server/models"
)

// MinRoadLengthM is the shortest road that receives lights.
const MinRoadLengthM = 5.0

// GenerateLights places lights every spacing meters along each road. A
// candidate closer than spacing/2.1 to any light already placed in this
// pass is dropped, which avoids doubling up where roads meet.
func GenerateLights(roads []models.Road, spacing, powerW float64) []models.Light {
	if spacing <= 0 {
		return nil
	}
	minGap := spacing / 2.1
	counter := 0
	var lights []models.Light

	tooClose := func(pos models.Coordinate) bool {
		for _, l := range lights {
			if geometry.Distance(pos, l.Position) < minGap {
				return true
			}
		}
		return false
	}
	place := func(pos models.Coordinate, roadID string) bool {
		if tooClose(pos) {
			return false
		}
		lights = append(lights, models.Light{
			ID:       fmt.Sprintf("lum-%s-%d", roadID, counter),
			RoadID:   roadID,
			Position: pos,
			PowerW:   powerW,
			PoleType: models.PoleConcrete7m,
		})
		counter++
		return true
	}

	for _, road := range roads {
		if len(road.Path) < 2 {
			continue
		}
		total := geometry.PathLength(road.Path)
		if total < MinRoadLengthM {
			continue
		}

		var last *models.Coordinate
		for dist := 0.0; dist < total; dist += spacing {
			pos, ok := pointAlong(road.Path, dist)
			if !ok {
				continue
			}
			if place(pos, road.ID) {
				p := pos
				last = &p
			}
		}

		end := road.Path[len(road.Path)-1]
		if last == nil {
			place(road.Path[0], road.ID)
		} else if geometry.Distance(*last, end) > spacing/2 {
			place(end, road.ID)
		}
	}
	return lights
}

// pointAlong interpolates the position dist meters from the start of path.
func pointAlong(path []models.Coordinate, dist float64) (models.Coordinate, bool) {
	traveled := 0.0
	for i := 0; i+1 < len(path); i++ {
		segment := geometry.Distance(path[i], path[i+1])
		if traveled+segment >= dist {
			fraction := 0.0
			if segment > 0 {
				fraction = (dist - traveled) / segment
			}
			return geometry.Interpolate(path[i], path[i+1], fraction), true
		}
		traveled += segment
	}
	return models.Coordinate{}, false
}
