package geometry

import (
	"math"
	"testing"

	"lighting-plan-server/models"
)

// One degree of latitude on a 6378137 m sphere.
const metersPerDegree = 6378137 * math.Pi / 180

func TestDistance(t *testing.T) {
	t.Parallel()

	a := models.Coordinate{Lat: 0, Lng: 0}
	b := models.Coordinate{Lat: 1, Lng: 0}
	got := Distance(a, b)
	if math.Abs(got-metersPerDegree) > 0.01 {
		t.Fatalf("Distance = %.3f, want %.3f", got, metersPerDegree)
	}
	if Distance(a, a) != 0 {
		t.Fatal("distance to self should be zero")
	}
}

func TestPathLength(t *testing.T) {
	t.Parallel()

	path := []models.Coordinate{{Lat: 0, Lng: 0}, {Lat: 0.001, Lng: 0}, {Lat: 0.002, Lng: 0}}
	want := 0.002 * metersPerDegree
	if got := PathLength(path); math.Abs(got-want) > 0.01 {
		t.Fatalf("PathLength = %.3f, want %.3f", got, want)
	}
	if PathLength(path[:1]) != 0 {
		t.Fatal("single point path should have zero length")
	}
}

func TestInterpolate(t *testing.T) {
	t.Parallel()

	a := models.Coordinate{Lat: 10, Lng: 20}
	b := models.Coordinate{Lat: 10.001, Lng: 20}
	mid := Interpolate(a, b, 0.5)
	if math.Abs(mid.Lat-10.0005) > 1e-9 || math.Abs(mid.Lng-20) > 1e-9 {
		t.Fatalf("midpoint = %+v", mid)
	}
	if Interpolate(a, b, 0) != a || Interpolate(a, b, 1) != b {
		t.Fatal("endpoints should be returned unchanged")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := models.Coordinate{Lat: 1.00000001, Lng: 2.00000004}
	b := models.Coordinate{Lat: 1.00000004, Lng: 1.99999999}
	if Key(a) != Key(b) {
		t.Fatalf("keys differ: %s vs %s", Key(a), Key(b))
	}
	if Key(a) != "1.000000,2.000000" {
		t.Fatalf("unexpected key %s", Key(a))
	}
}

func TestInArea(t *testing.T) {
	t.Parallel()

	square := []models.Coordinate{
		{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.01}, {Lat: 0.01, Lng: 0.01}, {Lat: 0.01, Lng: 0},
	}
	tests := []struct {
		name string
		c    models.Coordinate
		want bool
	}{
		{"inside", models.Coordinate{Lat: 0.005, Lng: 0.005}, true},
		{"just outside within tolerance", models.Coordinate{Lat: 0.0101, Lng: 0.005}, true},
		{"outside", models.Coordinate{Lat: 0.02, Lng: 0.005}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InArea(square, tt.c); got != tt.want {
				t.Errorf("InArea(%+v) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}
