package preprocessing

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"lighting-plan-server/models"
)

var square = []models.Coordinate{
	{Lat: 0, Lng: 0}, {Lat: 0, Lng: 0.01}, {Lat: 0.01, Lng: 0.01}, {Lat: 0.01, Lng: 0},
}

const overpassFixture = `{
  "elements": [
    {"type": "node", "id": 1, "lat": 0.005, "lon": 0.005},
    {"type": "way", "id": 10, "tags": {"name": "Main"}, "geometry": [
      {"lat": 0.002, "lon": 0.002}, {"lat": 0.004, "lon": 0.002},
      {"lat": 0.05, "lon": 0.002},
      {"lat": 0.006, "lon": 0.003}, {"lat": 0.008, "lon": 0.003}
    ]},
    {"type": "way", "id": 11, "geometry": [
      {"lat": 0.003, "lon": 0.003}, {"lat": 0.003, "lon": 0.006}
    ]},
    {"type": "way", "id": 12, "geometry": [{"lat": 0.003, "lon": 0.003}]},
    {"type": "way", "id": 13, "geometry": [
      {"lat": 0.5, "lon": 0.5}, {"lat": 0.6, "lon": 0.6}
    ]}
  ]
}`

func TestParseOverpass(t *testing.T) {
	roads, err := ParseOverpass(strings.NewReader(overpassFixture), square)
	if err != nil {
		t.Fatal(err)
	}
	wantIDs := []string{"street-10-0", "street-10-1", "street-11-2"}
	if len(roads) != len(wantIDs) {
		t.Fatalf("got %d roads, want %d: %+v", len(roads), len(wantIDs), roads)
	}
	for i, id := range wantIDs {
		if roads[i].ID != id {
			t.Errorf("road %d id %s, want %s", i, roads[i].ID, id)
		}
	}
	if roads[0].Name != "Main" || roads[2].Name != defaultRoadName {
		t.Errorf("unexpected names %q, %q", roads[0].Name, roads[2].Name)
	}
	if len(roads[1].Path) != 2 {
		t.Errorf("split road should keep 2 points, got %d", len(roads[1].Path))
	}

	if _, err := ParseOverpass(strings.NewReader("{"), square); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestRoadsCacheRoundTrip(t *testing.T) {
	roads, err := ParseOverpass(strings.NewReader(overpassFixture), square)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "cache", "roads.gob")
	if err := SaveRoadsCache(path, roads); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadRoads(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(loaded, roads) {
		t.Fatalf("roads changed after cache round trip")
	}
}

func TestParseBoundary(t *testing.T) {
	tests := []struct {
		name string
		data string
		want int
	}{
		{"coordinates", `[{"lat":0,"lng":0},{"lat":0,"lng":1},{"lat":1,"lng":1}]`, 3},
		{"geometry", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`, 4},
		{"feature", `{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}`, 3},
		{"collection", `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBoundary([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d points, want %d", len(got), tt.want)
			}
		})
	}

	got, _ := ParseBoundary([]byte(tests[1].data))
	if got[1] != (models.Coordinate{Lat: 0, Lng: 1}) {
		t.Errorf("GeoJSON positions are lng,lat; got %+v", got[1])
	}
	if _, err := ParseBoundary([]byte(`{"type":"Point","coordinates":[0,0]}`)); err == nil {
		t.Error("expected error for a point boundary")
	}
}

func TestOverpassClient(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		values, _ := url.ParseQuery(string(body))
		query = values.Get("data")
		io.WriteString(w, overpassFixture)
	}))
	defer server.Close()

	roads, err := NewOverpassClient(server.URL).FetchRoads(context.Background(), square)
	if err != nil {
		t.Fatal(err)
	}
	if len(roads) != 3 {
		t.Fatalf("expected 3 roads, got %d", len(roads))
	}
	if !strings.Contains(query, "out geom") || !strings.Contains(query, "residential") {
		t.Errorf("unexpected query %q", query)
	}

	if _, err := NewOverpassClient(server.URL).FetchRoads(context.Background(), square[:2]); err == nil {
		t.Error("expected error for a degenerate boundary")
	}
}
