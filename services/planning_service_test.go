package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"lighting-plan-server/config"
	"lighting-plan-server/models"
	"lighting-plan-server/planning"
	"lighting-plan-server/store"
)

func coord(lat, lng float64) models.Coordinate {
	return models.Coordinate{Lat: lat, Lng: lng}
}

// testRoads is a street running about 222 m east of the origin and one
// running about 111 m west of it.
func testRoads() []models.Road {
	return []models.Road{
		{ID: "r", Name: "Rue Est", Path: []models.Coordinate{coord(0, 0), coord(0, 0.001), coord(0, 0.002)}},
		{ID: "w", Name: "Rue Ouest", Path: []models.Coordinate{coord(0, 0), coord(0, -0.001)}},
	}
}

func newTestService(t *testing.T) (*PlanningService, *store.Repository) {
	t.Helper()
	return newTestServiceWithConfig(t, config.Default())
}

func newTestServiceWithConfig(t *testing.T, cfg *config.Config) (*PlanningService, *store.Repository) {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "projects.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo := store.New(db)
	t.Cleanup(func() { repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return NewPlanningService(repo, cfg), repo
}

func createProject(t *testing.T, ps *PlanningService) *models.ProjectResponse {
	t.Helper()
	resp, err := ps.Create(context.Background(), models.CreateProjectRequest{Name: "Village", Roads: testRoads()})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return resp
}

func setupProject(t *testing.T, ps *PlanningService) *models.ProjectResponse {
	t.Helper()
	created := createProject(t, ps)
	resp, err := ps.Setup(context.Background(), created.ID, 0)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return resp
}

func lightPhase(doc models.Project, id string) models.Phase {
	for _, l := range doc.Lights {
		if l.ID == id {
			return l.Phase
		}
	}
	return models.PhaseNone
}

func TestCreateGeneratesLights(t *testing.T) {
	ps, repo := newTestService(t)
	resp := createProject(t, ps)

	if got := len(resp.Project.Lights); got != 12 {
		t.Fatalf("expected 12 lights, got %d", got)
	}
	if resp.RecommendedPanels != 1 {
		t.Errorf("expected 1 recommended panel, got %d", resp.RecommendedPanels)
	}
	if resp.Project.SpacingM != 30 || resp.Project.LightPowerW != 42 {
		t.Errorf("defaults not applied: spacing %v power %v", resp.Project.SpacingM, resp.Project.LightPowerW)
	}
	if resp.Project.CalculationParams.CableType != "AL_PRE_2x25" {
		t.Errorf("calculation params not defaulted: %+v", resp.Project.CalculationParams)
	}

	// A fresh service reads the project back from the database.
	fresh := NewPlanningService(repo, config.Default())
	got, err := fresh.Get(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Village" || len(got.Project.Lights) != 12 {
		t.Errorf("unexpected reloaded project: %s with %d lights", got.Name, len(got.Project.Lights))
	}
}

func TestCreateRequiresRoads(t *testing.T) {
	ps, _ := newTestService(t)
	_, err := ps.Create(context.Background(), models.CreateProjectRequest{Name: "Empty"})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

const overpassWay = `{"elements": [
  {"type": "way", "id": 42, "tags": {"name": "Chemin du Lac"}, "geometry": [
    {"lat": 0.001, "lon": 0.001}, {"lat": 0.001, "lon": 0.002}
  ]}
]}`

func TestCreateFetchesRoadsForBoundary(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		io.WriteString(w, overpassWay)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Server.OverpassURL = server.URL
	ps, _ := newTestServiceWithConfig(t, cfg)

	boundary := []models.Coordinate{coord(0, 0), coord(0, 0.003), coord(0.003, 0.003), coord(0.003, 0)}
	resp, err := ps.Create(context.Background(), models.CreateProjectRequest{Name: "Lac", Boundary: boundary})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one Overpass call, got %d", calls)
	}
	if len(resp.Project.Roads) != 1 || resp.Project.Roads[0].Name != "Chemin du Lac" {
		t.Fatalf("unexpected roads: %+v", resp.Project.Roads)
	}
	if len(resp.Project.Lights) == 0 {
		t.Error("expected lights along the fetched road")
	}

	server.Close()
	if _, err := ps.Create(context.Background(), models.CreateProjectRequest{Boundary: boundary}); !errors.Is(err, ErrRoadSource) {
		t.Errorf("expected ErrRoadSource once Overpass is down, got %v", err)
	}
}

func TestSetupAssignsEveryLight(t *testing.T) {
	ps, _ := newTestService(t)
	resp := setupProject(t, ps)

	if len(resp.Project.Panels) != 1 {
		t.Fatalf("expected 1 panel, got %d", len(resp.Project.Panels))
	}
	if resp.Generation != 1 {
		t.Errorf("expected generation 1, got %d", resp.Generation)
	}

	summary, err := ps.Summary(context.Background(), resp.ID)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if summary.LightCount != 12 || summary.TotalW != 12*42 {
		t.Errorf("unexpected totals: %+v", summary)
	}
	if summary.Panels[0].Unassigned != 0 {
		t.Errorf("expected every light phased, %d unassigned", summary.Panels[0].Unassigned)
	}
}

func TestUnknownProject(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()

	if _, err := ps.Get(ctx, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Get: expected ErrProjectNotFound, got %v", err)
	}
	if _, err := ps.Setup(ctx, "missing", 1); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Setup: expected ErrProjectNotFound, got %v", err)
	}
	if err := ps.Delete(ctx, "missing"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Delete: expected ErrProjectNotFound, got %v", err)
	}
}

func TestLinks(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := setupProject(t, ps)

	// The two easternmost lights always sit on the same branch.
	link := models.AddLinkRequest{StartLightID: "lum-r-6", EndLightID: "lum-r-7"}
	after, err := ps.AddLink(ctx, resp.ID, link)
	if err != nil {
		t.Fatalf("AddLink: %v", err)
	}
	if len(after.Project.ManualLinks) != 1 {
		t.Fatalf("expected 1 link, got %d", len(after.Project.ManualLinks))
	}
	if _, err := ps.AddLink(ctx, resp.ID, link); !errors.Is(err, planning.ErrDuplicateLink) {
		t.Errorf("expected ErrDuplicateLink, got %v", err)
	}

	if lightPhase(after.Project, "lum-r-7") == lightPhase(after.Project, "lum-w-11") {
		t.Fatalf("opposite ends of the street should be on different phases")
	}
	_, err = ps.AddLink(ctx, resp.ID, models.AddLinkRequest{StartLightID: "lum-r-7", EndLightID: "lum-w-11"})
	if !errors.Is(err, planning.ErrLinkMismatch) {
		t.Errorf("expected ErrLinkMismatch, got %v", err)
	}

	// Deleting a linked light drops the link with it.
	deleted, err := ps.DeleteLights(ctx, resp.ID, []string{"lum-r-7"})
	if err != nil {
		t.Fatalf("DeleteLights: %v", err)
	}
	if len(deleted.Project.ManualLinks) != 0 {
		t.Errorf("expected link pruned, got %+v", deleted.Project.ManualLinks)
	}
	if len(deleted.Project.Lights) != 11 {
		t.Errorf("expected 11 lights, got %d", len(deleted.Project.Lights))
	}
}

func TestLightEdits(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := setupProject(t, ps)

	added, err := ps.AddLight(ctx, resp.ID, models.AddLightRequest{
		Position: coord(0.0001, 0.0015),
		PowerW:   100,
		PoleType: "Metal 6m",
		Phase:    models.Phase3,
		PanelID:  1,
	})
	if err != nil {
		t.Fatalf("AddLight: %v", err)
	}
	if len(added.Project.Lights) != 13 {
		t.Fatalf("expected 13 lights, got %d", len(added.Project.Lights))
	}
	manual := added.Project.Lights[12]
	if manual.PoleType != models.PoleMetal6m || manual.Phase != models.Phase3 || manual.RoadID != "r" {
		t.Errorf("unexpected manual light: %+v", manual)
	}

	if _, err := ps.AddLight(ctx, resp.ID, models.AddLightRequest{PowerW: 50, PoleType: "bamboo", PanelID: 1}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for unknown pole, got %v", err)
	}

	updated, err := ps.UpdateLight(ctx, resp.ID, "lum-r-0", models.UpdateLightRequest{PowerW: 150, Phase: models.Phase2})
	if err != nil {
		t.Fatalf("UpdateLight: %v", err)
	}
	if lightPhase(updated.Project, "lum-r-0") != models.Phase2 {
		t.Errorf("phase not updated")
	}
	if _, err := ps.UpdateLight(ctx, resp.ID, "nope", models.UpdateLightRequest{PowerW: 1}); !errors.Is(err, planning.ErrUnknownLight) {
		t.Errorf("expected ErrUnknownLight, got %v", err)
	}

	power := 60.0
	bulk, err := ps.BulkUpdate(ctx, resp.ID, models.BulkUpdateRequest{IDs: []string{"lum-w-8", "lum-w-9"}, PowerW: &power})
	if err != nil {
		t.Fatalf("BulkUpdate: %v", err)
	}
	for _, l := range bulk.Project.Lights {
		if (l.ID == "lum-w-8" || l.ID == "lum-w-9") && l.PowerW != 60 {
			t.Errorf("light %s power %v", l.ID, l.PowerW)
		}
	}
}

func TestMovePanel(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := setupProject(t, ps)

	moved, err := ps.MovePanel(ctx, resp.ID, 1, coord(0, 0.002))
	if err != nil {
		t.Fatalf("MovePanel: %v", err)
	}
	if moved.Project.Panels[0].Position != coord(0, 0.002) {
		t.Errorf("panel not moved: %+v", moved.Project.Panels[0].Position)
	}
	if _, err := ps.MovePanel(ctx, resp.ID, 9, coord(0, 0)); !errors.Is(err, planning.ErrUnknownPanel) {
		t.Errorf("expected ErrUnknownPanel, got %v", err)
	}
}

func TestNewerEditSupersedesRunningOne(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := createProject(t, ps)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := ps.edit(ctx, resp.ID, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
			close(started)
			<-ctx.Done()
			return p, ctx.Err()
		})
		done <- err
	}()

	<-started
	latest, err := ps.Setup(ctx, resp.ID, 1)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}
	if latest.Generation != 2 || len(latest.Project.Panels) != 1 {
		t.Errorf("expected the newer edit applied, got generation %d with %d panels", latest.Generation, len(latest.Project.Panels))
	}
}

func TestCalculationAndVoltageDrop(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := setupProject(t, ps)

	drops, err := ps.VoltageDrop(ctx, resp.ID)
	if err != nil {
		t.Fatalf("VoltageDrop: %v", err)
	}
	if _, ok := drops.Panels[1]; !ok {
		t.Fatalf("expected panel 1 in %+v", drops.Panels)
	}

	if _, err := ps.SetCalculation(ctx, resp.ID, models.CalculationParams{CableType: "AL_PRE_2x25", Voltage: 0, PowerFactor: 0.9}); err == nil {
		t.Errorf("expected an error for zero voltage")
	}

	params := models.CalculationParams{CableType: "CU_SUB_2x16", Voltage: 400, PowerFactor: 0.9}
	got, err := ps.SetCalculation(ctx, resp.ID, params)
	if err != nil {
		t.Fatalf("SetCalculation: %v", err)
	}
	if got.CalculationParams != params {
		t.Errorf("params not stored: %+v", got.CalculationParams)
	}
	doc, _ := ps.Document(ctx, resp.ID)
	if doc.CalculationParams != params {
		t.Errorf("document not updated: %+v", doc.CalculationParams)
	}
}

func TestVisibilityAndDelete(t *testing.T) {
	ps, _ := newTestService(t)
	ctx := context.Background()
	resp := setupProject(t, ps)

	if _, err := ps.SetVisibility(ctx, resp.ID, models.VisibilityRequest{HiddenPhases: []models.Phase{7}}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	vis, err := ps.SetVisibility(ctx, resp.ID, models.VisibilityRequest{HiddenPanels: []int{1}, HiddenPhases: []models.Phase{models.Phase2}})
	if err != nil {
		t.Fatalf("SetVisibility: %v", err)
	}
	if len(vis.Project.HiddenPanels) != 1 || vis.Project.HiddenPhases[0] != models.Phase2 {
		t.Errorf("visibility not stored: %+v %+v", vis.Project.HiddenPanels, vis.Project.HiddenPhases)
	}

	if err := ps.Delete(ctx, resp.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := ps.Get(ctx, resp.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound after delete, got %v", err)
	}
	list, err := ps.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
}
