package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"lighting-plan-server/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "projects.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo := New(db)
	t.Cleanup(func() { repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	return repo
}

func TestRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	panelID := 1
	doc := models.Project{
		SpacingM: 30,
		Lights:   []models.Light{{ID: "a", PowerW: 42, Phase: models.Phase2, PanelID: &panelID}},
		Panels:   []models.Panel{{ID: 1}},
		CalculationParams: models.CalculationParams{
			CableType: "AL_PRE_2x25", Voltage: 230, PowerFactor: 0.95,
		},
	}
	id, err := repo.Create(ctx, "Plaza", doc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	rec, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Info.Name != "Plaza" || rec.Info.LightCount != 1 || rec.Info.PanelCount != 1 {
		t.Errorf("unexpected info %+v", rec.Info)
	}
	if rec.Document.Lights[0].Phase != models.Phase2 || rec.Document.SpacingM != 30 {
		t.Errorf("document not preserved: %+v", rec.Document)
	}

	doc.Lights = nil
	if err := repo.Save(ctx, id, "Plaza v2", doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	updated, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !updated.Info.CreatedAt.Equal(rec.Info.CreatedAt) {
		t.Error("created_at should survive updates")
	}
	if updated.Info.LightCount != 0 || updated.Info.Name != "Plaza v2" {
		t.Errorf("update not applied: %+v", updated.Info)
	}

	infos, err := repo.List(ctx)
	if err != nil || len(infos) != 1 {
		t.Fatalf("list: %v %v", infos, err)
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
