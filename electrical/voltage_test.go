package electrical

import (
	"errors"
	"math"
	"testing"

	"lighting-plan-server/models"
)

func TestDrop(t *testing.T) {
	cable, err := LookupCable("AL_PRE_2x25")
	if err != nil {
		t.Fatal(err)
	}

	got, err := Drop(cable, 230, 0.95, 200, 3000)
	if err != nil {
		t.Fatal(err)
	}
	current := 3000 / (230 * 0.95)
	sinPhi := math.Sqrt(1 - 0.95*0.95)
	want := 2 * 200 * current * (1.38/1000*0.95 + 0.08/1000*sinPhi) / 230 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Drop = %.9f, want %.9f", got, want)
	}
	// About 3.2 % for this configuration.
	if got < 3.1 || got > 3.3 {
		t.Fatalf("Drop = %.3f out of expected range", got)
	}
}

func TestDropZeroAndInvalid(t *testing.T) {
	cable := Cables[0]
	tests := []struct {
		name     string
		voltage  float64
		pf       float64
		distance float64
		power    float64
		want     float64
		wantErr  bool
	}{
		{"zero distance", 230, 0.95, 0, 1000, 0, false},
		{"zero power", 230, 0.95, 100, 0, 0, false},
		{"zero voltage", 0, 0.95, 100, 1000, 0, true},
		{"power factor above one", 230, 1.2, 100, 1000, 0, true},
		{"zero power factor", 230, 0, 100, 1000, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Drop(cable, tt.voltage, tt.pf, tt.distance, tt.power)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParams) {
					t.Fatalf("expected ErrInvalidParams, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %v, %v", got, err)
			}
		})
	}
}

func TestLookupCable(t *testing.T) {
	if c, err := LookupCable("PR 2x35 mm² AL"); err != nil || c.Code != "AL_PRE_2x35" {
		t.Fatalf("lookup by label failed: %+v %v", c, err)
	}
	if _, err := LookupCable("AL_PRE_9x9"); !errors.Is(err, ErrUnknownCable) {
		t.Fatalf("expected ErrUnknownCable, got %v", err)
	}
}

func TestCompute(t *testing.T) {
	panelID := 1
	lights := []models.Light{
		{ID: "a", PowerW: 2000, Phase: models.Phase1, PanelID: &panelID},
		{ID: "b", PowerW: 1000, Phase: models.Phase1, PanelID: &panelID},
		{ID: "c", PowerW: 500, Phase: models.Phase2, PanelID: &panelID},
	}
	panels := []models.Panel{{
		ID: 1,
		PhaseInfo: map[models.Phase]models.PhaseRoute{
			models.Phase1: {Distance: 200},
			models.Phase2: {Distance: 0},
		},
	}}
	params := models.CalculationParams{CableType: "AL_PRE_2x25", Voltage: 230, PowerFactor: 0.95}

	results, err := Compute(params, panels, lights)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := Drop(Cables[1], 230, 0.95, 200, 3000)
	if results[1][models.Phase1] != want {
		t.Errorf("phase 1 = %v, want %v", results[1][models.Phase1], want)
	}
	if results[1][models.Phase2] != 0 || results[1][models.Phase3] != 0 {
		t.Errorf("phases without a run should be zero: %v", results[1])
	}

	params.Voltage = -1
	if _, err := Compute(params, panels, lights); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got %v", err)
	}
}
