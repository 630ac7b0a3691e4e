package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"lighting-plan-server/config"
	"lighting-plan-server/electrical"
	"lighting-plan-server/models"
	"lighting-plan-server/planning"
	"lighting-plan-server/preprocessing"
)

type importOptions struct {
	overpassFile string
	fetch        bool
	overpassURL  string
	boundary     string
	out          string
}

type planOptions struct {
	roads    string
	panels   int
	out      string
	config   string
	boundary string
}

type replanOptions struct {
	project string
	moves   []string
	out     string
}

type panelMove struct {
	panelID  int
	position models.Coordinate
}

// parseMove reads "id:lat,lng".
func parseMove(s string) (panelMove, error) {
	idPart, posPart, ok := strings.Cut(s, ":")
	if !ok {
		return panelMove{}, fmt.Errorf("move %q: expected id:lat,lng", s)
	}
	id, err := strconv.Atoi(strings.TrimSpace(idPart))
	if err != nil {
		return panelMove{}, fmt.Errorf("move %q: invalid panel id: %w", s, err)
	}
	latPart, lngPart, ok := strings.Cut(posPart, ",")
	if !ok {
		return panelMove{}, fmt.Errorf("move %q: expected lat,lng", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latPart), 64)
	if err != nil {
		return panelMove{}, fmt.Errorf("move %q: invalid latitude: %w", s, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngPart), 64)
	if err != nil {
		return panelMove{}, fmt.Errorf("move %q: invalid longitude: %w", s, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return panelMove{}, fmt.Errorf("move %q: coordinate out of range", s)
	}
	return panelMove{panelID: id, position: models.Coordinate{Lat: lat, Lng: lng}}, nil
}

func runImportRoads(cmd *cobra.Command, opts importOptions) error {
	if opts.fetch == (opts.overpassFile != "") {
		return errors.New("exactly one of --overpass or --fetch is required")
	}
	boundary, err := preprocessing.LoadBoundary(opts.boundary)
	if err != nil {
		return err
	}

	var roads []models.Road
	if opts.fetch {
		roads, err = preprocessing.NewOverpassClient(opts.overpassURL).FetchRoads(cmd.Context(), boundary)
	} else {
		roads, err = readOverpassFile(opts.overpassFile, boundary)
	}
	if err != nil {
		return err
	}

	if err := writeRoads(opts.out, roads); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d roads to %s\n", len(roads), opts.out)
	return nil
}

func readOverpassFile(path string, boundary []models.Coordinate) ([]models.Road, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return preprocessing.ParseOverpass(f, boundary)
}

func writeRoads(path string, roads []models.Road) error {
	if strings.EqualFold(filepath.Ext(path), ".gob") {
		return preprocessing.SaveRoadsCache(path, roads)
	}
	data, err := json.MarshalIndent(roads, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func runPlan(cmd *cobra.Command, opts planOptions) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	roads, err := preprocessing.LoadRoads(opts.roads)
	if err != nil {
		return err
	}
	var boundary []models.Coordinate
	if opts.boundary != "" {
		if boundary, err = preprocessing.LoadBoundary(opts.boundary); err != nil {
			return err
		}
	}

	lights := planning.GenerateLights(roads, cfg.Planning.SpacingM, cfg.Planning.LightPowerW)
	recommended := planning.RecommendPanelCount(lights, cfg.Limits())
	k := opts.panels
	if k <= 0 {
		k = recommended
	}
	log.Printf("Generated %d lights on %d roads, %d panels recommended", len(lights), len(roads), recommended)

	plan, err := planning.SetupPlan(cmd.Context(), roads, lights, k, nil)
	if err != nil {
		return err
	}

	doc := plan.ApplyTo(models.Project{
		Boundary:          boundary,
		SpacingM:          cfg.Planning.SpacingM,
		LightPowerW:       cfg.Planning.LightPowerW,
		CalculationParams: cfg.Calculation,
		HiddenPanels:      []int{},
		HiddenPhases:      []models.Phase{},
	})
	if err := writeProject(opts.out, doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s: %d lights, %d panels, %d wire segments\n",
		opts.out, len(doc.Lights), len(doc.Panels), len(doc.WireSegments))
	return nil
}

func readProject(path string) (models.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Project{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return models.DecodeProject(data)
}

func writeProject(path string, doc models.Project) error {
	data, err := models.EncodeProject(doc)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func runReplan(cmd *cobra.Command, opts replanOptions) error {
	moves := make([]panelMove, 0, len(opts.moves))
	for _, m := range opts.moves {
		move, err := parseMove(m)
		if err != nil {
			return err
		}
		moves = append(moves, move)
	}

	doc, err := readProject(opts.project)
	if err != nil {
		return err
	}
	plan := planning.FromProject(doc)

	ctx := cmd.Context()
	if len(moves) == 0 {
		plan, err = planning.Replan(ctx, plan)
	}
	for _, m := range moves {
		if plan, err = planning.MovePanel(ctx, plan, m.panelID, m.position); err != nil {
			break
		}
	}
	if err != nil {
		return err
	}

	out := opts.out
	if out == "" {
		out = opts.project
	}
	doc = plan.ApplyTo(doc)
	if err := writeProject(out, doc); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Replanned %d panels into %s\n", len(doc.Panels), out)
	return nil
}

func runVoltage(cmd *cobra.Command, path, configPath string) error {
	doc, err := readProject(path)
	if err != nil {
		return err
	}
	params := doc.CalculationParams
	if params.CableType == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		params = cfg.Calculation
	}

	drops, err := electrical.Compute(params, doc.Panels, doc.Lights)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Cable %s, %.0f V, cos phi %.2f\n", params.CableType, params.Voltage, params.PowerFactor)
	for _, panel := range doc.Panels {
		fmt.Fprintf(w, "Panel %d:", panel.ID)
		for _, phase := range models.Phases {
			fmt.Fprintf(w, "  L%d %.2f%%", phase, drops[panel.ID][phase])
		}
		fmt.Fprintln(w)
	}
	return nil
}

func runSummary(cmd *cobra.Command, path string) error {
	doc, err := readProject(path)
	if err != nil {
		return err
	}
	summary := planning.Summarize(planning.FromProject(doc))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d lights, %d panels, %.0f W total\n", summary.LightCount, summary.PanelCount, summary.TotalW)
	for _, ps := range summary.Panels {
		fmt.Fprintf(w, "Panel %d: %d lights, %.0f W", ps.PanelID, ps.LightCount, ps.TotalW)
		for _, phase := range models.Phases {
			load := ps.Phases[phase]
			fmt.Fprintf(w, "  L%d %d/%.0f W", phase, load.Count, load.PowerW)
		}
		if ps.Unassigned > 0 {
			fmt.Fprintf(w, "  (%d unassigned)", ps.Unassigned)
		}
		fmt.Fprintln(w)
	}
	return nil
}
