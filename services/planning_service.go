package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"lighting-plan-server/config"
	"lighting-plan-server/electrical"
	"lighting-plan-server/models"
	"lighting-plan-server/planning"
	"lighting-plan-server/preprocessing"
	"lighting-plan-server/store"
)

var (
	ErrSuperseded      = errors.New("superseded by a newer edit")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNoRoads         = errors.New("project has no roads")
	ErrRoadSource      = errors.New("road source unavailable")
)

// session holds the latest saved document of one project. Edits compute on a
// snapshot outside the lock and only land if no newer edit started meanwhile.
type session struct {
	mu         sync.Mutex
	name       string
	doc        models.Project
	generation uint64
	cancel     context.CancelFunc
}

type PlanningService struct {
	repo     *store.Repository
	cfg      *config.Config
	overpass *preprocessing.OverpassClient

	mu       sync.Mutex
	sessions map[string]*session
}

func NewPlanningService(repo *store.Repository, cfg *config.Config) *PlanningService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &PlanningService{
		repo:     repo,
		cfg:      cfg,
		overpass: preprocessing.NewOverpassClient(cfg.Server.OverpassURL),
		sessions: make(map[string]*session),
	}
}

func (ps *PlanningService) session(ctx context.Context, id string) (*session, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if s, ok := ps.sessions[id]; ok {
		return s, nil
	}
	rec, err := ps.repo.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	s := &session{name: rec.Info.Name, doc: rec.Document}
	ps.sessions[id] = s
	return s, nil
}

func (ps *PlanningService) response(id string, s *session) *models.ProjectResponse {
	return &models.ProjectResponse{
		ID:                id,
		Name:              s.name,
		Generation:        s.generation,
		RecommendedPanels: planning.RecommendPanelCount(s.doc.Lights, ps.cfg.Limits()),
		Project:           s.doc,
	}
}

// Create generates lights along the roads and stores a new project without
// panels. Without roads, they are fetched from Overpass for the boundary.
func (ps *PlanningService) Create(ctx context.Context, req models.CreateProjectRequest) (*models.ProjectResponse, error) {
	if len(req.Roads) == 0 {
		if len(req.Boundary) < 3 {
			return nil, fmt.Errorf("%w: roads or a boundary of at least 3 points are required", ErrInvalidRequest)
		}
		roads, err := ps.overpass.FetchRoads(ctx, req.Boundary)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRoadSource, err)
		}
		if len(roads) == 0 {
			return nil, fmt.Errorf("%w: no roads inside the boundary", ErrInvalidRequest)
		}
		req.Roads = roads
	}
	spacing := req.SpacingM
	if spacing <= 0 {
		spacing = ps.cfg.Planning.SpacingM
	}
	powerW := req.LightPowerW
	if powerW <= 0 {
		powerW = ps.cfg.Planning.LightPowerW
	}
	name := req.Name
	if name == "" {
		name = "Untitled project"
	}

	start := time.Now()
	lights := planning.GenerateLights(req.Roads, spacing, powerW)
	doc := models.Project{
		Version:           models.ProjectVersion,
		Boundary:          req.Boundary,
		Roads:             req.Roads,
		Lights:            lights,
		Panels:            []models.Panel{},
		SpacingM:          spacing,
		LightPowerW:       powerW,
		ManualLinks:       []models.ManualLink{},
		WireSegments:      []models.WireSegment{},
		CalculationParams: ps.cfg.Calculation,
		HiddenPanels:      []int{},
		HiddenPhases:      []models.Phase{},
	}

	id, err := ps.repo.Create(ctx, name, doc)
	if err != nil {
		return nil, err
	}
	log.Printf("[PLANNER] project %s created: %d roads, %d lights in %v", id, len(req.Roads), len(lights), time.Since(start))

	s := &session{name: name, doc: doc}
	ps.mu.Lock()
	ps.sessions[id] = s
	ps.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	return ps.response(id, s), nil
}

func (ps *PlanningService) Get(ctx context.Context, id string) (*models.ProjectResponse, error) {
	s, err := ps.session(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return ps.response(id, s), nil
}

func (ps *PlanningService) List(ctx context.Context) ([]models.ProjectInfo, error) {
	return ps.repo.List(ctx)
}

// Delete removes the project and cancels any edit still running on it.
func (ps *PlanningService) Delete(ctx context.Context, id string) error {
	if err := ps.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
		}
		return err
	}

	ps.mu.Lock()
	s, ok := ps.sessions[id]
	delete(ps.sessions, id)
	ps.mu.Unlock()

	if ok {
		s.mu.Lock()
		s.generation++
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		s.mu.Unlock()
	}
	return nil
}

// edit runs fn on a snapshot of the project. Starting an edit cancels the one
// before it, so only the newest edit is ever applied.
func (ps *PlanningService) edit(ctx context.Context, id string, fn func(context.Context, planning.Plan) (planning.Plan, error)) (*models.ProjectResponse, error) {
	s, err := ps.session(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	snapshot := planning.FromProject(s.doc)
	s.mu.Unlock()
	defer cancel()

	plan, err := fn(runCtx, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		log.Printf("[PLANNER] project %s: edit %d superseded by %d", id, gen, s.generation)
		return nil, ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}

	doc := plan.ApplyTo(s.doc)
	if err := ps.repo.Save(ctx, id, s.name, doc); err != nil {
		return nil, err
	}
	s.doc = doc
	return ps.response(id, s), nil
}

// Setup places k panels. A k of zero or less uses the recommended count.
func (ps *PlanningService) Setup(ctx context.Context, id string, k int) (*models.ProjectResponse, error) {
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		if len(p.Roads) == 0 {
			return planning.Plan{}, ErrNoRoads
		}
		n := k
		if n <= 0 {
			n = planning.RecommendPanelCount(p.Lights, ps.cfg.Limits())
		}
		return planning.SetupPlan(ctx, p.Roads, p.Lights, n, p.Links)
	})
}

func (ps *PlanningService) MovePanel(ctx context.Context, id string, panelID int, pos models.Coordinate) (*models.ProjectResponse, error) {
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		return planning.MovePanel(ctx, p, panelID, pos)
	})
}

func (ps *PlanningService) AddLight(ctx context.Context, id string, req models.AddLightRequest) (*models.ProjectResponse, error) {
	pole, err := models.ParsePoleType(req.PoleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		out, light, err := planning.AddLight(ctx, p, req.Position, req.PowerW, pole, req.Phase, req.PanelID)
		if err == nil {
			log.Printf("[PLANNER] project %s: light %s added to panel %d", id, light.ID, req.PanelID)
		}
		return out, err
	})
}

func (ps *PlanningService) UpdateLight(ctx context.Context, id, lightID string, req models.UpdateLightRequest) (*models.ProjectResponse, error) {
	pole, err := models.ParsePoleType(req.PoleType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	patch := planning.LightPatch{PowerW: &req.PowerW, PoleType: &pole, Phase: &req.Phase}
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		return planning.UpdateLight(ctx, p, lightID, patch)
	})
}

func (ps *PlanningService) BulkUpdate(ctx context.Context, id string, req models.BulkUpdateRequest) (*models.ProjectResponse, error) {
	patch := planning.LightPatch{PowerW: req.PowerW, Phase: req.Phase}
	if req.PowerW != nil && *req.PowerW <= 0 {
		return nil, fmt.Errorf("%w: power must be positive", ErrInvalidRequest)
	}
	if req.PoleType != nil {
		pole, err := models.ParsePoleType(*req.PoleType)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		patch.PoleType = &pole
	}
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		return planning.BulkUpdate(ctx, p, req.IDs, patch)
	})
}

func (ps *PlanningService) DeleteLights(ctx context.Context, id string, ids []string) (*models.ProjectResponse, error) {
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		return planning.DeleteLights(ctx, p, ids)
	})
}

func (ps *PlanningService) AddLink(ctx context.Context, id string, req models.AddLinkRequest) (*models.ProjectResponse, error) {
	return ps.edit(ctx, id, func(ctx context.Context, p planning.Plan) (planning.Plan, error) {
		out, _, err := planning.AddLink(ctx, p, req.StartLightID, req.EndLightID)
		return out, err
	})
}

func (ps *PlanningService) Summary(ctx context.Context, id string) (*models.PlanSummary, error) {
	s, err := ps.session(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	plan := planning.FromProject(s.doc)
	s.mu.Unlock()

	summary := planning.Summarize(plan)
	return &summary, nil
}

func (ps *PlanningService) VoltageDrop(ctx context.Context, id string) (*models.VoltageDropResponse, error) {
	s, err := ps.session(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()

	params := doc.CalculationParams
	if params.CableType == "" {
		params = ps.cfg.Calculation
	}
	drops, err := electrical.Compute(params, doc.Panels, doc.Lights)
	if err != nil {
		return nil, err
	}
	return &models.VoltageDropResponse{CalculationParams: params, Panels: drops}, nil
}

// SetCalculation stores new electrical parameters. The plan itself is not
// touched, so a running edit is not superseded.
func (ps *PlanningService) SetCalculation(ctx context.Context, id string, params models.CalculationParams) (*models.VoltageDropResponse, error) {
	if _, err := electrical.Compute(params, nil, nil); err != nil {
		return nil, err
	}
	if err := ps.updateDocument(ctx, id, func(doc *models.Project) { doc.CalculationParams = params }); err != nil {
		return nil, err
	}
	return ps.VoltageDrop(ctx, id)
}

// SetVisibility stores which panels and phases the map layer leaves out.
func (ps *PlanningService) SetVisibility(ctx context.Context, id string, req models.VisibilityRequest) (*models.ProjectResponse, error) {
	for _, phase := range req.HiddenPhases {
		if !phase.Valid() {
			return nil, fmt.Errorf("%w: invalid phase %d", ErrInvalidRequest, phase)
		}
	}
	hiddenPanels := append([]int{}, req.HiddenPanels...)
	hiddenPhases := append([]models.Phase{}, req.HiddenPhases...)
	if err := ps.updateDocument(ctx, id, func(doc *models.Project) {
		doc.HiddenPanels = hiddenPanels
		doc.HiddenPhases = hiddenPhases
	}); err != nil {
		return nil, err
	}
	return ps.Get(ctx, id)
}

func (ps *PlanningService) updateDocument(ctx context.Context, id string, fn func(*models.Project)) error {
	s, err := ps.session(ctx, id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc
	fn(&doc)
	if err := ps.repo.Save(ctx, id, s.name, doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// Document returns the current saved document of a project.
func (ps *PlanningService) Document(ctx context.Context, id string) (models.Project, error) {
	s, err := ps.session(ctx, id)
	if err != nil {
		return models.Project{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc, nil
}
