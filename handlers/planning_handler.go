package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lighting-plan-server/electrical"
	"lighting-plan-server/models"
	"lighting-plan-server/planning"
	"lighting-plan-server/services"
)

type PlanningHandler struct {
	planningService *services.PlanningService
}

func NewPlanningHandler(planningService *services.PlanningService) *PlanningHandler {
	return &PlanningHandler{
		planningService: planningService,
	}
}

func (h *PlanningHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := r.Group("/api/projects")
	api.POST("", h.CreateProject)
	api.GET("", h.ListProjects)
	api.GET("/:id", h.GetProject)
	api.DELETE("/:id", h.DeleteProject)
	api.POST("/:id/setup", h.SetupPanels)
	api.PUT("/:id/panels/:panelId", h.MovePanel)
	api.POST("/:id/lights", h.AddLight)
	api.PUT("/:id/lights/:lightId", h.UpdateLight)
	api.DELETE("/:id/lights", h.DeleteLights)
	api.PATCH("/:id/lights", h.BulkUpdate)
	api.POST("/:id/links", h.AddLink)
	api.GET("/:id/summary", h.Summary)
	api.GET("/:id/voltage-drop", h.VoltageDrop)
	api.PUT("/:id/calculation", h.SetCalculation)
	api.PUT("/:id/visibility", h.SetVisibility)
	api.GET("/:id/wiring.geojson", h.WiringGeoJSON)
}

// statusFor maps service and planning errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, planning.ErrUnknownLight),
		errors.Is(err, planning.ErrUnknownPanel):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidRequest),
		errors.Is(err, planning.ErrSelfLink),
		errors.Is(err, electrical.ErrInvalidParams),
		errors.Is(err, electrical.ErrUnknownCable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrSuperseded),
		errors.Is(err, planning.ErrDuplicateLink):
		return http.StatusConflict
	case errors.Is(err, planning.ErrLinkMismatch),
		errors.Is(err, services.ErrNoRoads):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrRoadSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] ERROR %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *PlanningHandler) CreateProject(c *gin.Context) {
	log.Println("=== Received create project request ===")

	var req models.CreateProjectRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[HTTP] project %s created with %d lights, %d panels recommended", resp.ID, len(resp.Project.Lights), resp.RecommendedPanels)
	c.JSON(http.StatusCreated, resp)
}

func (h *PlanningHandler) ListProjects(c *gin.Context) {
	projects, err := h.planningService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"projects": projects,
		"count":    len(projects),
	})
}

func (h *PlanningHandler) GetProject(c *gin.Context) {
	resp, err := h.planningService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) DeleteProject(c *gin.Context) {
	if err := h.planningService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PlanningHandler) SetupPanels(c *gin.Context) {
	log.Println("=== Received panel setup request ===")

	var req models.SetupRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.Setup(c.Request.Context(), c.Param("id"), req.Panels)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
	log.Printf("=== Panel setup completed: %d panels, %d segments ===", len(resp.Project.Panels), len(resp.Project.WireSegments))
}

func (h *PlanningHandler) MovePanel(c *gin.Context) {
	panelID, err := strconv.Atoi(c.Param("panelId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid panel id"})
		return
	}
	var req models.MovePanelRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.MovePanel(c.Request.Context(), c.Param("id"), panelID, req.Position)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) AddLight(c *gin.Context) {
	var req models.AddLightRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.AddLight(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PlanningHandler) UpdateLight(c *gin.Context) {
	var req models.UpdateLightRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.UpdateLight(c.Request.Context(), c.Param("id"), c.Param("lightId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) DeleteLights(c *gin.Context) {
	var req models.DeleteLightsRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.DeleteLights(c.Request.Context(), c.Param("id"), req.IDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) BulkUpdate(c *gin.Context) {
	var req models.BulkUpdateRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.BulkUpdate(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) AddLink(c *gin.Context) {
	var req models.AddLinkRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.AddLink(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *PlanningHandler) Summary(c *gin.Context) {
	summary, err := h.planningService.Summary(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *PlanningHandler) VoltageDrop(c *gin.Context) {
	resp, err := h.planningService.VoltageDrop(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) SetCalculation(c *gin.Context) {
	var req models.CalculationParams
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.SetCalculation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) SetVisibility(c *gin.Context) {
	var req models.VisibilityRequest
	if !bind(c, &req) {
		return
	}
	resp, err := h.planningService.SetVisibility(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *PlanningHandler) WiringGeoJSON(c *gin.Context) {
	doc, err := h.planningService.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	data, err := WiringLayer(doc).MarshalJSON()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/geo+json", data)
}
