package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
)

// CreateSpeciesRequest defines the request body for cataloguing a species
type CreateSpeciesRequest struct {
	ScientificName     string `json:"scientific_name" binding:"required"`
	CommonName         string `json:"common_name"`
	SpeciesType        string `json:"species_type"`
	ConservationStatus string `json:"conservation_status"`
	Habitat            string `json:"habitat"`
	DepthRange         string `json:"depth_range"`
	PopulationTrend    string `json:"population_trend"`
	ThreatLevel        string `json:"threat_level"`
	Description        string `json:"description"`
}

// UpdateSpeciesRequest defines the request body for updating a species
type UpdateSpeciesRequest struct {
	CommonName         string `json:"common_name"`
	SpeciesType        string `json:"species_type"`
	ConservationStatus string `json:"conservation_status"`
	Habitat            string `json:"habitat"`
	DepthRange         string `json:"depth_range"`
	PopulationTrend    string `json:"population_trend"`
	ThreatLevel        string `json:"threat_level"`
	Description        string `json:"description"`
}

// SpeciesController handles species catalog and sighting requests
type SpeciesController struct {
	speciesService *services.SpeciesService
	logger         *utils.Logger
}

// NewSpeciesController creates a new species controller
func NewSpeciesController(speciesService *services.SpeciesService, logger *utils.Logger) *SpeciesController {
	return &SpeciesController{
		speciesService: speciesService,
		logger:         logger.Named("species_controller"),
	}
}

// RegisterRoutes registers the species routes
func (c *SpeciesController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("", c.CreateSpecies)
	router.GET("", c.ListSpecies)
	router.GET("/:id", c.GetSpecies)
	router.PUT("/:id", c.UpdateSpecies)
	router.DELETE("/:id", c.DeleteSpecies)
	router.GET("/:id/observations", c.ListObservations)
	router.POST("/identify", c.IdentifySighting)
}

// CreateSpecies catalogues a new species
// @Summary Create species
// @Description Adds a species to the catalog
// @Tags species
// @Accept json
// @Produce json
// @Param request body CreateSpeciesRequest true "Species"
// @Success 201 {object} models.Species "Created species"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Failure 409 {object} utils.ErrorResponse "Species already exists"
// @Router /species [post]
func (c *SpeciesController) CreateSpecies(ctx *gin.Context) {
	var req CreateSpeciesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	species := &models.Species{
		ScientificName:     req.ScientificName,
		CommonName:         req.CommonName,
		SpeciesType:        req.SpeciesType,
		ConservationStatus: req.ConservationStatus,
		Habitat:            req.Habitat,
		DepthRange:         req.DepthRange,
		PopulationTrend:    req.PopulationTrend,
		ThreatLevel:        req.ThreatLevel,
		Description:        req.Description,
	}

	if err := c.speciesService.CreateSpecies(species); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusCreated, species)
}

// ListSpecies lists catalogued species
// @Summary List species
// @Description Returns a paginated list of species, optionally filtered by type or threat level
// @Tags species
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param type query string false "Species type"
// @Param threat_level query string false "Threat level (low, medium, high, critical)"
// @Success 200 {object} utils.PaginatedResponse "Species list"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Router /species [get]
func (c *SpeciesController) ListSpecies(ctx *gin.Context) {
	pagination := utils.GetPaginationFromContext(ctx)
	offset := (pagination.Page - 1) * pagination.Limit

	species, total, err := c.speciesService.ListSpecies(
		offset,
		pagination.Limit,
		ctx.Query("type"),
		ctx.Query("threat_level"),
	)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, utils.NewPaginatedResponse(species, pagination, int(total)))
}

// GetSpecies returns a species by ID
// @Summary Get species
// @Tags species
// @Produce json
// @Param id path int true "Species ID"
// @Success 200 {object} models.Species "Species"
// @Failure 404 {object} utils.ErrorResponse "Species not found"
// @Router /species/{id} [get]
func (c *SpeciesController) GetSpecies(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid species ID"})
		return
	}

	species, err := c.speciesService.GetSpecies(uint(id))
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, species)
}

// UpdateSpecies updates a catalogued species
// @Summary Update species
// @Tags species
// @Accept json
// @Produce json
// @Param id path int true "Species ID"
// @Param request body UpdateSpeciesRequest true "Species fields"
// @Success 200 {object} models.Species "Updated species"
// @Failure 404 {object} utils.ErrorResponse "Species not found"
// @Router /species/{id} [put]
func (c *SpeciesController) UpdateSpecies(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid species ID"})
		return
	}

	var req UpdateSpeciesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	species, err := c.speciesService.GetSpecies(uint(id))
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	species.CommonName = req.CommonName
	species.SpeciesType = req.SpeciesType
	species.ConservationStatus = req.ConservationStatus
	species.Habitat = req.Habitat
	species.DepthRange = req.DepthRange
	species.PopulationTrend = req.PopulationTrend
	species.ThreatLevel = req.ThreatLevel
	species.Description = req.Description

	if err := c.speciesService.UpdateSpecies(species); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, species)
}

// DeleteSpecies removes a species from the catalog
// @Summary Delete species
// @Tags species
// @Produce json
// @Param id path int true "Species ID"
// @Success 200 {object} map[string]string "Deletion confirmation"
// @Failure 404 {object} utils.ErrorResponse "Species not found"
// @Router /species/{id} [delete]
func (c *SpeciesController) DeleteSpecies(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid species ID"})
		return
	}

	if err := c.speciesService.DeleteSpecies(uint(id)); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Species deleted"})
}

// ListObservations returns recorded sightings for a species
// @Summary List species observations
// @Tags species
// @Produce json
// @Param id path int true "Species ID"
// @Param limit query int false "Limit results"
// @Success 200 {array} models.SpeciesObservation "Observations"
// @Failure 404 {object} utils.ErrorResponse "Species not found"
// @Router /species/{id}/observations [get]
func (c *SpeciesController) ListObservations(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid species ID"})
		return
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	observations, err := c.speciesService.ListObservations(uint(id), limit)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": observations,
		"meta": gin.H{
			"species_id": id,
			"count":      len(observations),
		},
	})
}

// IdentifySighting sends a sighting to the external classifier and records
// the result
// @Summary Identify sighting
// @Description Identifies a reported sighting via the classifier service and records the observation when a species is recognized
// @Tags species
// @Accept json
// @Produce json
// @Param request body services.SightingRequest true "Sighting"
// @Success 200 {object} services.SightingResult "Identification result"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Failure 503 {object} utils.ErrorResponse "Classifier unavailable"
// @Router /species/identify [post]
func (c *SpeciesController) IdentifySighting(ctx *gin.Context) {
	var req services.SightingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := c.speciesService.IdentifyAndRecord(ctx.Request.Context(), &req)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, result)
}
