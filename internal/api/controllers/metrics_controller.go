package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
)

// CreateAssessmentRequest defines the request body for recording a
// biodiversity assessment
type CreateAssessmentRequest struct {
	RegionName        string    `json:"region_name" binding:"required"`
	Latitude          *float64  `json:"latitude"`
	Longitude         *float64  `json:"longitude"`
	SpeciesCount      int       `json:"species_count"`
	EndemicSpecies    int       `json:"endemic_species"`
	ThreatenedSpecies int       `json:"threatened_species"`
	BiodiversityScore *float64  `json:"biodiversity_score"`
	EcosystemHealth   string    `json:"ecosystem_health"`
	AssessedAt        time.Time `json:"assessed_at"`
	Notes             string    `json:"notes"`
}

// MetricsController exposes the ecosystem scoring and biodiversity endpoints
type MetricsController struct {
	metricsService        *services.MetricsService
	sustainabilityService *services.SustainabilityService
	logger                *utils.Logger
}

// NewMetricsController creates a new metrics controller
func NewMetricsController(
	metricsService *services.MetricsService,
	sustainabilityService *services.SustainabilityService,
	logger *utils.Logger,
) *MetricsController {
	return &MetricsController{
		metricsService:        metricsService,
		sustainabilityService: sustainabilityService,
		logger:                logger.Named("metrics_controller"),
	}
}

// RegisterRoutes registers the metrics and biodiversity routes
func (c *MetricsController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/metrics/ecosystem", c.GetEcosystemHealth)
	router.GET("/metrics/sustainability", c.GetSustainabilityMetrics)
	router.GET("/metrics/sustainability/trend", c.GetRegionalTrend)
	router.POST("/biodiversity/assessments", c.CreateAssessment)
	router.GET("/biodiversity/regions/:region", c.GetRegionReport)
}

// GetEcosystemHealth returns the composite ecosystem health report
// @Summary Get ecosystem health report
// @Description Returns the composite ecosystem health score with its deduction breakdown
// @Tags metrics
// @Produce json
// @Success 200 {object} services.EcosystemHealthReport "Ecosystem health report"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /metrics/ecosystem [get]
func (c *MetricsController) GetEcosystemHealth(ctx *gin.Context) {
	report, err := c.metricsService.ComputeHealthReport(time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// GetSustainabilityMetrics returns windowed fishing sustainability metrics
// @Summary Get sustainability metrics
// @Description Returns catch volume and sustainability averages for the current window with an activity trend against the previous one
// @Tags metrics
// @Produce json
// @Success 200 {object} services.SustainabilityReport "Sustainability report"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /metrics/sustainability [get]
func (c *MetricsController) GetSustainabilityMetrics(ctx *gin.Context) {
	report, err := c.sustainabilityService.ComputeSustainabilityMetrics(time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// GetRegionalTrend returns the month-over-month activity trend for an area
// @Summary Get regional fishing trend
// @Description Compares this month's catch activity in an area with the previous month
// @Tags metrics
// @Produce json
// @Param area query string true "Fishing area name"
// @Success 200 {object} services.RegionalTrend "Regional trend"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Router /metrics/sustainability/trend [get]
func (c *MetricsController) GetRegionalTrend(ctx *gin.Context) {
	area := ctx.Query("area")

	trend, err := c.sustainabilityService.ComputeRegionalTrend(area, time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, trend)
}

// CreateAssessment records a new biodiversity assessment
// @Summary Record biodiversity assessment
// @Description Records a point-in-time biodiversity survey for a region
// @Tags biodiversity
// @Accept json
// @Produce json
// @Param request body CreateAssessmentRequest true "Assessment"
// @Success 201 {object} models.BiodiversityAssessment "Created assessment"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Router /biodiversity/assessments [post]
func (c *MetricsController) CreateAssessment(ctx *gin.Context) {
	var req CreateAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	assessment := &models.BiodiversityAssessment{
		RegionName:        req.RegionName,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		SpeciesCount:      req.SpeciesCount,
		EndemicSpecies:    req.EndemicSpecies,
		ThreatenedSpecies: req.ThreatenedSpecies,
		BiodiversityScore: req.BiodiversityScore,
		EcosystemHealth:   req.EcosystemHealth,
		AssessedAt:        req.AssessedAt,
		Notes:             req.Notes,
	}

	if err := c.metricsService.RecordAssessment(assessment); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusCreated, assessment)
}

// GetRegionReport returns the biodiversity report for a single region
// @Summary Get region report
// @Description Returns the latest assessment and the windowed average score for a region
// @Tags biodiversity
// @Produce json
// @Param region path string true "Region name"
// @Success 200 {object} services.RegionReport "Region report"
// @Failure 404 {object} utils.ErrorResponse "Region not found"
// @Router /biodiversity/regions/{region} [get]
func (c *MetricsController) GetRegionReport(ctx *gin.Context) {
	region := ctx.Param("region")

	report, err := c.metricsService.RegionReport(region, time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, report)
}
