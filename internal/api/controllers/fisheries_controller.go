package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/db/models"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
)

// ReportCatchRequest defines the request body for reporting a catch
type ReportCatchRequest struct {
	SpeciesID           uint      `json:"species_id" binding:"required"`
	CatchAmount         float64   `json:"catch_amount" binding:"required"`
	FishingArea         string    `json:"fishing_area" binding:"required"`
	Latitude            *float64  `json:"latitude"`
	Longitude           *float64  `json:"longitude"`
	FishingMethod       string    `json:"fishing_method"`
	VesselType          string    `json:"vessel_type"`
	CaughtAt            time.Time `json:"caught_at"`
	QuotaLimit          *float64  `json:"quota_limit"`
	SustainabilityScore *float64  `json:"sustainability_score"`
}

// FisheriesController handles catch reporting and fishing pressure requests
type FisheriesController struct {
	fisheriesService *services.FisheriesService
	logger           *utils.Logger
}

// NewFisheriesController creates a new fisheries controller
func NewFisheriesController(fisheriesService *services.FisheriesService, logger *utils.Logger) *FisheriesController {
	return &FisheriesController{
		fisheriesService: fisheriesService,
		logger:           logger.Named("fisheries_controller"),
	}
}

// RegisterRoutes registers the fisheries routes
func (c *FisheriesController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/catches", c.ReportCatch)
	router.GET("/pressure", c.GetFishingPressure)
	router.GET("/catches/by-species", c.GetCatchBySpecies)
}

// ReportCatch records a reported catch event
// @Summary Report catch
// @Description Records a fishing catch against a catalogued species
// @Tags fisheries
// @Accept json
// @Produce json
// @Param request body ReportCatchRequest true "Catch event"
// @Success 201 {object} models.CatchEvent "Recorded catch"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Failure 404 {object} utils.ErrorResponse "Species not found"
// @Router /fisheries/catches [post]
func (c *FisheriesController) ReportCatch(ctx *gin.Context) {
	var req ReportCatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	event := &models.CatchEvent{
		SpeciesID:           req.SpeciesID,
		CatchAmount:         req.CatchAmount,
		FishingArea:         req.FishingArea,
		Latitude:            req.Latitude,
		Longitude:           req.Longitude,
		FishingMethod:       req.FishingMethod,
		VesselType:          req.VesselType,
		CaughtAt:            req.CaughtAt,
		QuotaLimit:          req.QuotaLimit,
		SustainabilityScore: req.SustainabilityScore,
	}

	if err := c.fisheriesService.ReportCatch(event); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusCreated, event)
}

// GetFishingPressure returns per-area fishing pressure scores
// @Summary Get fishing pressure
// @Description Scores every active fishing area on frequency, volume and sustainability, ranked worst first
// @Tags fisheries
// @Produce json
// @Success 200 {object} services.PressureReport "Pressure report"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /fisheries/pressure [get]
func (c *FisheriesController) GetFishingPressure(ctx *gin.Context) {
	report, err := c.fisheriesService.EvaluateFishingPressure(time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// GetCatchBySpecies returns windowed catch totals grouped by species
// @Summary Get catch totals by species
// @Tags fisheries
// @Produce json
// @Param limit query int false "Limit results"
// @Success 200 {array} repository.SpeciesCatchTotal "Catch totals"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /fisheries/catches/by-species [get]
func (c *FisheriesController) GetCatchBySpecies(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	totals, err := c.fisheriesService.CatchBySpecies(time.Now().UTC(), limit)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": totals,
		"meta": gin.H{"count": len(totals)},
	})
}
