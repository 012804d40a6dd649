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

// RecordMeasurementRequest defines the request body for an ocean measurement
type RecordMeasurementRequest struct {
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Temperature      float64   `json:"temperature"`
	Salinity         *float64  `json:"salinity"`
	PHLevel          *float64  `json:"ph_level"`
	OxygenLevel      *float64  `json:"oxygen_level"`
	CurrentSpeed     *float64  `json:"current_speed"`
	CurrentDirection *float64  `json:"current_direction"`
	Depth            *float64  `json:"depth"`
	LocationName     string    `json:"location_name"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// OceanController handles ocean measurement requests
type OceanController struct {
	oceanService *services.OceanService
	logger       *utils.Logger
}

// NewOceanController creates a new ocean controller
func NewOceanController(oceanService *services.OceanService, logger *utils.Logger) *OceanController {
	return &OceanController{
		oceanService: oceanService,
		logger:       logger.Named("ocean_controller"),
	}
}

// RegisterRoutes registers the ocean routes
func (c *OceanController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/measurements", c.RecordMeasurement)
	router.GET("/measurements/latest", c.GetLatestMeasurements)
	router.GET("/conditions", c.GetConditions)
	router.GET("/stations/:location", c.GetStationHistory)
}

// RecordMeasurement records an ocean measurement
// @Summary Record ocean measurement
// @Tags ocean
// @Accept json
// @Produce json
// @Param request body RecordMeasurementRequest true "Measurement"
// @Success 201 {object} models.OceanMeasurement "Recorded measurement"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Router /ocean/measurements [post]
func (c *OceanController) RecordMeasurement(ctx *gin.Context) {
	var req RecordMeasurementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	measurement := &models.OceanMeasurement{
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Temperature:      req.Temperature,
		Salinity:         req.Salinity,
		PHLevel:          req.PHLevel,
		OxygenLevel:      req.OxygenLevel,
		CurrentSpeed:     req.CurrentSpeed,
		CurrentDirection: req.CurrentDirection,
		Depth:            req.Depth,
		LocationName:     req.LocationName,
		RecordedAt:       req.RecordedAt,
	}

	if err := c.oceanService.RecordMeasurement(measurement); err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusCreated, measurement)
}

// GetLatestMeasurements returns the most recent measurements
// @Summary Get latest measurements
// @Tags ocean
// @Produce json
// @Param limit query int false "Limit results"
// @Success 200 {array} models.OceanMeasurement "Latest measurements"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /ocean/measurements/latest [get]
func (c *OceanController) GetLatestMeasurements(ctx *gin.Context) {
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 20
	}

	measurements, err := c.oceanService.Latest(limit)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": measurements,
		"meta": gin.H{"count": len(measurements)},
	})
}

// GetConditions returns windowed average ocean conditions
// @Summary Get ocean conditions
// @Description Averages the measurements of the current window, skipping readings without a value
// @Tags ocean
// @Produce json
// @Success 200 {object} services.OceanConditions "Windowed conditions"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /ocean/conditions [get]
func (c *OceanController) GetConditions(ctx *gin.Context) {
	conditions, err := c.oceanService.Conditions(time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, conditions)
}

// GetStationHistory returns the recent readings of a monitoring station
// @Summary Get station history
// @Tags ocean
// @Produce json
// @Param location path string true "Station location name"
// @Param limit query int false "Limit results"
// @Success 200 {array} models.OceanMeasurement "Station readings"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /ocean/stations/{location} [get]
func (c *OceanController) GetStationHistory(ctx *gin.Context) {
	location := ctx.Param("location")

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 1000 {
		limit = 100
	}

	measurements, err := c.oceanService.StationHistory(location, limit)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": measurements,
		"meta": gin.H{
			"location": location,
			"count":    len(measurements),
		},
	})
}
