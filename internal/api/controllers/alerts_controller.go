package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
)

// AlertsController handles alert listing, resolution and rule evaluation
type AlertsController struct {
	alertRuleService *services.AlertRuleService
	logger           *utils.Logger
}

// NewAlertsController creates a new alerts controller
func NewAlertsController(alertRuleService *services.AlertRuleService, logger *utils.Logger) *AlertsController {
	return &AlertsController{
		alertRuleService: alertRuleService,
		logger:           logger.Named("alerts_controller"),
	}
}

// RegisterRoutes registers the alert routes
func (c *AlertsController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", c.ListAlerts)
	router.POST("/evaluate", c.EvaluateRules)
	router.POST("/:id/resolve", c.ResolveAlert)
}

// ListAlerts lists alerts with optional filters
// @Summary List alerts
// @Tags alerts
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param type query string false "Alert type"
// @Param severity query string false "Severity (low, medium, high, critical)"
// @Param location query string false "Location"
// @Param active query bool false "Only active alerts"
// @Success 200 {object} utils.PaginatedResponse "Alert list"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts [get]
func (c *AlertsController) ListAlerts(ctx *gin.Context) {
	pagination := utils.GetPaginationFromContext(ctx)
	offset := (pagination.Page - 1) * pagination.Limit

	activeOnly, _ := strconv.ParseBool(ctx.DefaultQuery("active", "false"))
	filter := repository.AlertFilter{
		AlertType:  ctx.Query("type"),
		Severity:   ctx.Query("severity"),
		Location:   ctx.Query("location"),
		ActiveOnly: activeOnly,
	}

	alerts, total, err := c.alertRuleService.ListAlerts(filter, offset, pagination.Limit)
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, utils.NewPaginatedResponse(alerts, pagination, int(total)))
}

// EvaluateRules runs all alert rules against the current data
// @Summary Evaluate alert rules
// @Description Runs the alert rules and creates alerts for breached conditions, skipping already-active duplicates
// @Tags alerts
// @Produce json
// @Success 200 {object} services.RuleRunResult "Evaluation result"
// @Failure 500 {object} utils.ErrorResponse "Server error"
// @Router /alerts/evaluate [post]
func (c *AlertsController) EvaluateRules(ctx *gin.Context) {
	result, err := c.alertRuleService.RunAlertRules(time.Now().UTC())
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// ResolveAlert marks an alert as resolved
// @Summary Resolve alert
// @Tags alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} models.Alert "Resolved alert"
// @Failure 404 {object} utils.ErrorResponse "Alert not found or already resolved"
// @Router /alerts/{id}/resolve [post]
func (c *AlertsController) ResolveAlert(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID"})
		return
	}

	alert, err := c.alertRuleService.ResolveAlert(uint(id))
	if err != nil {
		respondError(ctx, err, c.logger)
		return
	}

	ctx.JSON(http.StatusOK, alert)
}
