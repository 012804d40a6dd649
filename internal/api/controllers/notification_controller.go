package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/marine-watch/backend/internal/services"
	"github.com/marine-watch/backend/internal/utils"
	"go.uber.org/zap"
)

// NotificationController upgrades HTTP connections to websocket clients of
// the notification hub
type NotificationController struct {
	notificationService *services.NotificationService
	upgrader            websocket.Upgrader
	logger              *utils.Logger
}

// NewNotificationController creates a new notification controller
func NewNotificationController(notificationService *services.NotificationService, logger *utils.Logger) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin dashboards connect directly to this endpoint
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.Named("notification_controller"),
	}
}

// RegisterRoutes registers the websocket route
func (c *NotificationController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/notifications", c.Subscribe)
}

// Subscribe upgrades the connection and subscribes the client to the
// requested topics
// @Summary Subscribe to notifications
// @Description Upgrades to a websocket and streams notifications for the topics given in the comma-separated topics query parameter
// @Tags notifications
// @Param topics query string false "Comma-separated topics (alerts, metrics, sightings)"
// @Success 101 {string} string "Switching protocols"
// @Failure 400 {object} utils.ErrorResponse "Bad request"
// @Router /ws/notifications [get]
func (c *NotificationController) Subscribe(ctx *gin.Context) {
	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := c.notificationService.RegisterClient(conn)

	for _, topic := range strings.Split(ctx.Query("topics"), ",") {
		topic = strings.TrimSpace(topic)
		if topic != "" {
			c.notificationService.SubscribeToTopic(client, topic)
		}
	}
}
