package usage

import (
	"github.com/gin-gonic/gin"

	"promptforge/internal/interfaces/httpserver/handlers/usagehandler"
)

// UsageRoute handles usage-related routes
type UsageRoute struct {
	handler *usagehandler.UsageHandler
}

// NewUsageRoute creates a new UsageRoute
func NewUsageRoute(handler *usagehandler.UsageHandler) *UsageRoute {
	return &UsageRoute{handler: handler}
}

// RegisterRouter registers the caller's usage routes
func (r *UsageRoute) RegisterRouter(router gin.IRouter) {
	usageGroup := router.Group("/usage")
	usageGroup.GET("", r.handler.GetMyUsage)
	usageGroup.GET("/daily", r.handler.GetMyDailyUsage)
}
