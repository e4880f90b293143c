package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"promptforge/internal/config"
	"promptforge/internal/interfaces/httpserver/routes/v1/chats"
	"promptforge/internal/interfaces/httpserver/routes/v1/generation"
	"promptforge/internal/interfaces/httpserver/routes/v1/prompts"
	"promptforge/internal/interfaces/httpserver/routes/v1/usage"
	"promptforge/internal/interfaces/httpserver/routes/v1/users"
)

type V1Route struct {
	prompts    *prompts.PromptRoute
	chats      *chats.ChatRoute
	generation *generation.GenerationRoute
	usage      *usage.UsageRoute
	users      *users.UsersRoute
}

func NewV1Route(
	prompts *prompts.PromptRoute,
	chats *chats.ChatRoute,
	generation *generation.GenerationRoute,
	usage *usage.UsageRoute,
	users *users.UsersRoute,
) *V1Route {
	return &V1Route{
		prompts,
		chats,
		generation,
		usage,
		users,
	}
}

// RegisterRouter registers the authenticated API. router must already carry
// the auth and user middlewares.
func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Route.users.RegisterRouter(v1Router)
	v1Route.prompts.RegisterRouter(v1Router)
	v1Route.chats.RegisterRouter(v1Router)
	v1Route.generation.RegisterRouter(v1Router)
	v1Route.usage.RegisterRouter(v1Router)
}

// RegisterPublicRouter registers endpoints that do not require authentication
func (v1Route *V1Route) RegisterPublicRouter(router gin.IRouter) {
	v1Router := router.Group("/v1")
	v1Router.GET("/version", GetVersion)
	v1Router.GET("/healthz", GetHealthz)
}

// GetVersion godoc
// @Summary Get API build version
// @Description Returns the current build version of the API server and environment reload timestamp.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Version information including version number and environment reload timestamp"
// @Router /v1/version [get]
func GetVersion(c *gin.Context) {
	reloadedAt := ""
	if cfg := config.GetGlobal(); cfg != nil {
		reloadedAt = cfg.EnvReloadedAt.Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, gin.H{
		"version":         config.Version,
		"env_reloaded_at": reloadedAt,
	})
}

// GetHealthz godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API server. Used by orchestrators and monitoring systems.
// @Tags Server API
// @Produce json
// @Success 200 {object} map[string]string "Health status OK"
// @Router /v1/healthz [get]
func GetHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
