package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"promptforge/internal/config"
	"promptforge/internal/infrastructure"
	"promptforge/internal/interfaces/httpserver/handlers/authhandler"
	middleware "promptforge/internal/interfaces/httpserver/middlewares"
	v1 "promptforge/internal/interfaces/httpserver/routes/v1"

	_ "promptforge/docs/swagger"
)

const shutdownTimeout = 15 * time.Second

type HTTPServer struct {
	engine      *gin.Engine
	infra       *infrastructure.Infrastructure
	v1Route     *v1.V1Route
	authHandler *authhandler.AuthHandler
	config      *config.Config
}

func (s *HTTPServer) bindSwagger() {
	s.engine.GET("/api/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func NewHttpServer(
	v1Route *v1.V1Route,
	authHandler *authhandler.AuthHandler,
	infra *infrastructure.Infrastructure,
	cfg *config.Config,
) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		gin.New(),
		infra,
		v1Route,
		authHandler,
		cfg,
	}
	server.engine.MaxMultipartMemory = cfg.MaxUploadBytes()
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(infra.Logger))
	server.engine.Use(middleware.MetricsMiddleware())
	server.engine.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins...))

	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	server.engine.GET("/readyz", server.readyz)
	server.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.EnableSwagger {
		server.bindSwagger()
	}
	server.registerRoutes()
	return &server
}

// Handler exposes the engine, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) registerRoutes() {
	s.v1Route.RegisterPublicRouter(s.engine)

	protected := s.engine.Group("/")
	protected.Use(
		middleware.AuthMiddleware(s.infra.JWTValidator, s.infra.Logger, s.config.Issuer),
		s.authHandler.EnsureAppUser(),
	)
	s.v1Route.RegisterRouter(protected)
}

// readyz reports not ready until the database answers, uploads are writable
// and, when bearer auth is configured, the JWKS has loaded.
func (s *HTTPServer) readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	ready := true
	if sqlDB, err := s.infra.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		ready = false
	} else {
		checks["database"] = "ok"
	}
	if err := s.infra.Storage.Health(ctx); err != nil {
		checks["storage"] = "unavailable"
		ready = false
	} else {
		checks["storage"] = "ok"
	}
	if s.infra.JWTValidator != nil {
		if s.infra.JWTValidator.Ready() {
			checks["jwks"] = "ok"
		} else {
			checks["jwks"] = "unavailable"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.infra.Logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
