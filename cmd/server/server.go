package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"promptforge/internal/application/generator"
	"promptforge/internal/config"
	"promptforge/internal/infrastructure/crontab"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/observability"
	"promptforge/internal/interfaces/httpserver"

	_ "net/http/pprof"
)

type Application struct {
	httpServer *httpserver.HTTPServer
	crontab    *crontab.Crontab
	jobService *generator.JobService
	config     *config.Config
	log        zerolog.Logger
}

func init() {
	logger.GetLogger()
}

// @title Promptforge API
// @version 1.0
// @description Prompt management with Gemini backed structured generation, chat history and async generation jobs.
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func (application *Application) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)
	if addr := application.config.PprofAddr; addr != "" {
		pprofServer := &http.Server{Addr: addr, Handler: http.DefaultServeMux, ReadHeaderTimeout: 5 * time.Second}
		eg.Go(func() error {
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		eg.Go(func() error {
			<-ctx.Done()
			return pprofServer.Close()
		})
	}
	eg.Go(func() error {
		return application.jobService.Run(ctx)
	})
	eg.Go(func() error {
		return application.crontab.Run(ctx)
	})
	eg.Go(func() error {
		return application.httpServer.Run(ctx)
	})

	return eg.Wait()
}

func main() {
	log := logger.GetLogger()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := CreateApplication()
	if err != nil {
		log.Fatal().Err(err).Msg("create application")
	}
	log = application.log

	dataInitializer, err := CreateDataInitializer()
	if err != nil {
		log.Fatal().Err(err).Msg("create data initializer")
	}
	if err := dataInitializer.Install(ctx); err != nil {
		log.Fatal().Err(err).Msg("install data")
	}

	otelShutdown, err := observability.Setup(ctx, application.config, log)
	if err != nil {
		log.Error().Err(err).Msg("initialize observability")
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("shutdown telemetry")
			}
		}()
	}

	log.Info().
		Str("version", config.Version).
		Int("port", application.config.HTTPPort).
		Str("model", application.config.GeminiModel).
		Msg("starting promptforge")

	if err := application.Start(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("server stopped")
}
