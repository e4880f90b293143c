package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"

	"promptforge/internal/config"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/utils/platformerrors"
)

const (
	RequeueSchedule = "* * * * *"
	SweepSchedule   = "17 * * * *"
	CronJobTimeout  = 5 * time.Minute
)

// JobMaintainer is the part of the job service the scheduler drives.
type JobMaintainer interface {
	Requeue(ctx context.Context) (int, error)
	Sweep(ctx context.Context) (int64, error)
}

type Crontab struct {
	ctab *crontab.Crontab
	jobs JobMaintainer
}

func NewCrontab(jobs JobMaintainer) *Crontab {
	return &Crontab{
		ctab: crontab.New(),
		jobs: jobs,
	}
}

func (c *Crontab) Run(ctx context.Context) error {
	log := logger.GetLogger()

	// execute once on server start
	c.sweepJobs(ctx)

	if err := c.ctab.AddJob(RequeueSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.requeueJobs(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add job requeue")
	}

	cfg := config.GetGlobal()
	if cfg != nil && cfg.JobSweepEnabled {
		if err := c.ctab.AddJob(SweepSchedule, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
			defer cancel()
			c.sweepJobs(jobCtx)
		}); err != nil {
			return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add job sweep")
		}
		log.Info().Dur("retention", cfg.JobRetention).Msg("generation job sweep scheduled hourly")
	}

	// Schedule environment reload job
	if err := c.ctab.AddJob("* * * * *", func() {
		if _, err := config.Load(); err != nil {
			log.Error().Err(err).Msg("failed to reload config")
		}
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add env reload job")
	}

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

func (c *Crontab) requeueJobs(ctx context.Context) {
	log := logger.GetLogger()
	n, err := c.jobs.Requeue(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to requeue generation jobs")
		return
	}
	if n > 0 {
		log.Info().Int("count", n).Msg("requeued generation jobs")
	}
}

func (c *Crontab) sweepJobs(ctx context.Context) {
	log := logger.GetLogger()
	n, err := c.jobs.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to sweep generation jobs")
		return
	}
	if n > 0 {
		log.Info().Int64("count", n).Msg("swept finished generation jobs")
	}
}
