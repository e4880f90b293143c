package generator

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"promptforge/internal/domain/file"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/job"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/metrics"
	"promptforge/internal/utils/idgen"
	"promptforge/internal/utils/platformerrors"
)

const jobIDPrefix = "job"

type PromptLoader interface {
	GetPromptByID(ctx context.Context, id uint) (*prompt.Prompt, error)
}

type FileResolver interface {
	FindForPrompt(ctx context.Context, promptID uint, publicIDs []string) ([]*file.File, error)
	Attachments(ctx context.Context, files []*file.File) []generation.Attachment
}

// JobConfig sizes the worker pool.
type JobConfig struct {
	Workers    int
	QueueSize  int
	Retention  time.Duration
	// StaleAfter is how long a job may stay running before Requeue
	// treats its worker as gone.
	StaleAfter time.Duration
}

// EnqueueInput is the deferred form of a generation request.
type EnqueueInput struct {
	Content  string
	UseChats bool
	FileIDs  []string
}

// JobService queues generations and runs them on a bounded worker pool.
type JobService struct {
	repo      job.Repository
	generator *Service
	prompts   PromptLoader
	files     FileResolver
	cfg       JobConfig
	queue     chan string
	now       func() time.Time
}

func NewJobService(repo job.Repository, generator *Service, prompts PromptLoader, files FileResolver, cfg JobConfig) *JobService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	return &JobService{
		repo:      repo,
		generator: generator,
		prompts:   prompts,
		files:     files,
		cfg:       cfg,
		queue:     make(chan string, cfg.QueueSize),
		now:       time.Now,
	}
}

// Enqueue validates and stores a queued job, then hands it to the workers.
func (s *JobService) Enqueue(ctx context.Context, p *prompt.Prompt, userID uint, in EnqueueInput) (*job.Job, error) {
	mode := modeFor(in.UseChats)
	content := strings.TrimSpace(in.Content)
	if mode == generation.ModeStateless && content == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is required", nil, "")
	}
	limit := MaxStatelessContent
	if mode == generation.ModeStateful {
		limit = MaxStatefulContent
	}
	if utf8.RuneCountInString(content) > limit {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "content is too long", nil, "")
	}
	files, err := s.files.FindForPrompt(ctx, p.ID, in.FileIDs)
	if err != nil {
		return nil, err
	}

	publicID, err := idgen.GenerateSecureID(jobIDPrefix, 24)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to generate job id", err, "")
	}
	j := &job.Job{
		PublicID: publicID,
		PromptID: p.ID,
		UserID:   userID,
		Content:  content,
		UseChats: in.UseChats,
		FileIDs:  fileIDs(files),
		Status:   job.StatusQueued,
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create job")
	}
	s.offer(j.PublicID)
	return j, nil
}

// Get returns a job owned by userID.
func (s *JobService) Get(ctx context.Context, publicID string, userID uint) (*job.Job, error) {
	j, err := s.repo.GetByPublicIDAndUserID(ctx, publicID, userID)
	if err != nil {
		if platformerrors.IsNotFoundError(err) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "Job not found", err, "")
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load job")
	}
	return j, nil
}

// Run requeues jobs left queued by a previous process and serves the queue
// until ctx is cancelled.
func (s *JobService) Run(ctx context.Context) error {
	log := logger.GetLogger()
	if n, err := s.Requeue(ctx); err != nil {
		log.Error().Err(err).Msg("failed to requeue pending jobs")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("requeued pending generation jobs")
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case id := <-s.queue:
					s.Process(gctx, id)
				}
			}
		})
	}
	return g.Wait()
}

// Requeue releases stale running jobs, then offers every queued job to the
// workers. Jobs that do not fit in the queue stay queued for the next call.
func (s *JobService) Requeue(ctx context.Context) (int, error) {
	if s.cfg.StaleAfter > 0 {
		released, err := s.repo.ReleaseStale(ctx, s.now().Add(-s.cfg.StaleAfter))
		if err != nil {
			return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to release stale jobs")
		}
		if released > 0 {
			log := logger.GetLogger()
			log.Warn().Int64("count", released).Msg("released stale running jobs")
		}
	}
	ids, err := s.repo.ListIDsByStatus(ctx, job.StatusQueued, s.cfg.QueueSize)
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list queued jobs")
	}
	offered := 0
	for _, id := range ids {
		if s.offer(id) {
			offered++
		}
	}
	return offered, nil
}

// Sweep deletes finished jobs older than the retention window.
func (s *JobService) Sweep(ctx context.Context) (int64, error) {
	if s.cfg.Retention <= 0 {
		return 0, nil
	}
	n, err := s.repo.DeleteFinishedBefore(ctx, s.now().Add(-s.cfg.Retention))
	if err != nil {
		return 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to sweep jobs")
	}
	metrics.JobsSweptTotal.Add(float64(n))
	return n, nil
}

// Process claims and runs one job. Jobs claimed by another worker are skipped.
func (s *JobService) Process(ctx context.Context, publicID string) {
	log := logger.GetLogger().With().Str("job_id", publicID).Logger()

	j, err := s.repo.GetByPublicID(ctx, publicID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load job")
		return
	}
	started := s.now()
	claimed, err := s.repo.MarkRunning(ctx, j.ID, started)
	if err != nil {
		log.Error().Err(err).Msg("failed to claim job")
		return
	}
	if !claimed {
		return
	}
	j.Status = job.StatusRunning
	j.StartedAt = &started
	j.Attempts++

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	result, err := s.execute(ctx, j)
	finished := s.now()
	switch {
	case err != nil && ctx.Err() != nil:
		// Interrupted by shutdown; nothing was persisted, so run it again later.
		j.Status = job.StatusQueued
		j.StartedAt = nil
	case err != nil:
		j.FinishedAt = &finished
		s.markFailed(j, err)
	default:
		j.FinishedAt = &finished
		j.Status = job.StatusSucceeded
		j.Result = result.body
		j.RawText = &result.raw
	}

	if err := s.repo.Update(context.WithoutCancel(ctx), j); err != nil {
		log.Error().Err(err).Msg("failed to store job outcome")
		return
	}
	metrics.RecordJob(string(j.Status))
	log.Info().Str("status", string(j.Status)).Dur("duration", finished.Sub(started)).Msg("generation job finished")
}

type jobOutput struct {
	body json.RawMessage
	raw  string
}

func (s *JobService) execute(ctx context.Context, j *job.Job) (*jobOutput, error) {
	p, err := s.prompts.GetPromptByID(ctx, j.PromptID)
	if err != nil {
		return nil, err
	}
	files, err := s.files.FindForPrompt(ctx, p.ID, j.FileIDs)
	if err != nil {
		return nil, err
	}

	result, err := s.generator.Generate(ctx, Request{
		Prompt:      p,
		UserID:      j.UserID,
		Mode:        modeFor(j.UseChats),
		Content:     j.Content,
		Attachments: s.files.Attachments(ctx, files),
		RequestID:   j.PublicID,
	})
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(result.Output)
	if err != nil {
		return nil, err
	}
	return &jobOutput{body: body, raw: result.RawText}, nil
}

func (s *JobService) markFailed(j *job.Job, err error) {
	j.Status = job.StatusFailed
	kind := errorKind(err)
	message := err.Error()
	if pe, ok := err.(*platformerrors.PlatformError); ok {
		message = pe.Message
	}
	j.ErrorKind = &kind
	j.ErrorMessage = &message
	log := logger.GetLogger()
	log.Warn().Err(err).Str("job_id", j.PublicID).Str("kind", kind).Msg("generation job failed")
}

func (s *JobService) offer(publicID string) bool {
	select {
	case s.queue <- publicID:
		return true
	default:
		log := logger.GetLogger()
		log.Warn().Str("job_id", publicID).Msg("job queue full, job stays queued")
		return false
	}
}

// errorKind names a failure for the job record: the generation kind when
// there is one, otherwise the platform error type.
func errorKind(err error) string {
	if kind, ok := generation.KindOf(err); ok {
		return string(kind)
	}
	if t, ok := platformerrors.GetErrorType(err); ok {
		return string(t)
	}
	return string(platformerrors.ErrorTypeInternal)
}

func modeFor(useChats bool) generation.Mode {
	if useChats {
		return generation.ModeStateful
	}
	return generation.ModeStateless
}

func fileIDs(files []*file.File) []string {
	ids := make([]string, 0, len(files))
	for _, f := range files {
		ids = append(ids, f.PublicID)
	}
	return ids
}
